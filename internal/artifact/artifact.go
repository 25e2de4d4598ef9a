package artifact

import (
	"context"
	"errors"
	"time"
)

const (
	// Latest addresses the most recently saved artifact, whatever its key.
	Latest = ""

	ContentTypePDF  = "application/pdf"
	DefaultFilename = "invoice.pdf"
)

// ErrNotFound is returned when no artifact matches, including before the first save.
var ErrNotFound = errors.New("artifact not found")

// Artifact is a rendered invoice document.
type Artifact struct {
	Key         string
	Content     []byte
	ContentType string
	PageFormat  string
	Filename    string
	CreatedAt   time.Time
}

// Size returns the content length in bytes.
func (a *Artifact) Size() int {
	return len(a.Content)
}

// Store persists generated artifacts. Saving under an existing key overwrites it,
// and every Save moves the Latest pointer.
type Store interface {
	Save(ctx context.Context, a *Artifact) error
	Load(ctx context.Context, key string) (*Artifact, error)
}

// Clone returns a deep copy so stores never share content buffers with callers.
func (a *Artifact) Clone() *Artifact {
	c := *a
	c.Content = append([]byte(nil), a.Content...)

	return &c
}
