// Package filestore keeps artifacts on local disk. invoice.pdf in the directory
// always mirrors the most recent artifact.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

const latestPointer = "latest"

type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type meta struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	PageFormat  string    `json:"page_format"`
	Filename    string    `json:"filename"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// New creates the directory if needed. A ttl of zero keeps files until overwritten.
func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	return &Store{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Save(_ context.Context, a *artifact.Artifact) error {
	if !validKey(a.Key) {
		return fmt.Errorf("invalid artifact key %q", a.Key)
	}

	m := meta{
		Key:         a.Key,
		ContentType: a.ContentType,
		PageFormat:  a.PageFormat,
		Filename:    a.Filename,
		CreatedAt:   a.CreatedAt,
	}
	if s.ttl > 0 {
		m.ExpiresAt = s.now().Add(s.ttl)
	}

	metaBytes, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding artifact metadata: %w", err)
	}

	if err := s.writeAtomic(a.Key+".pdf", a.Content); err != nil {
		return err
	}

	if err := s.writeAtomic(a.Key+".json", metaBytes); err != nil {
		return err
	}

	if err := s.writeAtomic(artifact.DefaultFilename, a.Content); err != nil {
		return err
	}

	if err := s.writeAtomic(latestPointer, []byte(a.Key)); err != nil {
		return err
	}

	s.sweep()

	return nil
}

func (s *Store) Load(_ context.Context, key string) (*artifact.Artifact, error) {
	if key == artifact.Latest {
		raw, err := os.ReadFile(filepath.Join(s.dir, latestPointer))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, artifact.ErrNotFound
			}

			return nil, fmt.Errorf("reading latest pointer: %w", err)
		}

		key = strings.TrimSpace(string(raw))
	}

	if !validKey(key) {
		return nil, artifact.ErrNotFound
	}

	m, err := s.readMeta(key)
	if err != nil {
		return nil, err
	}

	if !m.ExpiresAt.IsZero() && s.now().After(m.ExpiresAt) {
		s.removeKey(key)
		return nil, artifact.ErrNotFound
	}

	content, err := os.ReadFile(filepath.Join(s.dir, key+".pdf"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, artifact.ErrNotFound
		}

		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	return &artifact.Artifact{
		Key:         m.Key,
		Content:     content,
		ContentType: m.ContentType,
		PageFormat:  m.PageFormat,
		Filename:    m.Filename,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// Path returns where the most recent artifact is mirrored on disk.
func (s *Store) Path() string {
	return filepath.Join(s.dir, artifact.DefaultFilename)
}

func (s *Store) readMeta(key string) (*meta, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, key+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, artifact.ErrNotFound
		}

		return nil, fmt.Errorf("reading artifact metadata: %w", err)
	}

	var m meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding artifact metadata: %w", err)
	}

	return &m, nil
}

// writeAtomic writes through a temp file and rename so readers never see a partial file.
func (s *Store) writeAtomic(name string, data []byte) error {
	f, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)

		return fmt.Errorf("writing %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", name, err)
	}

	return nil
}

// sweep removes expired artifacts. Failures are logged, never returned.
func (s *Store) sweep() {
	if s.ttl <= 0 {
		return
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		slog.Warn("failed to list artifacts", "error", err)
		return
	}

	now := s.now()

	for _, path := range matches {
		key := strings.TrimSuffix(filepath.Base(path), ".json")

		m, err := s.readMeta(key)
		if err != nil {
			continue
		}

		if !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt) {
			s.removeKey(key)
		}
	}
}

func (s *Store) removeKey(key string) {
	for _, name := range []string{key + ".pdf", key + ".json"} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove artifact file", "file", name, "error", err)
		}
	}
}

func validKey(key string) bool {
	if key == "" || key == latestPointer || len(key) > 128 {
		return false
	}

	for _, r := range key {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '-' && r != '_' {
			return false
		}
	}

	return true
}

var _ artifact.Store = (*Store)(nil)
