package artifact_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

func newArtifact(key, body string) *artifact.Artifact {
	return &artifact.Artifact{
		Key:         key,
		Content:     []byte(body),
		ContentType: artifact.ContentTypePDF,
		PageFormat:  "A4",
		Filename:    artifact.DefaultFilename,
	}
}

func TestMemory_LoadBeforeSave(t *testing.T) {
	m := artifact.NewMemory()

	_, err := m.Load(context.Background(), artifact.Latest)
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	_, err = m.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestMemory_LatestFollowsLastSave(t *testing.T) {
	ctx := context.Background()
	m := artifact.NewMemory()

	require.NoError(t, m.Save(ctx, newArtifact("first", "one")))
	require.NoError(t, m.Save(ctx, newArtifact("second", "two")))

	latest, err := m.Load(ctx, artifact.Latest)
	require.NoError(t, err)
	assert.Equal(t, "second", latest.Key)
	assert.Equal(t, []byte("two"), latest.Content)

	// Keyed lookups are isolated from later saves.
	first, err := m.Load(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), first.Content)
}

func TestMemory_SingleSlot(t *testing.T) {
	ctx := context.Background()
	m := artifact.NewMemory(artifact.WithMaxEntries(1))

	require.NoError(t, m.Save(ctx, newArtifact("a", "one")))
	require.NoError(t, m.Save(ctx, newArtifact("b", "two")))

	assert.Equal(t, 1, m.Len())

	_, err := m.Load(ctx, "a")
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	got, err := m.Load(ctx, artifact.Latest)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Key)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	m := artifact.NewMemory(
		artifact.WithTTL(time.Minute),
		artifact.WithClock(func() time.Time { return now }),
	)

	require.NoError(t, m.Save(ctx, newArtifact("a", "one")))

	now = now.Add(30 * time.Second)
	_, err := m.Load(ctx, "a")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Load(ctx, artifact.Latest)
	assert.ErrorIs(t, err, artifact.ErrNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_LRUEviction(t *testing.T) {
	ctx := context.Background()
	m := artifact.NewMemory(artifact.WithMaxEntries(2))

	require.NoError(t, m.Save(ctx, newArtifact("a", "1")))
	require.NoError(t, m.Save(ctx, newArtifact("b", "2")))

	_, err := m.Load(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Save(ctx, newArtifact("c", "3")))

	_, err = m.Load(ctx, "b")
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	_, err = m.Load(ctx, "a")
	assert.NoError(t, err)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := artifact.NewMemory()

	a := newArtifact("a", "original")
	require.NoError(t, m.Save(ctx, a))

	a.Content[0] = 'X'

	got, err := m.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got.Content)
}
