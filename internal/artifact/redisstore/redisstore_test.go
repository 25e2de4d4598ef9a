package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

func TestStore_Key(t *testing.T) {
	assert.Equal(t, "artifact:abc", (&Store{}).key("abc"))
	assert.Equal(t, "acct:artifact:latest", (&Store{prefix: "acct"}).key(latestKey))
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(redis.Nil), artifact.ErrNotFound)

	err := mapError(errors.New("connection refused"))
	assert.NotErrorIs(t, err, artifact.ErrNotFound)
	assert.ErrorContains(t, err, "connection refused")
}

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := Open(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return New(client, "acct", ttl), mr
}

func pdf(key, format string) *artifact.Artifact {
	return &artifact.Artifact{
		Key:         key,
		Content:     []byte("%PDF-1.3 " + key),
		ContentType: artifact.ContentTypePDF,
		PageFormat:  format,
		Filename:    artifact.DefaultFilename,
		CreatedAt:   time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
	}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Hour)

	_, err := s.Load(ctx, artifact.Latest)
	require.ErrorIs(t, err, artifact.ErrNotFound)

	require.NoError(t, s.Save(ctx, pdf("k1", "A4")))
	require.NoError(t, s.Save(ctx, pdf("k2", "Letter")))

	got, err := s.Load(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, pdf("k1", "A4"), got)

	latest, err := s.Load(ctx, artifact.Latest)
	require.NoError(t, err)
	assert.Equal(t, "k2", latest.Key)

	assert.True(t, mr.Exists("acct:artifact:k1"))
	assert.Equal(t, time.Hour, mr.TTL("acct:artifact:k1"))

	_, err = s.Load(ctx, "unknown")
	require.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)

	require.NoError(t, s.Save(ctx, pdf("k1", "A4")))

	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "k1")
	require.ErrorIs(t, err, artifact.ErrNotFound)

	_, err = s.Load(ctx, artifact.Latest)
	require.ErrorIs(t, err, artifact.ErrNotFound)
}
