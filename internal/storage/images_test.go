package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func newImages(t *testing.T) *Images {
	t.Helper()
	s, err := Open(context.Background(), "mem://", "/uploads")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func pixel(t *testing.T) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)
	return b
}

func TestImages_SaveReadDelete(t *testing.T) {
	ctx := context.Background()
	s := newImages(t)
	owner := uuid.New()

	p, err := s.Save(ctx, owner, bytes.NewReader(pixel(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "/uploads/review-images/"), p)
	assert.True(t, strings.HasSuffix(p, ".png"), p)

	rc, ct, err := s.Read(ctx, p)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pixel(t), got)
	assert.Equal(t, "image/png", ct)

	gotOwner, err := s.Owner(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, owner, gotOwner)

	require.ErrorIs(t, s.Delete(ctx, uuid.New(), p), ErrNotOwner)
	require.NoError(t, s.Delete(ctx, owner, p))
	require.ErrorIs(t, s.Delete(ctx, owner, p), ErrNotFound)
	_, err = s.Owner(ctx, p)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImages_Rejects(t *testing.T) {
	ctx := context.Background()
	s := newImages(t)

	_, err := s.Save(ctx, uuid.New(), strings.NewReader("<html><script>alert(1)</script></html>"))
	require.ErrorIs(t, err, ErrUnsupported)

	big := append(pixel(t), make([]byte, MaxImageSize)...)
	_, err = s.Save(ctx, uuid.New(), bytes.NewReader(big))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestImages_DeleteOutsidePrefix(t *testing.T) {
	ctx := context.Background()
	s := newImages(t)
	require.NoError(t, s.Bucket.WriteAll(ctx, "avatars/a.png", pixel(t), nil))

	tests := []string{
		"/uploads/avatars/a.png",
		"/uploads/review-images/../avatars/a.png",
		"/elsewhere/review-images/a.png",
		"/uploads/review-images/",
		"/uploads/review-images/nested/a.png",
	}
	for _, p := range tests {
		t.Run(p, func(t *testing.T) {
			require.ErrorIs(t, s.Delete(ctx, uuid.New(), p), ErrBadPath)
		})
	}

	exists, err := s.Bucket.Exists(ctx, "avatars/a.png")
	require.NoError(t, err)
	assert.True(t, exists)
}
