// Package storage keeps review images in a gocloud blob bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const (
	ReviewPrefix = "review-images/"
	MaxImageSize = 5 << 20

	ownerKey = "owner"
)

var (
	ErrTooLarge    = errors.New("image is larger than 5MB")
	ErrUnsupported = errors.New("only jpeg, png, webp and gif images are allowed")
	ErrBadPath     = errors.New("path is not a review image")
	ErrNotFound    = errors.New("image not found")
	ErrNotOwner    = errors.New("image was uploaded by another user")
)

var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Images stores review photos under ReviewPrefix. Public paths are the
// object key joined to PublicPrefix, e.g. /uploads/review-images/<id>.png.
type Images struct {
	Bucket       *blob.Bucket
	PublicPrefix string
}

// Open opens the bucket at url, e.g. file:///var/uploads or mem://.
func Open(ctx context.Context, url, publicPrefix string) (*Images, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", url, err)
	}
	return &Images{Bucket: b, PublicPrefix: publicPrefix}, nil
}

func (s *Images) Close() error {
	return s.Bucket.Close()
}

// Save sniffs the content type, rejects anything but the allowed image
// formats and writes the object under a fresh key tagged with its owner. It
// returns the public path.
func (s *Images) Save(ctx context.Context, owner uuid.UUID, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	ext, ok := allowed[mt.String()]
	if !ok {
		return "", ErrUnsupported
	}

	key := ReviewPrefix + uuid.NewString() + ext
	if err := s.Bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType: mt.String(),
		Metadata:    map[string]string{ownerKey: owner.String()},
	}); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return s.publicPath(key), nil
}

// Owner returns the user who uploaded the image at publicPath.
func (s *Images) Owner(ctx context.Context, publicPath string) (uuid.UUID, error) {
	key, err := s.key(publicPath)
	if err != nil {
		return uuid.Nil, err
	}
	return s.owner(ctx, key)
}

func (s *Images) owner(ctx context.Context, key string) (uuid.UUID, error) {
	attrs, err := s.Bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("attributes %s: %w", key, err)
	}
	id, err := uuid.Parse(attrs.Metadata[ownerKey])
	if err != nil {
		return uuid.Nil, ErrNotOwner
	}
	return id, nil
}

// Delete removes an image previously saved by owner.
func (s *Images) Delete(ctx context.Context, owner uuid.UUID, publicPath string) error {
	key, err := s.key(publicPath)
	if err != nil {
		return err
	}
	got, err := s.owner(ctx, key)
	if err != nil {
		return err
	}
	if got != owner {
		return ErrNotOwner
	}
	if err := s.Bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Read streams the image at publicPath with its content type.
func (s *Images) Read(ctx context.Context, publicPath string) (io.ReadCloser, string, error) {
	key, err := s.key(publicPath)
	if err != nil {
		return nil, "", err
	}
	r, err := s.Bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return r, r.ContentType(), nil
}

func (s *Images) publicPath(key string) string {
	return path.Join("/", s.PublicPrefix, key)
}

// key maps a public path back to its object key and refuses anything
// outside ReviewPrefix.
func (s *Images) key(publicPath string) (string, error) {
	p := path.Clean("/" + strings.TrimSpace(publicPath))
	prefix := path.Join("/", s.PublicPrefix) + "/"
	if prefix != "//" {
		if !strings.HasPrefix(p, prefix) {
			return "", ErrBadPath
		}
		p = strings.TrimPrefix(p, prefix)
	} else {
		p = strings.TrimPrefix(p, "/")
	}
	if !strings.HasPrefix(p, ReviewPrefix) || p == ReviewPrefix || strings.Contains(strings.TrimPrefix(p, ReviewPrefix), "/") {
		return "", ErrBadPath
	}
	return p, nil
}
