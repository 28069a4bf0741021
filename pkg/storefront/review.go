package storefront

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	MaxReviewImages  = 5
	MaxReviewComment = 500
)

var ErrInvalidReview = errors.New("invalid review")

func (c *Client) UploadReviewImage(ctx context.Context, filename string, data []byte) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	if err := c.doMultipart(ctx, "/api/upload/review-image", "image", filename, data, &out); err != nil {
		return "", errors.Wrapf(err, "upload %s", filename)
	}
	return out.Path, nil
}

func (c *Client) DeleteReviewImage(ctx context.Context, path string) error {
	body := map[string]string{"path": path}
	return errors.Wrap(c.doJSON(ctx, http.MethodDelete, "/api/upload/review-image", body, nil), "delete image")
}

// StagedImage is one picture attached to a draft. Path is set once the
// upload went through; Err holds the failure otherwise.
type StagedImage struct {
	Name string
	Path string
	Err  error
}

// ReviewDraft collects one product's rating, comment and images before the
// review is posted.
type ReviewDraft struct {
	ProductID uuid.UUID     `json:"productId"`
	Rating    int           `json:"rating"  validate:"omitempty,min=1,max=5"`
	Comment   string        `json:"comment" validate:"max=500"`
	Images    []StagedImage `json:"-"`
}

// Uploaded lists the server paths of images that were stored.
func (d *ReviewDraft) Uploaded() []string {
	var paths []string
	for _, img := range d.Images {
		if img.Path != "" {
			paths = append(paths, img.Path)
		}
	}
	return paths
}

// Validate rejects a missing or out-of-range rating, an over-long comment
// and more than MaxReviewImages images.
func (d *ReviewDraft) Validate() error {
	if d.Rating == 0 {
		return errors.Wrap(ErrInvalidReview, "rating is required")
	}
	if err := formValidator.Validate(d); err != nil {
		return errors.Wrap(ErrInvalidReview, err.Error())
	}
	if len(d.Uploaded()) > MaxReviewImages {
		return errors.Wrapf(ErrInvalidReview, "at most %d images", MaxReviewImages)
	}
	return nil
}

// StageImage uploads data right away. A failed upload is kept on the draft
// with its error and does not stop other images.
func (c *Client) StageImage(ctx context.Context, d *ReviewDraft, name string, data []byte) error {
	if len(d.Uploaded()) >= MaxReviewImages {
		return errors.Wrapf(ErrInvalidReview, "at most %d images", MaxReviewImages)
	}
	p, err := c.UploadReviewImage(ctx, name, data)
	d.Images = append(d.Images, StagedImage{Name: name, Path: p, Err: err})
	return err
}

// RemoveImage drops the i-th staged image, deleting it on the server when it
// had been uploaded.
func (c *Client) RemoveImage(ctx context.Context, d *ReviewDraft, i int) error {
	if i < 0 || i >= len(d.Images) {
		return errors.Errorf("no staged image at %d", i)
	}
	if p := d.Images[i].Path; p != "" {
		if err := c.DeleteReviewImage(ctx, p); err != nil {
			return err
		}
	}
	d.Images = append(d.Images[:i], d.Images[i+1:]...)
	return nil
}

// CreateReview validates d and posts it. An invalid draft never reaches the
// server.
func (c *Client) CreateReview(ctx context.Context, orderID uuid.UUID, d *ReviewDraft) (*Review, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	body := map[string]any{
		"productId": d.ProductID,
		"orderId":   orderID,
		"rating":    d.Rating,
		"comment":   d.Comment,
		"images":    nonNil(d.Uploaded()),
	}
	var rv Review
	if err := c.doJSON(ctx, http.MethodPost, "/api/reviews", body, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

type BatchResult struct {
	Succeeded int
	Failed    int
	Errors    map[uuid.UUID]error
}

// SubmitReviewBatch posts each rated draft on its own. Drafts with rating 0
// are skipped; invalid drafts count as failed without a request.
func (c *Client) SubmitReviewBatch(ctx context.Context, orderID uuid.UUID, drafts []*ReviewDraft) BatchResult {
	res := BatchResult{Errors: map[uuid.UUID]error{}}
	for _, d := range drafts {
		if d.Rating == 0 {
			continue
		}
		if _, err := c.CreateReview(ctx, orderID, d); err != nil {
			res.Failed++
			res.Errors[d.ProductID] = err
			continue
		}
		res.Succeeded++
	}
	return res
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
