package storefront

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewDraft_Validate(t *testing.T) {
	six := make([]StagedImage, 6)
	for i := range six {
		six[i].Path = "/uploads/review-images/x.png"
	}

	tests := []struct {
		name  string
		draft ReviewDraft
		ok    bool
	}{
		{"unrated", ReviewDraft{Rating: 0}, false},
		{"rating six", ReviewDraft{Rating: 6}, false},
		{"long comment", ReviewDraft{Rating: 4, Comment: strings.Repeat("a", MaxReviewComment+1)}, false},
		{"comment at limit", ReviewDraft{Rating: 4, Comment: strings.Repeat("a", MaxReviewComment)}, true},
		{"too many images", ReviewDraft{Rating: 4, Images: six}, false},
		{"failed uploads not counted", ReviewDraft{Rating: 4, Images: make([]StagedImage, 6)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidReview), "%v", err)
		})
	}
}

func TestStageAndRemoveImages(t *testing.T) {
	f, c := newFakeAPI(t)
	ctx := context.Background()
	d := &ReviewDraft{ProductID: uuid.New(), Rating: 5}

	require.NoError(t, c.StageImage(ctx, d, "a.png", []byte("png-1")))
	err := c.StageImage(ctx, d, "b.txt", []byte("bad data"))
	require.Error(t, err)
	assert.Equal(t, "only jpeg, png, webp and gif images are allowed", ServerMessage(err))
	require.NoError(t, c.StageImage(ctx, d, "c.png", []byte("png-2")))

	require.Len(t, d.Images, 3)
	assert.Error(t, d.Images[1].Err)
	assert.Equal(t, []string{"/uploads/review-images/1.png", "/uploads/review-images/2.png"}, d.Uploaded())

	require.NoError(t, c.RemoveImage(ctx, d, 1))
	assert.Empty(t, f.deleted, "failed uploads have nothing to delete")

	require.NoError(t, c.RemoveImage(ctx, d, 0))
	assert.Equal(t, []string{"/uploads/review-images/1.png"}, f.deleted)
	assert.Equal(t, []string{"/uploads/review-images/2.png"}, d.Uploaded())

	assert.Error(t, c.RemoveImage(ctx, d, 5))

	for i := 0; i < MaxReviewImages-1; i++ {
		require.NoError(t, c.StageImage(ctx, d, "more.png", []byte("png")))
	}
	assert.True(t, errors.Is(c.StageImage(ctx, d, "extra.png", []byte("png")), ErrInvalidReview))
}

func TestSubmitReviewBatch(t *testing.T) {
	f, c := newFakeAPI(t)
	ctx := context.Background()
	order := uuid.New()

	rated := &ReviewDraft{ProductID: uuid.New(), Rating: 5, Comment: "great"}
	skipped := &ReviewDraft{ProductID: uuid.New()}
	invalid := &ReviewDraft{ProductID: uuid.New(), Rating: 3, Comment: strings.Repeat("x", 501)}
	// same product again: the server answers 409
	dup := &ReviewDraft{ProductID: rated.ProductID, Rating: 4}
	withImage := &ReviewDraft{ProductID: uuid.New(), Rating: 2}
	require.NoError(t, c.StageImage(ctx, withImage, "a.png", []byte("png")))

	res := c.SubmitReviewBatch(ctx, order, []*ReviewDraft{rated, skipped, invalid, dup, withImage})
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, res.Errors, invalid.ProductID)
	assert.Contains(t, res.Errors, rated.ProductID)
	assert.NotContains(t, res.Errors, skipped.ProductID)

	require.Len(t, f.reviews, 2)
	assert.Equal(t, order.String(), f.reviews[0]["orderId"])
	assert.Equal(t, []any{}, f.reviews[0]["images"])
	assert.Equal(t, []any{"/uploads/review-images/1.png"}, f.reviews[1]["images"])
}

func TestCreateReview_RejectsInvalidDraft(t *testing.T) {
	f, c := newFakeAPI(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft *ReviewDraft
	}{
		{"no rating", &ReviewDraft{ProductID: uuid.New()}},
		{"rating too high", &ReviewDraft{ProductID: uuid.New(), Rating: 6}},
		{"long comment", &ReviewDraft{ProductID: uuid.New(), Rating: 4, Comment: strings.Repeat("x", MaxReviewComment+1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateReview(ctx, uuid.New(), tc.draft)
			require.True(t, errors.Is(err, ErrInvalidReview), err)
		})
	}
	assert.Empty(t, f.reviews)

	rv, err := c.CreateReview(ctx, uuid.New(), &ReviewDraft{ProductID: uuid.New(), Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, rv.Rating)
	assert.Len(t, f.reviews, 1)
}
