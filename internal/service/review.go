package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/events"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

const (
	DefaultRecentReviews = 10
	MaxRecentReviews     = 50
	MaxReviewImages      = 5
	MaxReviewComment     = 500
)

// ImageOwners resolves who uploaded a review image.
type ImageOwners interface {
	Owner(ctx context.Context, publicPath string) (uuid.UUID, error)
}

type ReviewService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Images ImageOwners
}

// Create stores a review for a product of one of the caller's delivered
// orders and refreshes the product and vendor ratings.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req transport.CreateReviewRequest) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "review.create")

	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrValidation)
	}
	if len([]rune(req.Comment)) > MaxReviewComment {
		return nil, fmt.Errorf("comment is longer than %d characters: %w", MaxReviewComment, ErrValidation)
	}
	if len(req.Images) > MaxReviewImages {
		return nil, fmt.Errorf("at most %d images: %w", MaxReviewImages, ErrValidation)
	}
	if err := s.checkImages(ctx, userID, req.Images); err != nil {
		return nil, err
	}

	order, err := s.Repo.OrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, translate(err, "order")
	}
	if err := eligible(order, userID, req.ProductID); err != nil {
		return nil, err
	}

	exists, err := s.Repo.ReviewExists(ctx, userID, req.ProductID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("product already reviewed for this order: %w", ErrConflict)
	}

	rv := &models.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		OrderID:   order.ID,
		VendorID:  order.VendorID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Images:    nonNil(req.Images),
	}
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateReview(ctx, rv); err != nil {
			return err
		}
		if _, _, err := tx.RecomputeProductRating(ctx, rv.ProductID); err != nil {
			return err
		}
		_, err := tx.RecomputeVendorRating(ctx, rv.VendorID)
		return err
	})
	if err != nil {
		return nil, translate(err, "review")
	}

	l.Info("review_created", "review_id", rv.ID, "product_id", rv.ProductID, "rating", rv.Rating)
	emit(ctx, s.Events, events.TopicReview, rv.ProductID.String(), map[string]any{
		"type":      "review_created",
		"reviewId":  rv.ID,
		"productId": rv.ProductID,
		"vendorId":  rv.VendorID,
		"userId":    userID,
		"rating":    rv.Rating,
	})
	return rv, nil
}

// eligible requires a delivered order of the user that contains the product.
func eligible(o *models.Order, userID, productID uuid.UUID) error {
	if o.UserID != userID {
		return fmt.Errorf("order does not belong to you: %w", ErrNotEligible)
	}
	if o.Status != models.OrderStatusDelivered {
		return fmt.Errorf("order is not delivered yet: %w", ErrNotEligible)
	}
	for _, it := range o.Items {
		if it.ProductID == productID {
			return nil
		}
	}
	return fmt.Errorf("product is not part of this order: %w", ErrNotEligible)
}

// Recent lists the newest reviews with reviewer and product names.
func (s *ReviewService) Recent(ctx context.Context, limit int) ([]transport.RecentReview, error) {
	limit = util.Clamp(limit, DefaultRecentReviews, MaxRecentReviews)
	rs, err := s.Repo.RecentReviews(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, rs)
}

func (s *ReviewService) ForProduct(ctx context.Context, productID uuid.UUID, page, size int) (transport.Page[transport.RecentReview], error) {
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)
	total, rs, err := s.Repo.ReviewsByProduct(ctx, productID, offset, limit)
	if err != nil {
		return transport.Page[transport.RecentReview]{}, err
	}
	views, err := s.decorate(ctx, rs)
	if err != nil {
		return transport.Page[transport.RecentReview]{}, err
	}
	return transport.NewPage(views, page, limit, total), nil
}

func (s *ReviewService) decorate(ctx context.Context, rs []models.Review) ([]transport.RecentReview, error) {
	userIDs := make([]uuid.UUID, 0, len(rs))
	productIDs := make([]uuid.UUID, 0, len(rs))
	for _, rv := range rs {
		userIDs = append(userIDs, rv.UserID)
		productIDs = append(productIDs, rv.ProductID)
	}
	users, err := s.Repo.UsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.Repo.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	out := make([]transport.RecentReview, 0, len(rs))
	for _, rv := range rs {
		u := users[rv.UserID]
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		out = append(out, transport.RecentReview{
			ID:          rv.ID,
			ProductID:   rv.ProductID,
			ProductName: names[rv.ProductID],
			UserName:    name,
			Rating:      rv.Rating,
			Comment:     rv.Comment,
			Images:      nonNil(rv.Images),
			CreatedAt:   rv.CreatedAt,
		})
	}
	return out, nil
}

// Unreviewed lists the caller's delivered orders that still have products
// without a review for that order.
func (s *ReviewService) Unreviewed(ctx context.Context, userID uuid.UUID) ([]transport.UnreviewedOrder, error) {
	orders, err := s.Repo.DeliveredOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	done, err := s.Repo.ReviewedPairs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	images := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		if len(p.Images) > 0 {
			images[p.ID] = p.Images[0]
		}
	}

	out := []transport.UnreviewedOrder{}
	for _, o := range orders {
		seen := map[uuid.UUID]bool{}
		var pending []transport.UnreviewedProduct
		for _, it := range o.Items {
			if seen[it.ProductID] || done[repo.ReviewedKey{OrderID: o.ID, ProductID: it.ProductID}] {
				continue
			}
			seen[it.ProductID] = true
			pending = append(pending, transport.UnreviewedProduct{
				ProductID: it.ProductID,
				Name:      it.ProductName,
				Image:     images[it.ProductID],
			})
		}
		if len(pending) > 0 {
			out = append(out, transport.UnreviewedOrder{Order: o, Products: pending})
		}
	}
	return out, nil
}

// checkImages accepts only images the user uploaded.
func (s *ReviewService) checkImages(ctx context.Context, userID uuid.UUID, paths []string) error {
	if s.Images == nil {
		return nil
	}
	for _, p := range paths {
		owner, err := s.Images.Owner(ctx, p)
		if err != nil || owner != userID {
			return fmt.Errorf("image %q is not one of your uploads: %w", p, ErrValidation)
		}
	}
	return nil
}
