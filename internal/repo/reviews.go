package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type ratingAggregate struct {
	Avg   float64
	Count int64
}

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Create(rv).Error
}

func (r *GormRepo) ReviewExists(ctx context.Context, userID, productID, orderID uuid.UUID) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ? AND order_id = ?", userID, productID, orderID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) aggregate(ctx context.Context, column string, id uuid.UUID) (ratingAggregate, error) {
	var agg ratingAggregate
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where(column+" = ?", id).
		Scan(&agg).Error
	return agg, err
}

// RecomputeProductRating sets rating and review count from the product's
// review rows.
func (r *GormRepo) RecomputeProductRating(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int64, error) {
	agg, err := r.aggregate(ctx, "product_id", productID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	rating := decimal.NewFromFloat(agg.Avg).Round(2)
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"rating": rating, "review_count": agg.Count}).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return rating, agg.Count, nil
}

func (r *GormRepo) RecomputeVendorRating(ctx context.Context, vendorID uuid.UUID) (decimal.Decimal, error) {
	agg, err := r.aggregate(ctx, "vendor_id", vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	rating := decimal.NewFromFloat(agg.Avg).Round(2)
	if err := r.DB.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", vendorID).
		Update("rating", rating).Error; err != nil {
		return decimal.Zero, err
	}
	return rating, nil
}

func (r *GormRepo) RecentReviews(ctx context.Context, limit int) ([]models.Review, error) {
	var rs []models.Review
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *GormRepo) ReviewsByProduct(ctx context.Context, productID uuid.UUID, offset, limit int) (int64, []models.Review, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var rs []models.Review
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&rs).Error; err != nil {
		return 0, nil, err
	}
	return total, rs, nil
}

type ReviewedKey struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
}

// ReviewedPairs returns the (order, product) pairs the user already reviewed.
func (r *GormRepo) ReviewedPairs(ctx context.Context, userID uuid.UUID) (map[ReviewedKey]bool, error) {
	var rs []models.Review
	if err := r.DB.WithContext(ctx).Select("order_id", "product_id").Where("user_id = ?", userID).Find(&rs).Error; err != nil {
		return nil, err
	}
	out := make(map[ReviewedKey]bool, len(rs))
	for _, rv := range rs {
		out[ReviewedKey{OrderID: rv.OrderID, ProductID: rv.ProductID}] = true
	}
	return out, nil
}
