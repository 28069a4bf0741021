package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type statusCount struct {
	Status string
	Count  int64
}

// OrderCountsByStatus counts orders per status, for one vendor or, with a nil
// vendor, across the marketplace.
func (r *GormRepo) OrderCountsByStatus(ctx context.Context, vendorID *uuid.UUID) (map[string]int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status")
	if vendorID != nil {
		q = q.Where("vendor_id = ?", *vendorID)
	}
	var rows []statusCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *GormRepo) CountProducts(ctx context.Context, vendorID *uuid.UUID) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if vendorID != nil {
		q = q.Where("vendor_id = ?", *vendorID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepo) CountVendors(ctx context.Context, approved *bool) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Vendor{})
	if approved != nil {
		q = q.Where("is_approved = ?", *approved)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// DeliveredRevenue sums the totals of delivered orders.
func (r *GormRepo) DeliveredRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sum struct{ Total float64 }
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("status = ?", models.OrderStatusDelivered).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(sum.Total).Round(2), nil
}
