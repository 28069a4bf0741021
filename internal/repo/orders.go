package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) OrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) OrdersByVendor(ctx context.Context, vendorID uuid.UUID, status string, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("vendor_id = ?", vendorID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var orders []models.Order
	if err := q.Session(&gorm.Session{}).Preload("Items").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) DeliveredOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusDelivered).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) SetOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *GormRepo) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Clauses(lockForUpdate).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) CouponsByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Coupon, error) {
	var cs []models.Coupon
	if err := r.DB.WithContext(ctx).Where("vendor_id = ?", vendorID).Order("created_at DESC").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *GormRepo) CouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LockCouponByCode reads the coupon with a row lock. Call it inside a
// transaction.
func (r *GormRepo) LockCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.DB.WithContext(ctx).Clauses(lockForUpdate).Where("code = ?", normalizeCode(code)).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementCouponUsage counts one more use unless the usage limit is already
// reached. It reports whether the use was counted.
func (r *GormRepo) IncrementCouponUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	return res.RowsAffected == 1, res.Error
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
