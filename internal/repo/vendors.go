package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func (r *GormRepo) CreateVendor(ctx context.Context, v *models.Vendor) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *GormRepo) VendorByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) VendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) VendorBySlug(ctx context.Context, slug string) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) VendorsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Vendor, error) {
	out := make(map[uuid.UUID]models.Vendor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var vs []models.Vendor
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&vs).Error; err != nil {
		return nil, err
	}
	for _, v := range vs {
		out[v.ID] = v
	}
	return out, nil
}

func (r *GormRepo) ListVendors(ctx context.Context, approved *bool) ([]models.Vendor, error) {
	q := r.DB.WithContext(ctx).Model(&models.Vendor{})
	if approved != nil {
		q = q.Where("is_approved = ?", *approved)
	}
	var vs []models.Vendor
	if err := q.Order("created_at DESC").Find(&vs).Error; err != nil {
		return nil, err
	}
	return vs, nil
}

func (r *GormRepo) SaveVendor(ctx context.Context, v *models.Vendor) error {
	return r.DB.WithContext(ctx).Save(v).Error
}

func (r *GormRepo) SetVendorApproved(ctx context.Context, id uuid.UUID, approved bool) (*models.Vendor, error) {
	res := r.DB.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.VendorByID(ctx, id)
}

func (r *GormRepo) AddVendorSales(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.DB.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", id).
		Update("total_sales", gorm.Expr("total_sales + ?", amount)).Error
}
