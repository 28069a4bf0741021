package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/format"
)

type VendorService struct {
	Repo *repo.GormRepo
}

type Storefront struct {
	Vendor   *models.Vendor   `json:"vendor"`
	Products []models.Product `json:"products"`
}

const storefrontProducts = 50

// PublicProfile shows an approved store with its newest active products.
func (s *VendorService) PublicProfile(ctx context.Context, slug string) (*Storefront, error) {
	v, err := s.Repo.VendorBySlug(ctx, slug)
	if err != nil {
		return nil, translate(err, "vendor")
	}
	if !v.IsApproved {
		return nil, fmt.Errorf("vendor not found: %w", ErrNotFound)
	}
	_, items, err := s.Repo.ListProducts(ctx, transport.ProductQuery{VendorID: &v.ID}, 0, storefrontProducts)
	if err != nil {
		return nil, err
	}
	return &Storefront{Vendor: v, Products: items}, nil
}

func (s *VendorService) Profile(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	return v, translate(err, "vendor")
}

func (s *VendorService) UpdateProfile(ctx context.Context, userID uuid.UUID, req transport.UpdateVendorProfileRequest) (*models.Vendor, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "vendor")
	}
	if req.StoreName != nil {
		v.StoreName = strings.TrimSpace(*req.StoreName)
	}
	if req.StoreDescription != nil {
		v.StoreDescription = *req.StoreDescription
	}
	if req.Phone != nil {
		v.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.DeliveryAreas != nil {
		v.DeliveryAreas = req.DeliveryAreas
	}
	if req.DeliveryRadiusKm != nil {
		v.DeliveryRadiusKm = *req.DeliveryRadiusKm
	}
	if req.DeliveryFee != nil {
		if req.DeliveryFee.IsNegative() {
			return nil, fmt.Errorf("delivery fee cannot be negative: %w", ErrValidation)
		}
		v.DeliveryFee = req.DeliveryFee.Round(2)
	}
	if err := s.Repo.SaveVendor(ctx, v); err != nil {
		return nil, translate(err, "vendor")
	}
	return v, nil
}

func (s *VendorService) Stats(ctx context.Context, userID uuid.UUID) (*transport.VendorStats, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "vendor")
	}
	products, err := s.Repo.CountProducts(ctx, &v.ID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.Repo.OrderCountsByStatus(ctx, &v.ID)
	if err != nil {
		return nil, err
	}
	return &transport.VendorStats{
		ProductCount:      products,
		OrdersByStatus:    byStatus,
		TotalSales:        v.TotalSales,
		TotalSalesDisplay: format.FormatCurrencyCompact(v.TotalSales),
		Rating:            v.Rating,
	}, nil
}

var hundred = decimal.NewFromInt(100)

func (s *VendorService) CreateCoupon(ctx context.Context, userID uuid.UUID, req transport.CreateCouponRequest) (*models.Coupon, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "vendor")
	}
	if !req.DiscountValue.IsPositive() {
		return nil, fmt.Errorf("discount value must be greater than 0: %w", ErrValidation)
	}
	if req.DiscountType == models.DiscountPercentage && req.DiscountValue.GreaterThan(hundred) {
		return nil, fmt.Errorf("percentage discount cannot exceed 100: %w", ErrValidation)
	}

	c := &models.Coupon{
		VendorID:       v.ID,
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue.Round(2),
		MinOrderAmount: req.MinOrderAmount,
		MaxDiscount:    req.MaxDiscount,
		ExpiresAt:      req.ExpiresAt,
		UsageLimit:     req.UsageLimit,
		IsActive:       true,
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, translate(err, "coupon")
	}
	return c, nil
}

func (s *VendorService) ListCoupons(ctx context.Context, userID uuid.UUID) ([]models.Coupon, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "vendor")
	}
	cs, err := s.Repo.CouponsByVendor(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []models.Coupon{}
	}
	return cs, nil
}
