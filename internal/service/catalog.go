package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/events"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Search *search.Service
	Events events.Publisher
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductQuery) (transport.Page[models.Product], error) {
	page, size := util.Normalize(q.Page, q.Size)
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListProducts(ctx, q, offset, limit)
	if err != nil {
		return transport.Page[models.Product]{}, err
	}
	return transport.NewPage(items, page, limit, total), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product not found: %w", ErrNotFound)
	}
	return p, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (transport.Page[models.Product], error) {
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Search.Search(ctx, q, offset, limit)
	if err != nil {
		return transport.Page[models.Product]{}, err
	}
	return transport.NewPage(items, page, limit, total), nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	catSlug, err := uniqueSlug(ctx, s.Repo, &models.Category{}, req.Name)
	if err != nil {
		return nil, err
	}
	c := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        catSlug,
		Description: req.Description,
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, translate(err, "category")
	}
	return c, nil
}

// approvedVendor resolves the caller's store and requires admin approval.
func (s *CatalogService) approvedVendor(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no vendor profile: %w", ErrForbidden)
		}
		return nil, err
	}
	if !v.IsApproved {
		return nil, fmt.Errorf("vendor is not approved yet: %w", ErrForbidden)
	}
	return v, nil
}

func validatePricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("price must be greater than 0: %w", ErrValidation)
	}
	if discount != nil {
		if discount.IsNegative() {
			return fmt.Errorf("discount price cannot be negative: %w", ErrValidation)
		}
		if discount.GreaterThanOrEqual(price) {
			return fmt.Errorf("discount price must be below price: %w", ErrValidation)
		}
	}
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.CategoryByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unknown category: %w", ErrValidation)
		}
		return err
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, userID uuid.UUID, req transport.CreateProductRequest) (*models.Product, error) {
	v, err := s.approvedVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validatePricing(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		VendorID:      v.ID,
		CategoryID:    req.CategoryID,
		Name:          strings.TrimSpace(req.Name),
		Slug:          productSlug(req.Name),
		Description:   req.Description,
		Price:         req.Price.Round(2),
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		Images:        nonNil(req.Images),
		IsActive:      true,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, translate(err, "product")
	}

	s.Search.Reindex(ctx, p)
	emit(ctx, s.Events, events.TopicCatalog, p.ID.String(), map[string]any{
		"type":      "product_created",
		"productId": p.ID,
		"vendorId":  v.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	return p, nil
}

// ownedProduct loads a product and checks it belongs to the caller's store.
func (s *CatalogService) ownedProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Product, error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no vendor profile: %w", ErrForbidden)
		}
		return nil, err
	}
	p, err := s.Repo.ProductByID(ctx, productID)
	if err != nil {
		return nil, translate(err, "product")
	}
	if p.VendorID != v.ID {
		return nil, fmt.Errorf("product belongs to another vendor: %w", ErrForbidden)
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		p.Slug = productSlug(p.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.DiscountPrice != nil {
		if req.DiscountPrice.IsZero() {
			p.DiscountPrice = nil
		} else {
			p.DiscountPrice = req.DiscountPrice
		}
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validatePricing(p.Price, p.DiscountPrice); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, translate(err, "product")
	}

	s.Search.Reindex(ctx, p)
	emit(ctx, s.Events, events.TopicCatalog, p.ID.String(), map[string]any{
		"type":      "product_updated",
		"productId": p.ID,
		"vendorId":  p.VendorID,
		"name":      p.Name,
		"price":     p.Price,
	})
	return p, nil
}

// DeleteProduct hides the product. Order history keeps its snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	p, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return err
	}
	if err := s.Repo.SetProductActive(ctx, p.ID, false); err != nil {
		return translate(err, "product")
	}
	p.IsActive = false
	s.Search.Reindex(ctx, p)
	return nil
}

func (s *CatalogService) VendorProducts(ctx context.Context, userID uuid.UUID, page, size int) (transport.Page[models.Product], error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		return transport.Page[models.Product]{}, translate(err, "vendor")
	}
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ProductsByVendor(ctx, v.ID, offset, limit)
	if err != nil {
		return transport.Page[models.Product]{}, err
	}
	return transport.NewPage(items, page, limit, total), nil
}

// productSlug is not unique; the product id disambiguates.
func productSlug(name string) string {
	return slug.Make(name)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
