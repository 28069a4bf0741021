package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

var productSorts = map[string]string{
	"newest":     "created_at DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"rating":     "rating DESC",
	"name":       "name ASC",
}

// ListProducts pages active products, filtered by category, vendor and a
// case-insensitive name/description match.
func (r *GormRepo) ListProducts(ctx context.Context, q transport.ProductQuery, offset, limit int) (int64, []models.Product, error) {
	base := r.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if q.CategoryID != nil {
		base = base.Where("category_id = ?", *q.CategoryID)
	}
	if q.VendorID != nil {
		base = base.Where("vendor_id = ?", *q.VendorID)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		base = base.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	order, ok := productSorts[q.Sort]
	if !ok {
		order = productSorts["newest"]
	}

	var items []models.Product
	if err := base.Session(&gorm.Session{}).Order(order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ProductsByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("vendor_id = ?", vendorID).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("vendor_id = ?", vendorID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Vendor").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByIDs keeps the order of ids and drops ids that are not found.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// LockProducts loads the products row-locked for the rest of the transaction.
func (r *GormRepo) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Clauses(lockForUpdate).
		Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Product, len(items))
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}

// RestoreStock returns cancelled quantities to the shelf.
func (r *GormRepo) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *GormRepo) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchProducts is the SQL fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return r.ListProducts(ctx, transport.ProductQuery{Q: q, Sort: "rating"}, offset, limit)
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}
