// Package testutil builds an in-memory database and seed data for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/pkg/hash"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func NewRepo(t *testing.T) *repo.GormRepo {
	return repo.New(NewDB(t))
}

const Password = "password123"

// User inserts an active user with Password as its password.
func User(t *testing.T, r *repo.GormRepo, email, role string) *models.User {
	t.Helper()
	pw, err := hash.HashPassword(Password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: pw,
		Role:         role,
		IsActive:     true,
	}
	if err := r.CreateUser(context.Background(), u, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Vendor inserts a vendor user with an approved store.
func Vendor(t *testing.T, r *repo.GormRepo, storeName string) (*models.User, *models.Vendor) {
	t.Helper()
	u := User(t, r, uuid.NewString()[:8]+"@shop.test", models.RoleVendor)
	v := &models.Vendor{
		UserID:     u.ID,
		StoreName:  storeName,
		Slug:       "store-" + uuid.NewString()[:8],
		IsApproved: true,
	}
	if err := r.CreateVendor(context.Background(), v); err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return u, v
}

// Product inserts an active product priced at price with the given stock.
func Product(t *testing.T, r *repo.GormRepo, v *models.Vendor, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		VendorID: v.ID,
		Name:     name,
		Slug:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Images:   []string{"/uploads/" + name + ".jpg"},
		IsActive: true,
	}
	if err := r.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// DeliveredOrder inserts a delivered order of user for products of v.
func DeliveredOrder(t *testing.T, r *repo.GormRepo, user *models.User, v *models.Vendor, products ...*models.Product) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:          user.ID,
		VendorID:        v.ID,
		Status:          models.OrderStatusDelivered,
		DeliveryAddress: "12 Lake Road",
		DeliveryPhone:   "9800000000",
		PaymentMethod:   "cod",
	}
	total := decimal.Zero
	for _, p := range products {
		o.Items = append(o.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    1,
			UnitPrice:   p.UnitPrice(),
			LineTotal:   p.UnitPrice(),
		})
		total = total.Add(p.UnitPrice())
	}
	o.Total = total
	if err := r.CreateOrder(context.Background(), o); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}
