package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/events"
)

func newCatalog(r *repo.GormRepo, pub events.Publisher) *CatalogService {
	return &CatalogService{Repo: r, Search: &search.Service{Store: r}, Events: pub}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepo(t)
	rec := &events.Recorder{}
	svc := newCatalog(r, rec)

	owner, v := testutil.Vendor(t, r, "Tea House")
	buyer := testutil.User(t, r, "buyer@shop.test", models.RoleUser)

	price := decimal.RequireFromString("250")
	over := decimal.RequireFromString("300")

	t.Run("rules", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, buyer.ID, transport.CreateProductRequest{Name: "x", Price: price})
		require.ErrorIs(t, err, ErrForbidden)

		_, err = svc.CreateProduct(ctx, owner.ID, transport.CreateProductRequest{Name: "x", Price: decimal.Zero})
		require.ErrorIs(t, err, ErrValidation)

		_, err = svc.CreateProduct(ctx, owner.ID, transport.CreateProductRequest{Name: "x", Price: price, DiscountPrice: &over})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unapproved vendor", func(t *testing.T) {
		_, err := r.SetVendorApproved(ctx, v.ID, false)
		require.NoError(t, err)
		_, err = svc.CreateProduct(ctx, owner.ID, transport.CreateProductRequest{Name: "x", Price: price})
		require.ErrorIs(t, err, ErrForbidden)
		_, err = r.SetVendorApproved(ctx, v.ID, true)
		require.NoError(t, err)
	})

	p, err := svc.CreateProduct(ctx, owner.ID, transport.CreateProductRequest{
		Name: "Masala Chai", Description: "strong", Price: price, Stock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "masala-chai", p.Slug)
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{"product_created"}, rec.Types(events.TopicCatalog))

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Masala Chai", got.Name)

	page, err := svc.SearchProducts(ctx, "chai", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.EqualValues(t, 1, page.Meta.Total)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepo(t)
	rec := &events.Recorder{}
	svc := newCatalog(r, rec)

	owner, v := testutil.Vendor(t, r, "Tea House")
	intruder, _ := testutil.Vendor(t, r, "Spice Co")
	p := testutil.Product(t, r, v, "masala", "100", 5)

	name := "Masala Gold"
	_, err := svc.UpdateProduct(ctx, intruder.ID, p.ID, transport.PatchProductRequest{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)

	stock := 9
	updated, err := svc.UpdateProduct(ctx, owner.ID, p.ID, transport.PatchProductRequest{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "masala-gold", updated.Slug)
	assert.Equal(t, 9, updated.Stock)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(100)))

	require.NoError(t, svc.DeleteProduct(ctx, owner.ID, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListProducts(ctx, transport.ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Data)

	mine, err := svc.VendorProducts(ctx, owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	assert.False(t, mine.Data[0].IsActive)
}

func TestCreateCategory_UniqueSlug(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepo(t)
	svc := newCatalog(r, nil)

	c, err := svc.CreateCategory(ctx, transport.CreateCategoryRequest{Name: "Tea & Coffee"})
	require.NoError(t, err)
	assert.Equal(t, "tea-and-coffee", c.Slug)

	_, err = svc.CreateCategory(ctx, transport.CreateCategoryRequest{Name: "Tea & Coffee"})
	require.ErrorIs(t, err, ErrConflict)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}
