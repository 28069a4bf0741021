package httpserver

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner, v := testutil.Vendor(t, env.repo, "Tea House")
	buyer := testutil.User(t, env.repo, "buyer@shop.test", models.RoleUser)
	vendorSID := env.login(owner.Email)

	body := map[string]any{
		"name": "Masala Chai", "description": "<b>strong</b>", "price": "250", "stock": 5,
	}
	rec := env.do(http.MethodPost, "/api/vendor/products", body, env.login(buyer.Email))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/api/vendor/products", body, vendorSID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[models.Product](t, rec)
	assert.Equal(t, "masala-chai", p.Slug)
	assert.Equal(t, v.ID, p.VendorID)
	assert.Equal(t, "&lt;b&gt;strong&lt;/b&gt;", p.Description)

	rec = env.do(http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.Page[models.Product]](t, rec)
	require.Len(t, page.Data, 1)
	assert.EqualValues(t, 1, page.Meta.Total)

	rec = env.do(http.MethodGet, "/api/products/search?q=chai", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[transport.Page[models.Product]](t, rec).Data, 1)

	rec = env.do(http.MethodGet, "/api/products/"+p.ID.String(), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/products/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodGet, "/api/products/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPut, "/api/vendor/products/"+p.ID.String(), map[string]any{"price": "200", "discountPrice": "300"}, vendorSID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/vendor/products/"+p.ID.String(), map[string]any{"stock": 12}, vendorSID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 12, decode[models.Product](t, rec).Stock)

	rec = env.do(http.MethodDelete, "/api/vendor/products/"+p.ID.String(), nil, vendorSID)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/api/products/"+p.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesAndStorefront(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.User(t, env.repo, "admin@shop.test", models.RoleAdmin)
	_, v := testutil.Vendor(t, env.repo, "Tea House")
	testutil.Product(t, env.repo, v, "masala", "100", 3)

	rec := env.do(http.MethodPost, "/api/admin/categories", map[string]string{"name": "Tea & Coffee"}, env.login(admin.Email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "tea-and-coffee", decode[models.Category](t, rec).Slug)

	rec = env.do(http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Category](t, rec), 1)

	rec = env.do(http.MethodGet, "/api/vendors/"+v.Slug, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Tea House")

	rec = env.do(http.MethodGet, "/api/vendors/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
