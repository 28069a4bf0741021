package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/pkg/cookies"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, p := range []string{"/health/live", "/health/ready"} {
		rec := env.serve(httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{
		"email": "asha@shop.test", "username": "asha", "password": "password123", "fullName": "Asha Rai",
	}
	rec := env.do(http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[models.User](t, rec)
	assert.Equal(t, "asha@shop.test", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "nope", "username": "a", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, errorOf(t, rec))

	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "asha@shop.test", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sid := env.login("asha@shop.test")

	rec = env.do(http.MethodGet, "/api/auth/me", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decode[service.Profile](t, rec)
	assert.Equal(t, user.ID, me.User.ID)
	assert.Nil(t, me.Vendor)

	rec = env.do(http.MethodPut, "/api/auth/profile", map[string]string{"phone": "9800000000"}, sid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "9800000000", decode[models.User](t, rec).Phone)

	rec = env.do(http.MethodPost, "/api/auth/logout", nil, sid)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		cleared[ck.Name] = ck.Value == "" && ck.MaxAge < 0
	}
	assert.True(t, cleared[cookies.SessionCookie])
	assert.True(t, cleared["_csrf"])
	assert.True(t, cleared["csrf-token"])

	rec = env.do(http.MethodGet, "/api/auth/me", nil, sid)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCSRF(t *testing.T) {
	env := newTestEnv(t)
	buyer := testutil.User(t, env.repo, "buyer@shop.test", models.RoleUser)
	_, v := testutil.Vendor(t, env.repo, "Tea House")
	p := testutil.Product(t, env.repo, v, "masala", "100", 5)
	sid := env.login(buyer.Email)

	payload := `{"productId":"` + p.ID.String() + `","quantity":1}`
	post := func(token, cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: sid})
		if token != "" {
			req.Header.Set("x-csrf-token", token)
		}
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "_csrf", Value: cookie})
		}
		return env.serve(req)
	}

	rec := post("", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid CSRF token", errorOf(t, rec))

	rec = post("forged", "other")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.serve(httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["csrfToken"]
	require.NotEmpty(t, token)

	var httpOnly string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "_csrf" {
			assert.True(t, ck.HttpOnly)
			httpOnly = ck.Value
		}
	}
	require.Equal(t, token, httpOnly)

	rec = post(token, httpOnly)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRoleGuards(t *testing.T) {
	env := newTestEnv(t)
	buyer := testutil.User(t, env.repo, "buyer@shop.test", models.RoleUser)
	owner, _ := testutil.Vendor(t, env.repo, "Tea House")
	admin := testutil.User(t, env.repo, "admin@shop.test", models.RoleAdmin)

	sessions := map[string]string{
		"anon":   "",
		"buyer":  env.login(buyer.Email),
		"vendor": env.login(owner.Email),
		"admin":  env.login(admin.Email),
	}

	tests := []struct {
		who  string
		path string
		want int
	}{
		{"anon", "/api/cart", http.StatusUnauthorized},
		{"anon", "/api/products", http.StatusOK},
		{"buyer", "/api/cart", http.StatusOK},
		{"buyer", "/api/vendor/stats", http.StatusForbidden},
		{"vendor", "/api/vendor/stats", http.StatusOK},
		{"vendor", "/api/admin/stats", http.StatusForbidden},
		{"admin", "/api/admin/stats", http.StatusOK},
		{"admin", "/api/admin/users", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.who+" "+tc.path, func(t *testing.T) {
			rec := env.do(http.MethodGet, tc.path, nil, sessions[tc.who])
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(http.MethodGet, "/api/cart", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleChangeEndsSessions(t *testing.T) {
	env := newTestEnv(t)
	root := testutil.User(t, env.repo, "root@shop.test", models.RoleAdmin)
	boss := testutil.User(t, env.repo, "boss@shop.test", models.RoleAdmin)

	rootSID := env.login(root.Email)
	bossSID := env.login(boss.Email)

	rec := env.do(http.MethodGet, "/api/admin/users", nil, bossSID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPatch, "/api/admin/users/"+boss.ID.String()+"/role", map[string]string{"role": models.RoleUser}, rootSID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/admin/users", nil, bossSID)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bossSID = env.login(boss.Email)
	rec = env.do(http.MethodGet, "/api/admin/users", nil, bossSID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/admin/users", nil, rootSID)
	assert.Equal(t, http.StatusOK, rec.Code)
}
