package httpserver

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/cookies"
)

const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func (env *testEnv) upload(session string, data []byte) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "photo.bin")
	require.NoError(env.t, err)
	_, err = fw.Write(data)
	require.NoError(env.t, err)
	require.NoError(env.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/review-image", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set("x-csrf-token", csrfToken)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrfToken})
	if session != "" {
		req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: session})
	}
	return env.serve(req)
}

func TestReviewImageEndpoints(t *testing.T) {
	env := newTestEnv(t)
	buyer := testutil.User(t, env.repo, "buyer@shop.test", models.RoleUser)
	sid := env.login(buyer.Email)

	png, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)

	rec := env.upload("", png)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.upload(sid, []byte("<html><body>hi</body></html>"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(sid, png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	path := decode[transport.UploadResponse](t, rec).Path
	assert.True(t, strings.HasPrefix(path, "/uploads/review-images/"), path)
	assert.True(t, strings.HasSuffix(path, ".png"), path)

	rec = env.serve(httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, png, body)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"outside prefix", "/uploads/avatars/x.png", http.StatusBadRequest},
		{"traversal", "/uploads/review-images/../secret.png", http.StatusBadRequest},
		{"stored", path, http.StatusNoContent},
		{"already gone", path, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodDelete, "/api/upload/review-image", map[string]string{"path": tc.path}, sid)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	rec = env.serve(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewEndpoints(t *testing.T) {
	env := newTestEnv(t)
	buyer := testutil.User(t, env.repo, "buyer@shop.test", models.RoleUser)
	_, v := testutil.Vendor(t, env.repo, "Tea House")
	tea := testutil.Product(t, env.repo, v, "masala", "100", 10)
	order := testutil.DeliveredOrder(t, env.repo, buyer, v, tea)
	sid := env.login(buyer.Email)

	rec := env.do(http.MethodGet, "/api/orders/unreviewed", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]transport.UnreviewedOrder](t, rec), 1)

	review := map[string]any{"productId": tea.ID, "orderId": order.ID, "rating": 6}
	rec = env.do(http.MethodPost, "/api/reviews", review, sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	review["rating"] = 5
	review["comment"] = "Lovely"
	rec = env.do(http.MethodPost, "/api/reviews", review, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/reviews", review, sid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPost, "/api/reviews", review, sid)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/api/reviews/recent?limit=5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]transport.RecentReview](t, rec)
	require.Len(t, recent, 1)
	assert.Equal(t, "masala", recent[0].ProductName)

	rec = env.do(http.MethodGet, "/api/products/"+tea.ID.String()+"/reviews", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[transport.Page[transport.RecentReview]](t, rec).Meta.Total)

	rec = env.do(http.MethodGet, "/api/orders/unreviewed", nil, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]transport.UnreviewedOrder](t, rec))
}

func TestReviewImageOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.User(t, env.repo, "alice@shop.test", models.RoleUser)
	mallory := testutil.User(t, env.repo, "mallory@shop.test", models.RoleUser)
	_, v := testutil.Vendor(t, env.repo, "Tea House")
	tea := testutil.Product(t, env.repo, v, "masala", "100", 10)
	order := testutil.DeliveredOrder(t, env.repo, mallory, v, tea)
	aliceSID := env.login(alice.Email)
	mallorySID := env.login(mallory.Email)

	png, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)
	rec := env.upload(aliceSID, png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	path := decode[transport.UploadResponse](t, rec).Path

	rec = env.do(http.MethodDelete, "/api/upload/review-image", map[string]string{"path": path}, mallorySID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	review := map[string]any{"productId": tea.ID, "orderId": order.ID, "rating": 4, "images": []string{path}}
	rec = env.do(http.MethodPost, "/api/reviews", review, mallorySID)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = env.serve(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.upload(mallorySID, png)
	require.Equal(t, http.StatusCreated, rec.Code)
	review["images"] = []string{decode[transport.UploadResponse](t, rec).Path}
	rec = env.do(http.MethodPost, "/api/reviews", review, mallorySID)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodDelete, "/api/upload/review-image", map[string]string{"path": path}, aliceSID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
