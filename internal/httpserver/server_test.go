package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/pkg/cookies"
	"github.com/Skotchmaster/marketplace/pkg/events"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	authmw "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/middleware/security"
)

const csrfToken = "test-csrf-token"

var testSecret = []byte("test-secret")

type testEnv struct {
	t      *testing.T
	e      *echo.Echo
	repo   *repo.GormRepo
	events *events.Recorder
	images *storage.Images
}

func newTestEnv(t *testing.T, opts ...func(*security.ChainConfig)) *testEnv {
	t.Helper()

	r := testutil.NewRepo(t)
	rec := &events.Recorder{}
	images, err := storage.Open(context.Background(), "mem://", "/uploads")
	require.NoError(t, err)
	t.Cleanup(func() { _ = images.Close() })

	authSvc := &service.AuthService{Repo: r, Secret: testSecret, TTL: time.Hour}
	cartSvc := &service.CartService{Repo: r, Events: rec}
	orderSvc := &service.OrderService{Repo: r, Events: rec}

	cfg := security.DefaultChain(false, security.OriginPolicy{Exact: []string{"http://localhost:3000"}, HTTPSSuffix: ".vercel.app"})
	cfg.Auth.Max = 1000
	for _, opt := range opts {
		opt(&cfg)
	}

	e := NewEcho(logging.NewWithWriter(io.Discard, "error"), security.Chain(cfg)...)
	Register(e, &Deps{
		DB:      r.DB,
		Session: authmw.NewSessionMiddleware(testSecret, authSvc, false),
		CSRF:    cfg.CSRF,
		Auth:    &AuthHTTP{Svc: authSvc, CSRF: cfg.CSRF},
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Search: &search.Service{Store: r}, Events: rec}},
		Cart:    &CartHTTP{Svc: cartSvc, Checkout: &service.CheckoutService{Cart: cartSvc, Orders: orderSvc}},
		Orders:  &OrderHTTP{Svc: orderSvc},
		Reviews: &ReviewHTTP{Svc: &service.ReviewService{Repo: r, Events: rec, Images: images}, Images: images},
		Vendors: &VendorHTTP{Svc: &service.VendorService{Repo: r}},
		Admin:   &AdminHTTP{Svc: &service.AdminService{Repo: r}},
	})

	return &testEnv{t: t, e: e, repo: r, events: rec, images: images}
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// do sends a JSON request carrying a valid CSRF pair and, when set, the
// session cookie.
func (env *testEnv) do(method, target string, body any, session string) *httptest.ResponseRecorder {
	env.t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("x-csrf-token", csrfToken)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrfToken})
	if session != "" {
		req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: session})
	}
	return env.serve(req)
}

func (env *testEnv) login(email string) string {
	env.t.Helper()

	rec := env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": testutil.Password}, "")
	require.Equal(env.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookies.SessionCookie {
			return ck.Value
		}
	}
	env.t.Fatal("login did not set a session cookie")
	return ""
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}
