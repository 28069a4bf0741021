package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeAPI mimics the handful of marketplace endpoints the client calls.
type fakeAPI struct {
	mu sync.Mutex

	token       string
	failVendors map[uuid.UUID]string
	orders      []map[string]any
	reviews     []map[string]any
	quantities  map[string]int
	deleted     []string
	uploads     int
	cleared     bool
	noCSRF      int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{token: "tok-123", failVendors: map[uuid.UUID]string{}, quantities: map[string]int{}}
	srv := httptest.NewServer(f.routes())
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return f, c
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) rotateToken(tok string) {
	f.mu.Lock()
	f.token = tok
	f.mu.Unlock()
}

func (f *fakeAPI) csrf(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := f.currentToken()
		ck, err := r.Cookie("_csrf")
		if err != nil || ck.Value != tok || r.Header.Get(csrfHeader) != tok {
			f.mu.Lock()
			f.noCSRF++
			f.mu.Unlock()
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid CSRF token"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		tok := f.currentToken()
		http.SetCookie(w, &http.Cookie{Name: "_csrf", Value: tok, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
	})

	mux.HandleFunc("POST /api/orders", f.csrf(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		vid := uuid.MustParse(body["vendorId"].(string))

		f.mu.Lock()
		defer f.mu.Unlock()
		f.orders = append(f.orders, body)
		if msg, ok := f.failVendors[vid]; ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}
		writeJSON(w, http.StatusCreated, Order{ID: uuid.New(), VendorID: vid, Status: "pending", Total: decimal.Zero})
	}))

	mux.HandleFunc("DELETE /api/cart", f.csrf(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.cleared = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))

	mux.HandleFunc("PUT /api/cart/{id}", f.csrf(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.quantities[r.PathValue("id")] = body["quantity"]
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]int{"quantity": body["quantity"]})
	}))

	mux.HandleFunc("POST /api/upload/review-image", f.csrf(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image file is required"})
			return
		}
		defer file.Close()
		buf := make([]byte, 3)
		n, _ := file.Read(buf)
		if string(buf[:n]) == "bad" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "only jpeg, png, webp and gif images are allowed"})
			return
		}
		f.mu.Lock()
		f.uploads++
		p := fmt.Sprintf("/uploads/review-images/%d.png", f.uploads)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{"path": p})
	}))

	mux.HandleFunc("DELETE /api/upload/review-image", f.csrf(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.deleted = append(f.deleted, body["path"])
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))

	mux.HandleFunc("POST /api/reviews", f.csrf(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, prev := range f.reviews {
			if prev["productId"] == body["productId"] {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "product already reviewed for this order"})
				return
			}
		}
		f.reviews = append(f.reviews, body)
		writeJSON(w, http.StatusCreated, Review{ID: uuid.New(), Rating: int(body["rating"].(float64))})
	}))

	return mux
}
