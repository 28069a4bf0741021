package httpserver

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/storage"
	authmw "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/marketplace/pkg/middleware/logging"
	"github.com/Skotchmaster/marketplace/pkg/validate"
)

type Deps struct {
	DB      *gorm.DB
	Session *authmw.SessionMiddleware
	CSRF    csrf.Config

	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Cart    *CartHTTP
	Orders  *OrderHTTP
	Reviews *ReviewHTTP
	Vendors *VendorHTTP
	Admin   *AdminHTTP
}

// NewEcho builds the server with the shared error handler, validator and
// request logging, followed by chain.
func NewEcho(logger *slog.Logger, chain ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = ErrorHandler
	e.IPExtractor = echo.ExtractIPDirect()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))
	e.Use(chain...)
	return e
}

// ProxyIPExtractor reads the client address from X-Forwarded-For, trusting
// only hops inside the given CIDR ranges.
func ProxyIPExtractor(cidrs []string) (echo.IPExtractor, error) {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, c := range cidrs {
		_, ipNet, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", c, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	api.GET("/csrf-token", csrf.IssueHandler(d.CSRF))

	authed := d.Session.RequireAuth
	vendorOnly := authmw.RequireRole(models.RoleVendor)
	adminOnly := authmw.RequireRole(models.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, authed)
	auth.PUT("/profile", d.Auth.UpdateProfile, authed)

	api.GET("/categories", d.Catalog.ListCategories)
	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.Search)
	products.GET("/:id", d.Catalog.GetProduct)
	products.GET("/:id/reviews", d.Reviews.ForProduct)

	api.GET("/vendors/:slug", d.Vendors.Public)
	api.GET("/reviews/recent", d.Reviews.Recent)
	api.POST("/reviews", d.Reviews.Create, authed)

	cart := api.Group("/cart", authed)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("", d.Cart.Clear)
	cart.PUT("/:id", d.Cart.UpdateItem)
	cart.DELETE("/:id", d.Cart.RemoveItem)
	api.POST("/checkout", d.Cart.PlaceOrders, authed)

	orders := api.Group("/orders", authed)
	orders.POST("", d.Orders.Create)
	orders.GET("", d.Orders.List)
	orders.GET("/unreviewed", d.Reviews.Unreviewed)
	orders.GET("/:id/items", d.Orders.Items)
	orders.PATCH("/:id/cancel", d.Orders.Cancel)

	upload := api.Group("/upload", authed)
	upload.POST("/review-image", d.Reviews.UploadImage, middleware.BodyLimit("6M"))
	upload.DELETE("/review-image", d.Reviews.DeleteImage)
	if d.Reviews.Images != nil {
		e.GET(d.Reviews.Images.PublicPrefix+"/"+storage.ReviewPrefix+":name", d.Reviews.ServeImage)
	}

	vendor := api.Group("/vendor", authed, vendorOnly)
	vendor.GET("/profile", d.Vendors.Profile)
	vendor.PUT("/profile", d.Vendors.UpdateProfile)
	vendor.GET("/stats", d.Vendors.Stats)
	vendor.GET("/products", d.Catalog.VendorProducts)
	vendor.POST("/products", d.Catalog.CreateProduct)
	vendor.PUT("/products/:id", d.Catalog.UpdateProduct)
	vendor.DELETE("/products/:id", d.Catalog.DeleteProduct)
	vendor.GET("/orders", d.Orders.VendorOrders)
	vendor.PATCH("/orders/:id/status", d.Orders.UpdateStatus)
	vendor.GET("/coupons", d.Vendors.ListCoupons)
	vendor.POST("/coupons", d.Vendors.CreateCoupon)

	admin := api.Group("/admin", authed, adminOnly)
	admin.GET("/users", d.Admin.ListUsers)
	admin.PATCH("/users/:id/role", d.Admin.SetRole)
	admin.PATCH("/users/:id/active", d.Admin.SetActive)
	admin.GET("/vendors", d.Admin.ListVendors)
	admin.PATCH("/vendors/:id/approve", d.Admin.ApproveVendor)
	admin.POST("/categories", d.Catalog.CreateCategory)
	admin.GET("/stats", d.Admin.Stats)
}
