package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/marketplace/internal/httpserver"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/pkg/config"
	"github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/pkg/events"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	authmw "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/middleware/security"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	r := repo.New(gdb)
	if err := r.Migrate(ctx); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	pub := events.New(cfg.KafkaBrokers)

	finder := &search.Service{Store: r}
	if cfg.ESURL != "" {
		es, err := search.NewElastic(ctx, search.Config{
			URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_unavailable", "error", err)
		} else {
			finder.Index = es
		}
	}

	images, err := storage.Open(ctx, cfg.UploadBucketURL, cfg.UploadPublicPrefix)
	if err != nil {
		logger.Error("upload_bucket_failed", "error", err)
		os.Exit(1)
	}

	authSvc := &service.AuthService{Repo: r, Secret: cfg.SessionSecret, TTL: cfg.SessionTTL}
	cartSvc := &service.CartService{Repo: r, Events: pub}
	orderSvc := &service.OrderService{Repo: r, Events: pub}

	chain := security.DefaultChain(cfg.IsProduction(), security.OriginPolicy{
		Exact:       cfg.CORSOrigins,
		HTTPSSuffix: cfg.CORSOriginSuffix,
	})

	e := httpserver.NewEcho(logger, security.Chain(chain)...)
	if len(cfg.TrustedProxies) > 0 {
		extract, err := httpserver.ProxyIPExtractor(cfg.TrustedProxies)
		if err != nil {
			logger.Error("trusted_proxies_invalid", "error", err)
			os.Exit(1)
		}
		e.IPExtractor = extract
	}
	httpserver.Register(e, &httpserver.Deps{
		DB:      gdb,
		Session: authmw.NewSessionMiddleware(cfg.SessionSecret, authSvc, cfg.IsProduction()),
		CSRF:    chain.CSRF,
		Auth:    &httpserver.AuthHTTP{Svc: authSvc, CSRF: chain.CSRF, Secure: cfg.IsProduction()},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Search: finder, Events: pub}},
		Cart:    &httpserver.CartHTTP{Svc: cartSvc, Checkout: &service.CheckoutService{Cart: cartSvc, Orders: orderSvc}},
		Orders:  &httpserver.OrderHTTP{Svc: orderSvc},
		Reviews: &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: r, Events: pub, Images: images}, Images: images},
		Vendors: &httpserver.VendorHTTP{Svc: &service.VendorService{Repo: r}},
		Admin:   &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: r}},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := images.Close(); err != nil {
		logger.Error("bucket_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
