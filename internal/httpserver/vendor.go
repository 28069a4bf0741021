package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type VendorHTTP struct {
	Svc *service.VendorService
}

func (h *VendorHTTP) Public(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendors.public")

	store, err := h.Svc.PublicProfile(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "vendor_public", err)
	}
	return c.JSON(http.StatusOK, store)
}

func (h *VendorHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.profile")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	v, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return fail(l, "vendor_profile", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VendorHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.update_profile")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.UpdateVendorProfileRequest
	if err := bind(c, l, "vendor_update_profile", &req); err != nil {
		return err
	}
	v, err := h.Svc.UpdateProfile(ctx, userID, req)
	if err != nil {
		return fail(l, "vendor_update_profile", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VendorHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.stats")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	st, err := h.Svc.Stats(ctx, userID)
	if err != nil {
		return fail(l, "vendor_stats", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *VendorHTTP) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.create_coupon")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateCouponRequest
	if err := bind(c, l, "create_coupon", &req); err != nil {
		return err
	}
	cp, err := h.Svc.CreateCoupon(ctx, userID, req)
	if err != nil {
		return fail(l, "create_coupon", err)
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *VendorHTTP) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.coupons")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	cs, err := h.Svc.ListCoupons(ctx, userID)
	if err != nil {
		return fail(l, "list_coupons", err)
	}
	return c.JSON(http.StatusOK, cs)
}
