package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users")

	page, err := h.Svc.ListUsers(ctx,
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	if err != nil {
		return fail(l, "list_users", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_role")

	adminID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateRoleRequest
	if err := bind(c, l, "set_role", &req); err != nil {
		return err
	}
	u, err := h.Svc.SetRole(ctx, adminID, id, req.Role)
	if err != nil {
		return fail(l, "set_role", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminHTTP) SetActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_active")

	adminID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.SetActiveRequest
	if err := bind(c, l, "set_active", &req); err != nil {
		return err
	}
	u, err := h.Svc.SetActive(ctx, adminID, id, *req.IsActive)
	if err != nil {
		return fail(l, "set_active", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminHTTP) ApproveVendor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.approve_vendor")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.Svc.ApproveVendor(ctx, id, true)
	if err != nil {
		return fail(l, "approve_vendor", err)
	}
	l.Info("approve_vendor_success", "vendor_id", v.ID)
	return c.JSON(http.StatusOK, v)
}

func (h *AdminHTTP) ListVendors(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.vendors")

	vs, err := h.Svc.ListVendors(ctx, c.QueryParam("status"))
	if err != nil {
		return fail(l, "list_vendors", err)
	}
	return c.JSON(http.StatusOK, vs)
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	st, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "admin_stats", err)
	}
	return c.JSON(http.StatusOK, st)
}
