package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	authmw "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := bind(c, l, "create_order", &req); err != nil {
		return err
	}
	o, err := h.Svc.CreateOrder(ctx, userID, req)
	if err != nil {
		return fail(l, "create_order", err)
	}
	l.Info("create_order_success", "order_id", o.ID)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Items(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.items")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.Svc.OrderItems(ctx, userID, authmw.Role(c), id)
	if err != nil {
		return fail(l, "order_items", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.cancel")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Cancel(ctx, userID, id)
	if err != nil {
		return fail(l, "cancel_order", err)
	}
	l.Info("cancel_order_success", "order_id", o.ID)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) VendorOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.orders")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Svc.VendorOrders(ctx, userID, c.QueryParam("status"),
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	if err != nil {
		return fail(l, "vendor_orders", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.order_status")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := bind(c, l, "order_status", &req); err != nil {
		return err
	}
	o, err := h.Svc.UpdateStatus(ctx, userID, id, req.Status)
	if err != nil {
		return fail(l, "order_status", err)
	}
	l.Info("order_status_success", "order_id", o.ID, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}
