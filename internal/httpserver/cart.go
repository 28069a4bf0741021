package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type CartHTTP struct {
	Svc      *service.CartService
	Checkout *service.CheckoutService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddCartItemRequest
	if err := bind(c, l, "add_to_cart", &req); err != nil {
		return err
	}
	item, err := h.Svc.AddToCart(ctx, userID, req)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}
	l.Info("add_to_cart_success", "product_id", req.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_cart_item", &req); err != nil {
		return err
	}
	item, err := h.Svc.UpdateQuantity(ctx, userID, id, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveItem(ctx, userID, id); err != nil {
		return fail(l, "remove_cart_item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PlaceOrders checks out the stored cart: 201 when every vendor order was
// placed, 207 when only some were, 400 for an empty cart.
func (h *CartHTTP) PlaceOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var form transport.DeliveryForm
	if err := bind(c, l, "checkout", &form); err != nil {
		return err
	}
	resp, err := h.Checkout.Checkout(ctx, userID, form)
	if err != nil {
		return fail(l, "checkout", err)
	}

	status := http.StatusCreated
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	l.Info("checkout_success", "placed", resp.Placed, "failed", resp.Failed)
	return c.JSON(status, resp)
}
