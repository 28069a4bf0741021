package storefront

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// ErrMinimumQuantity is returned when decrementing a line already at 1.
// Removing the line is a separate, explicit call.
var ErrMinimumQuantity = errors.New("quantity cannot go below 1")

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.send(ctx, http.MethodGet, "/api/cart", nil, "", &cart); err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return &cart, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int) error {
	body := map[string]any{"productId": productID, "quantity": qty}
	return errors.Wrap(c.doJSON(ctx, http.MethodPost, "/api/cart", body, nil), "add to cart")
}

func (c *Client) SetQuantity(ctx context.Context, itemID string, qty int) error {
	body := map[string]int{"quantity": qty}
	return errors.Wrap(c.doJSON(ctx, http.MethodPut, "/api/cart/"+itemID, body, nil), "set quantity")
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	return errors.Wrap(c.doJSON(ctx, http.MethodDelete, "/api/cart/"+itemID, nil, nil), "remove item")
}

func (c *Client) ClearCart(ctx context.Context) error {
	return errors.Wrap(c.doJSON(ctx, http.MethodDelete, "/api/cart", nil, nil), "clear cart")
}

func CanDecrement(item CartItem) bool {
	return item.Quantity > 1
}

func (c *Client) IncrementQuantity(ctx context.Context, item CartItem) error {
	return c.SetQuantity(ctx, item.ID.String(), item.Quantity+1)
}

func (c *Client) DecrementQuantity(ctx context.Context, item CartItem) error {
	if !CanDecrement(item) {
		return ErrMinimumQuantity
	}
	return c.SetQuantity(ctx, item.ID.String(), item.Quantity-1)
}
