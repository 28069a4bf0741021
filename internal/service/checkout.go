package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

// CheckoutService turns the stored cart into one order per vendor.
type CheckoutService struct {
	Cart   *CartService
	Orders *OrderService
}

type vendorGroup struct {
	VendorID   uuid.UUID
	VendorName string
	Lines      []transport.OrderLine
}

// groupByVendor partitions cart lines by product vendor, keeping the order in
// which vendors first appear.
func groupByVendor(items []models.CartItem) []vendorGroup {
	idx := map[uuid.UUID]int{}
	var groups []vendorGroup
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		vid := it.Product.VendorID
		i, ok := idx[vid]
		if !ok {
			g := vendorGroup{VendorID: vid}
			if it.Product.Vendor != nil {
				g.VendorName = it.Product.Vendor.StoreName
			}
			i = len(groups)
			idx[vid] = i
			groups = append(groups, g)
		}
		groups[i].Lines = append(groups[i].Lines, transport.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return groups
}

// Checkout places the vendor orders one after another. A failed vendor never
// stops the rest; the cart is cleared only when every order went through.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, form transport.DeliveryForm) (*transport.CheckoutResponse, error) {
	l := logging.FromContext(ctx).With("svc", "checkout")

	items, err := s.Cart.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups := groupByVendor(items)
	if len(groups) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrValidation)
	}

	resp := &transport.CheckoutResponse{Results: make([]transport.VendorOrderResult, 0, len(groups))}
	for _, g := range groups {
		res := transport.VendorOrderResult{VendorID: g.VendorID, VendorName: g.VendorName}
		order, err := s.Orders.CreateOrder(ctx, userID, transport.CreateOrderRequest{
			VendorID:        g.VendorID,
			Items:           g.Lines,
			DeliveryAddress: form.DeliveryAddress,
			DeliveryPhone:   form.DeliveryPhone,
			PaymentMethod:   form.PaymentMethod,
			CouponCode:      form.CouponCode,
			Notes:           form.Notes,
		})
		if err != nil {
			l.Warn("vendor_order_failed", "vendor_id", g.VendorID, "error", err)
			res.Error = clientMessage(err)
			resp.Failed++
		} else {
			res.Order = order
			resp.Placed++
		}
		resp.Results = append(resp.Results, res)
	}

	if resp.Failed == 0 {
		if err := s.Cart.Clear(ctx, userID); err != nil {
			l.Error("cart_clear_error", "error", err)
		} else {
			resp.CartCleared = true
		}
	}
	l.Info("checkout_done", "placed", resp.Placed, "failed", resp.Failed)
	return resp, nil
}

// clientMessage hides internal failures behind a generic text.
func clientMessage(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return Message(err)
		}
	}
	return "failed to place order"
}
