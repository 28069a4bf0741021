package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/events"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*transport.Cart, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cartView(items), nil
}

func cartView(items []models.CartItem) *transport.Cart {
	cart := &transport.Cart{Items: make([]transport.CartItem, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		p := it.Product
		cp := transport.CartProduct{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			DiscountPrice: p.DiscountPrice,
			Images:        nonNil(p.Images),
			Stock:         p.Stock,
			VendorID:      p.VendorID,
		}
		if p.Vendor != nil {
			cp.VendorName = p.Vendor.StoreName
		}
		cart.Items = append(cart.Items, transport.CartItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Product:   cp,
		})
		cart.Subtotal = cart.Subtotal.Add(p.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return cart
}

// AddToCart inserts the line or increments the existing one for the product.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddCartItemRequest) (*models.CartItem, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	p, err := s.Repo.ProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, translate(err, "product")
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product is not available: %w", ErrValidation)
	}

	item := &models.CartItem{UserID: userID, ProductID: p.ID, Quantity: req.Quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, translate(err, "cart item")
	}

	emit(ctx, s.Events, events.TopicCart, userID.String(), map[string]any{
		"type":      "cart_item_added",
		"userId":    userID,
		"productId": p.ID,
		"quantity":  req.Quantity,
	})
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	item, err := s.Repo.SetCartQuantity(ctx, userID, itemID, qty)
	if err != nil {
		return nil, translate(err, "cart item")
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return translate(s.Repo.DeleteCartItem(ctx, userID, itemID), "cart item")
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	emit(ctx, s.Events, events.TopicCart, userID.String(), map[string]any{
		"type":   "cart_cleared",
		"userId": userID,
	})
	return nil
}
