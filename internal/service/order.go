package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/events"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateOrder places one vendor order. Prices come from the current product
// rows, never from the request.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.VendorByID(ctx, req.VendorID); err != nil {
		return nil, translate(err, "vendor")
	}

	var order *models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		ids := make([]uuid.UUID, 0, len(lines))
		for _, ln := range lines {
			ids = append(ids, ln.ProductID)
		}
		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}

		o := &models.Order{
			UserID:          userID,
			VendorID:        req.VendorID,
			Status:          models.OrderStatusPending,
			Discount:        decimal.Zero,
			DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
			DeliveryPhone:   strings.TrimSpace(req.DeliveryPhone),
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
		}
		total := decimal.Zero
		for _, ln := range lines {
			p, ok := products[ln.ProductID]
			if !ok {
				return fmt.Errorf("product %s not found: %w", ln.ProductID, ErrNotFound)
			}
			if p.VendorID != req.VendorID {
				return fmt.Errorf("product %q belongs to another vendor: %w", p.Name, ErrValidation)
			}
			if !p.IsActive {
				return fmt.Errorf("product %q is not available: %w", p.Name, ErrValidation)
			}
			if p.Stock < ln.Quantity {
				return fmt.Errorf("insufficient stock for %q: %d left: %w", p.Name, p.Stock, ErrValidation)
			}

			unit := p.UnitPrice()
			lineTotal := unit.Mul(decimal.NewFromInt(int64(ln.Quantity))).Round(2)
			o.Items = append(o.Items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    ln.Quantity,
				UnitPrice:   unit,
				LineTotal:   lineTotal,
			})
			total = total.Add(lineTotal)

			if err := tx.DecrementStock(ctx, p.ID, ln.Quantity); err != nil {
				return err
			}
		}
		o.Total = total

		if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
			coupon, err := tx.LockCouponByCode(ctx, *req.CouponCode)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				l.Info("coupon_ignored", "reason", "unknown code")
			case err != nil:
				return err
			case coupon.VendorID != req.VendorID || !coupon.Usable(s.now(), total):
				l.Info("coupon_ignored", "reason", "not usable for this order", "coupon_id", coupon.ID)
			default:
				counted, err := tx.IncrementCouponUsage(ctx, coupon.ID)
				if err != nil {
					return err
				}
				if !counted {
					l.Info("coupon_ignored", "reason", "usage limit reached", "coupon_id", coupon.ID)
					break
				}
				code := coupon.Code
				o.CouponCode = &code
			}
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}

	l.Info("order_created", "order_id", order.ID, "vendor_id", order.VendorID, "total", order.Total.String())
	emit(ctx, s.Events, events.TopicOrder, order.ID.String(), map[string]any{
		"type":     "order_created",
		"orderId":  order.ID,
		"userId":   userID,
		"vendorId": order.VendorID,
		"total":    order.Total,
		"items":    len(order.Items),
	})
	return order, nil
}

// mergeLines folds repeated products into one line.
func mergeLines(in []transport.OrderLine) ([]transport.OrderLine, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("order has no items: %w", ErrValidation)
	}
	idx := make(map[uuid.UUID]int, len(in))
	out := make([]transport.OrderLine, 0, len(in))
	for _, ln := range in {
		if ln.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
		}
		if i, ok := idx[ln.ProductID]; ok {
			out[i].Quantity += ln.Quantity
			continue
		}
		idx[ln.ProductID] = len(out)
		out = append(out, ln)
	}
	return out, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.Repo.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// OrderItems is visible to the buyer, the vendor that received the order and
// admins.
func (s *OrderService) OrderItems(ctx context.Context, userID uuid.UUID, role string, orderID uuid.UUID) ([]models.OrderItem, error) {
	o, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, translate(err, "order")
	}
	if ok, err := s.canView(ctx, userID, role, o); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("not your order: %w", ErrForbidden)
	}
	if o.Items == nil {
		return []models.OrderItem{}, nil
	}
	return o.Items, nil
}

func (s *OrderService) canView(ctx context.Context, userID uuid.UUID, role string, o *models.Order) (bool, error) {
	if role == models.RoleAdmin || o.UserID == userID {
		return true, nil
	}
	if role != models.RoleVendor {
		return false, nil
	}
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v.ID == o.VendorID, nil
}

// Cancel lets the buyer withdraw a pending order. Stock is returned.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var out *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return fmt.Errorf("not your order: %w", ErrForbidden)
		}
		if o.Status != models.OrderStatusPending {
			return fmt.Errorf("only pending orders can be cancelled: %w", ErrValidation)
		}
		if err := s.applyStatus(ctx, tx, o, models.OrderStatusCancelled); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}
	s.statusChanged(ctx, out, models.OrderStatusPending)
	return out, nil
}

func (s *OrderService) VendorOrders(ctx context.Context, userID uuid.UUID, status string, page, size int) (transport.Page[models.Order], error) {
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		return transport.Page[models.Order]{}, translate(err, "vendor")
	}
	if status != "" && !validStatus(status) {
		return transport.Page[models.Order]{}, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)
	total, orders, err := s.Repo.OrdersByVendor(ctx, v.ID, status, offset, limit)
	if err != nil {
		return transport.Page[models.Order]{}, err
	}
	return transport.NewPage(orders, page, limit, total), nil
}

// UpdateStatus moves a vendor's order along the status machine.
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID uuid.UUID, status string) (*models.Order, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	v, err := s.Repo.VendorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no vendor profile: %w", ErrForbidden)
		}
		return nil, err
	}

	var (
		out  *models.Order
		prev string
	)
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.VendorID != v.ID {
			return fmt.Errorf("order belongs to another vendor: %w", ErrForbidden)
		}
		if !models.CanTransition(o.Status, status) {
			return fmt.Errorf("cannot move order from %s to %s: %w", o.Status, status, ErrValidation)
		}
		prev = o.Status
		if err := s.applyStatus(ctx, tx, o, status); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}
	s.statusChanged(ctx, out, prev)
	return out, nil
}

// applyStatus writes the new status with its side effects on stock and sales.
func (s *OrderService) applyStatus(ctx context.Context, tx *repo.GormRepo, o *models.Order, status string) error {
	if err := tx.SetOrderStatus(ctx, o.ID, status); err != nil {
		return err
	}
	switch status {
	case models.OrderStatusDelivered:
		if err := tx.AddVendorSales(ctx, o.VendorID, o.Total); err != nil {
			return err
		}
	case models.OrderStatusCancelled:
		full, err := tx.OrderByID(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, it := range full.Items {
			if err := tx.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
	}
	o.Status = status
	return nil
}

func (s *OrderService) statusChanged(ctx context.Context, o *models.Order, from string) {
	emit(ctx, s.Events, events.TopicOrder, o.ID.String(), map[string]any{
		"type":     "order_status_changed",
		"orderId":  o.ID,
		"userId":   o.UserID,
		"vendorId": o.VendorID,
		"from":     from,
		"to":       o.Status,
	})
}

func validStatus(status string) bool {
	for _, s := range models.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
