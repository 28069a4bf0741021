package storefront

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/pkg/validate"
)

var ErrInvalidForm = errors.New("invalid checkout form")

type CheckoutForm struct {
	DeliveryAddress string  `json:"deliveryAddress" validate:"required,min=5,max=500"`
	DeliveryPhone   string  `json:"deliveryPhone"   validate:"required,max=20"`
	PaymentMethod   string  `json:"paymentMethod"   validate:"required,oneof=cod esewa khalti card"`
	CouponCode      *string `json:"couponCode,omitempty" validate:"omitempty,max=50"`
	Notes           string  `json:"notes,omitempty" validate:"max=500"`
}

var formValidator = validate.New()

func (f CheckoutForm) Validate() error {
	if err := formValidator.Validate(f); err != nil {
		return errors.Wrap(ErrInvalidForm, err.Error())
	}
	return nil
}

type VendorGroup struct {
	VendorID   uuid.UUID
	VendorName string
	Items      []CartItem
}

// GroupByVendor partitions items by product vendor, keeping vendors in the
// order they first appear.
func GroupByVendor(items []CartItem) []VendorGroup {
	var groups []VendorGroup
	index := map[uuid.UUID]int{}
	for _, it := range items {
		vid := it.Product.VendorID
		i, ok := index[vid]
		if !ok {
			i = len(groups)
			index[vid] = i
			groups = append(groups, VendorGroup{VendorID: vid, VendorName: it.Product.VendorName})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

func VendorTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type orderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// VendorOrderTask is the request body of one vendor's order.
type VendorOrderTask struct {
	VendorID        uuid.UUID   `json:"vendorId"`
	Items           []orderLine `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress"`
	DeliveryPhone   string      `json:"deliveryPhone"`
	PaymentMethod   string      `json:"paymentMethod"`
	CouponCode      *string     `json:"couponCode,omitempty"`
	Notes           string      `json:"notes,omitempty"`

	Total decimal.Decimal `json:"-"`
}

func BuildTasks(items []CartItem, form CheckoutForm) []VendorOrderTask {
	groups := GroupByVendor(items)
	tasks := make([]VendorOrderTask, 0, len(groups))
	for _, g := range groups {
		t := VendorOrderTask{
			VendorID:        g.VendorID,
			DeliveryAddress: form.DeliveryAddress,
			DeliveryPhone:   form.DeliveryPhone,
			PaymentMethod:   form.PaymentMethod,
			CouponCode:      form.CouponCode,
			Notes:           form.Notes,
			Total:           VendorTotal(g.Items),
		}
		for _, it := range g.Items {
			t.Items = append(t.Items, orderLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		tasks = append(tasks, t)
	}
	return tasks
}

type VendorOrderResult struct {
	VendorID uuid.UUID
	Order    *Order
	Err      error
}

type CheckoutResult struct {
	Results     []VendorOrderResult
	CartCleared bool
}

func (r CheckoutResult) Placed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r CheckoutResult) Failed() int {
	return len(r.Results) - r.Placed()
}

func (r CheckoutResult) AllSucceeded() bool {
	return len(r.Results) > 0 && r.Failed() == 0
}

func (c *Client) PlaceOrder(ctx context.Context, task VendorOrderTask) (*Order, error) {
	var o Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", task, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Checkout places one order per vendor in sequence. A failed vendor order is
// recorded and the rest still go out. The cart is cleared only when every
// order was placed.
func (c *Client) Checkout(ctx context.Context, cart *Cart, form CheckoutForm) (*CheckoutResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, errors.New("cart is empty")
	}

	res := &CheckoutResult{}
	for _, task := range BuildTasks(cart.Items, form) {
		o, err := c.PlaceOrder(ctx, task)
		res.Results = append(res.Results, VendorOrderResult{VendorID: task.VendorID, Order: o, Err: err})
	}

	if res.AllSucceeded() {
		if err := c.ClearCart(ctx); err != nil {
			return res, err
		}
		res.CartCleared = true
	}
	return res, nil
}
