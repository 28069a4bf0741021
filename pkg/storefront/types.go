package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Images        []string         `json:"images"`
	Stock         int              `json:"stock"`
	VendorID      uuid.UUID        `json:"vendorId"`
	VendorName    string           `json:"vendorName"`
}

// UnitPrice is the discount price when set, else the list price.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   Product   `json:"product"`
}

type Cart struct {
	Items    []CartItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	VendorID        uuid.UUID       `json:"vendorId"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Discount        decimal.Decimal `json:"discount"`
	CouponCode      *string         `json:"couponCode"`
	DeliveryAddress string          `json:"deliveryAddress"`
	DeliveryPhone   string          `json:"deliveryPhone"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	OrderID   uuid.UUID `json:"orderId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Images    []string  `json:"images"`
}
