package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled,
}

var PaymentMethods = []string{"cod", "esewa", "khalti", "card"}

var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func CanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	Base
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"                json:"userId"`
	VendorID        uuid.UUID       `gorm:"type:uuid;index;not null"                json:"vendorId"`
	Status          string          `gorm:"not null;default:pending"                json:"status"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"             json:"total"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"   json:"discount"`
	CouponCode      *string         `json:"couponCode"`
	DeliveryAddress string          `gorm:"not null"                                json:"deliveryAddress"`
	DeliveryPhone   string          `gorm:"not null"                                json:"deliveryPhone"`
	PaymentMethod   string          `gorm:"not null"                                json:"paymentMethod"`
	Notes           string          `json:"notes"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is frozen at creation; product edits never touch it.
type OrderItem struct {
	Base
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"              json:"orderId"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"              json:"productId"`
	ProductName string          `gorm:"not null"                              json:"productName"`
	Quantity    int             `gorm:"not null;check:quantity>0"             json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"           json:"unitPrice"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"           json:"lineTotal"`
}

type Review struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product_order;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product_order;index;not null" json:"productId"`
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product_order;not null" json:"orderId"`
	VendorID  uuid.UUID `gorm:"type:uuid;index;not null"                                      json:"vendorId"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"                    json:"rating"`
	Comment   string    `json:"comment"`
	Images    []string  `gorm:"serializer:json;type:text"                                     json:"images"`
}

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Coupon struct {
	Base
	VendorID       uuid.UUID        `gorm:"type:uuid;index;not null"        json:"vendorId"`
	Code           string           `gorm:"uniqueIndex;not null"            json:"code"`
	DiscountType   string           `gorm:"not null"                        json:"discountType"`
	DiscountValue  decimal.Decimal  `gorm:"type:numeric(12,2);not null"     json:"discountValue"`
	MinOrderAmount *decimal.Decimal `gorm:"type:numeric(12,2)"              json:"minOrderAmount"`
	MaxDiscount    *decimal.Decimal `gorm:"type:numeric(12,2)"              json:"maxDiscount"`
	ExpiresAt      *time.Time       `json:"expiresAt"`
	UsageLimit     *int             `json:"usageLimit"`
	UsedCount      int              `gorm:"not null;default:0"              json:"usedCount"`
	IsActive       bool             `gorm:"not null"                        json:"isActive"`
}

// Usable reports whether the coupon may be recorded at now on an order
// worth total.
func (c *Coupon) Usable(now time.Time, total decimal.Decimal) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	if c.MinOrderAmount != nil && total.LessThan(*c.MinOrderAmount) {
		return false
	}
	return true
}

// All lists every entity for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Session{}, &Vendor{}, &Category{}, &Product{},
		&CartItem{}, &Order{}, &OrderItem{}, &Review{}, &Coupon{},
	}
}
