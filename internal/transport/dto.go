package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email     string `json:"email"     validate:"required,email,max=255"`
	Username  string `json:"username"  validate:"required,min=3,max=50"`
	Password  string `json:"password"  validate:"required,min=8,max=128"`
	FullName  string `json:"fullName"  validate:"max=100"`
	Role      string `json:"role"      validate:"omitempty,oneof=user vendor"`
	StoreName string `json:"storeName" validate:"required_if=Role vendor,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Address  *string `json:"address"  validate:"omitempty,max=255"`
	Bio      *string `json:"bio"      validate:"omitempty,max=1000"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"  validate:"required,min=1,max=999"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}

type OrderLine struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"  validate:"required,min=1"`
}

type CreateOrderRequest struct {
	VendorID        uuid.UUID   `json:"vendorId"        validate:"required"`
	Items           []OrderLine `json:"items"           validate:"required,min=1,dive"`
	DeliveryAddress string      `json:"deliveryAddress" validate:"required,min=5,max=500"`
	DeliveryPhone   string      `json:"deliveryPhone"   validate:"required,max=20"`
	PaymentMethod   string      `json:"paymentMethod"   validate:"required,oneof=cod esewa khalti card"`
	CouponCode      *string     `json:"couponCode"      validate:"omitempty,max=50"`
	Notes           string      `json:"notes"           validate:"max=500"`
}

// DeliveryForm is the checkout form applied to every vendor order.
type DeliveryForm struct {
	DeliveryAddress string  `json:"deliveryAddress" validate:"required,min=5,max=500"`
	DeliveryPhone   string  `json:"deliveryPhone"   validate:"required,max=20"`
	PaymentMethod   string  `json:"paymentMethod"   validate:"required,oneof=cod esewa khalti card"`
	CouponCode      *string `json:"couponCode"      validate:"omitempty,max=50"`
	Notes           string  `json:"notes"           validate:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	OrderID   uuid.UUID `json:"orderId"   validate:"required"`
	Rating    int       `json:"rating"    validate:"required,min=1,max=5"`
	Comment   string    `json:"comment"   validate:"max=500"`
	Images    []string  `json:"images"    validate:"max=5,dive,required"`
}

type DeleteImageRequest struct {
	Path string `json:"path" validate:"required"`
}

type CreateProductRequest struct {
	Name          string           `json:"name"          validate:"required,max=200"`
	Description   string           `json:"description"   validate:"max=5000"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         int              `json:"stock"         validate:"min=0"`
	Images        []string         `json:"images"        validate:"max=10"`
}

type PatchProductRequest struct {
	Name          *string          `json:"name"          validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"   validate:"omitempty,max=5000"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         *int             `json:"stock"         validate:"omitempty,min=0"`
	Images        []string         `json:"images"        validate:"omitempty,max=10"`
	IsActive      *bool            `json:"isActive"`
}

type UpdateVendorProfileRequest struct {
	StoreName        *string          `json:"storeName"        validate:"omitempty,min=2,max=100"`
	StoreDescription *string          `json:"storeDescription" validate:"omitempty,max=2000"`
	Phone            *string          `json:"phone"            validate:"omitempty,max=20"`
	Address          *string          `json:"address"          validate:"omitempty,max=255"`
	DeliveryAreas    []string         `json:"deliveryAreas"    validate:"omitempty,max=50"`
	DeliveryRadiusKm *int             `json:"deliveryRadiusKm" validate:"omitempty,min=0,max=500"`
	DeliveryFee      *decimal.Decimal `json:"deliveryFee"`
}

type CreateCouponRequest struct {
	Code           string           `json:"code"           validate:"required,alphanum,min=3,max=30"`
	DiscountType   string           `json:"discountType"   validate:"required,oneof=percentage fixed"`
	DiscountValue  decimal.Decimal  `json:"discountValue"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount"`
	ExpiresAt      *time.Time       `json:"expiresAt"`
	UsageLimit     *int             `json:"usageLimit"     validate:"omitempty,min=1"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user vendor admin"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type ProductQuery struct {
	Page       int
	Size       int
	CategoryID *uuid.UUID
	VendorID   *uuid.UUID
	Q          string
	Sort       string
}
