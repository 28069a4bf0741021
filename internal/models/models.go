package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Base gives every entity a UUID key assigned on insert.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null"      json:"email"`
	Username     string `gorm:"not null"                  json:"username"`
	PasswordHash string `gorm:"not null"                  json:"-"`
	Role         string `gorm:"not null;default:user"     json:"role"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Bio          string `json:"bio"`
	IsActive     bool   `gorm:"not null"                 json:"isActive"`
}

type Session struct {
	Base
	JTI       string    `gorm:"uniqueIndex;not null"      json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"  json:"userId"`
	ExpiresAt time.Time `gorm:"not null"                  json:"expiresAt"`
	Revoked   bool      `gorm:"not null;default:false"    json:"revoked"`
}

type Vendor struct {
	Base
	UserID           uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"   json:"userId"`
	StoreName        string          `gorm:"not null"                         json:"storeName"`
	Slug             string          `gorm:"uniqueIndex;not null"             json:"slug"`
	StoreDescription string          `json:"storeDescription"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	DeliveryAreas    []string        `gorm:"serializer:json;type:text"        json:"deliveryAreas"`
	DeliveryRadiusKm int             `gorm:"not null;default:0"               json:"deliveryRadiusKm"`
	DeliveryFee      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"deliveryFee"`
	IsApproved       bool            `gorm:"not null;default:false"           json:"isApproved"`
	Rating           decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0"  json:"rating"`
	TotalSales       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"totalSales"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
}

type Product struct {
	Base
	VendorID      uuid.UUID        `gorm:"type:uuid;index;not null"              json:"vendorId"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index"                       json:"categoryId"`
	Name          string           `gorm:"not null"                              json:"name"`
	Slug          string           `gorm:"index;not null"                        json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null"           json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:numeric(12,2)"                    json:"discountPrice"`
	Stock         int              `gorm:"not null;default:0"                    json:"stock"`
	Images        []string         `gorm:"serializer:json;type:text"             json:"images"`
	Rating        decimal.Decimal  `gorm:"type:numeric(3,2);not null;default:0"  json:"rating"`
	ReviewCount   int              `gorm:"not null;default:0"                    json:"reviewCount"`
	IsActive      bool             `gorm:"not null"                              json:"isActive"`

	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// UnitPrice is the price a buyer pays right now.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

type CartItem struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0"                  json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
