package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// CartProduct is the product snapshot carried by each cart line.
type CartProduct struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Images        []string         `json:"images"`
	Stock         int              `json:"stock"`
	VendorID      uuid.UUID        `json:"vendorId"`
	VendorName    string           `json:"vendorName"`
}

type CartItem struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"productId"`
	Quantity  int         `json:"quantity"`
	Product   CartProduct `json:"product"`
}

type Cart struct {
	Items    []CartItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type VendorOrderResult struct {
	VendorID   uuid.UUID     `json:"vendorId"`
	VendorName string        `json:"vendorName,omitempty"`
	Order      *models.Order `json:"order,omitempty"`
	Error      string        `json:"error,omitempty"`
}

type CheckoutResponse struct {
	Results     []VendorOrderResult `json:"results"`
	Placed      int                 `json:"placed"`
	Failed      int                 `json:"failed"`
	CartCleared bool                `json:"cartCleared"`
}

type RecentReview struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	UserName    string    `json:"userName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UnreviewedProduct struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
}

type UnreviewedOrder struct {
	Order    models.Order        `json:"order"`
	Products []UnreviewedProduct `json:"products"`
}

type UploadResponse struct {
	Path string `json:"path"`
}

type VendorStats struct {
	ProductCount      int64            `json:"productCount"`
	OrdersByStatus    map[string]int64 `json:"ordersByStatus"`
	TotalSales        decimal.Decimal  `json:"totalSales"`
	TotalSalesDisplay string           `json:"totalSalesDisplay"`
	Rating            decimal.Decimal  `json:"rating"`
}

type AdminStats struct {
	Users          int64            `json:"users"`
	Vendors        int64            `json:"vendors"`
	PendingVendors int64            `json:"pendingVendors"`
	Products       int64            `json:"products"`
	Orders         int64            `json:"orders"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	Revenue        decimal.Decimal  `json:"revenue"`
	RevenueDisplay string           `json:"revenueDisplay"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage[T any](data []T, page, size int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	offset := (page - 1) * size
	var pages int64
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return Page[T]{
		Data: data,
		Meta: Meta{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: pages,
			HasPrev:    page > 1,
			HasNext:    int64(offset+size) < total,
		},
	}
}
