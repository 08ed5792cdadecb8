// internal/domain/orderstore/entity.go
package orderstore

import (
	"time"

	"github.com/your-org/tshirt-store/internal/domain/order"
)

// Status represents the fulfilment state of a stored order
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Statuses lists every status in lifecycle order
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentStatus represents the state of the money side of an order
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Item is a purchased product line
type Item struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Name      string `json:"name" bson:"name"`
	Size      string `json:"size" bson:"size"`
	Price     int64  `json:"price" bson:"price"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Image     string `json:"image,omitempty" bson:"image,omitempty"`
}

// Address is the delivery address (embedded in Record)
type Address struct {
	FullName string `gorm:"size:255" json:"full_name" bson:"full_name"`
	Email    string `gorm:"size:255" json:"email" bson:"email"`
	Phone    string `gorm:"size:20" json:"phone" bson:"phone"`
	Address  string `gorm:"type:text" json:"address" bson:"address"`
	City     string `gorm:"size:100" json:"city" bson:"city"`
	State    string `gorm:"size:100" json:"state" bson:"state"`
	Pincode  string `gorm:"size:20" json:"pincode" bson:"pincode"`
}

// PaymentInfo records how the order was paid (embedded in Record)
type PaymentInfo struct {
	Method         order.PaymentMethod `gorm:"size:20;not null" json:"method" bson:"method"`
	TransactionID  string              `gorm:"size:255" json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	GatewayOrderID string              `gorm:"size:255" json:"gateway_order_id,omitempty" bson:"gateway_order_id,omitempty"`
	Status         PaymentStatus       `gorm:"size:20;not null;default:'pending'" json:"status" bson:"status"`
	Amount         int64               `gorm:"not null" json:"amount" bson:"amount"`
	Currency       string              `gorm:"size:3;default:'INR'" json:"currency" bson:"currency"`
}

// Record is an order held by the server side store
type Record struct {
	ID            uint    `gorm:"primaryKey" json:"id,omitempty" bson:"-"`
	OrderNumber   string  `gorm:"uniqueIndex;not null;size:50" json:"order_number" bson:"order_number"`
	ClientOrderID *string `gorm:"index;size:50" json:"client_order_id,omitempty" bson:"client_order_id,omitempty"`
	UserID        *uint   `gorm:"index" json:"user_id,omitempty" bson:"user_id,omitempty"`

	// IdempotencyKey dedupes repeated deliveries of one storefront order
	IdempotencyKey *string `gorm:"uniqueIndex;size:64" json:"-" bson:"idempotency_key,omitempty"`

	Items           []Item      `gorm:"serializer:json;type:text;not null" json:"items" bson:"items"`
	ShippingAddress Address     `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address" bson:"shipping_address"`
	Payment         PaymentInfo `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info" bson:"payment_info"`

	// Financial information, whole currency units
	Subtotal     int64 `gorm:"not null" json:"subtotal" bson:"subtotal"`
	ShippingCost int64 `gorm:"default:0" json:"shipping_cost" bson:"shipping_cost"`
	Tax          int64 `gorm:"default:0" json:"tax" bson:"tax"`
	Total        int64 `gorm:"not null" json:"total" bson:"total"`

	Status         Status `gorm:"not null;default:'pending';index;size:20" json:"status" bson:"status"`
	TrackingNumber string `gorm:"size:100" json:"tracking_number,omitempty" bson:"tracking_number,omitempty"`
	CancelReason   string `gorm:"type:text" json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty" bson:"notes,omitempty"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

func (Record) TableName() string {
	return "order_records"
}

// ItemCount sums the quantities of all items
func (r *Record) ItemCount() int {
	n := 0
	for _, item := range r.Items {
		n += item.Quantity
	}
	return n
}

// CreateRequest is the body accepted by the store. It is the storefront
// mirror payload with a few optional server side fields.
type CreateRequest struct {
	order.MirrorPayload
	Tax      int64  `json:"tax"`
	Notes    string `json:"notes"`
	Currency string `json:"currency"`
}

// ListFilter narrows List and ExportXLSX
type ListFilter struct {
	UserID *uint  `form:"-"`
	Status Status `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

func (f ListFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

// ListResult is one page of records
type ListResult struct {
	Orders     []Record `json:"orders"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

// StatusUpdate is what an admin sends to move an order along
type StatusUpdate struct {
	Status         Status `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
	Reason         string `json:"reason"`
}

// StatusChange is the set of columns written by a status transition
type StatusChange struct {
	Status         Status
	TrackingNumber string
	CancelReason   string
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	UpdatedAt      time.Time
}
