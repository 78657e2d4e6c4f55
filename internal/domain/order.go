package domain

import (
	"database/sql/driver"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// OrderStatus is the lifecycle stage of a placed order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every defined status. Any status may move to any
// other; there is no terminal state.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is a snapshot of a product line at purchase time. It carries
// no foreign key back to the catalog row on purpose.
type OrderItem struct {
	ProductID int64   `json:"product_id,string" mapstructure:"product_id"`
	Name      string  `json:"name" mapstructure:"name"`
	Price     float64 `json:"price" mapstructure:"price"`
	Quantity  int     `json:"quantity" mapstructure:"quantity"`
}

// OrderItems is stored as a single JSON column.
type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	data, err := jsoniter.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, "encode order items")
	}
	return string(data), nil
}

func (o *OrderItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case string:
		return jsoniter.UnmarshalFromString(v, o)
	case []byte:
		return jsoniter.Unmarshal(v, o)
	default:
		return errors.Errorf("unsupported order items column type %T", src)
	}
}

type CustomerInfo struct {
	FirstName string `json:"first_name" mapstructure:"first_name"`
	LastName  string `json:"last_name" mapstructure:"last_name"`
	Email     string `json:"email" mapstructure:"email"`
	Phone     string `json:"phone" mapstructure:"phone"`
}

type ShippingAddress struct {
	Address string `json:"address" mapstructure:"address"`
	City    string `json:"city" mapstructure:"city"`
	State   string `json:"state" mapstructure:"state"`
	Pincode string `json:"pincode" mapstructure:"pincode"`
}

// Order is an immutable purchase record. Items and Total are fixed at
// creation; only Status and UpdatedAt change afterwards.
type Order struct {
	ID              int64           `gorm:"primaryKey" json:"id,string"`
	Items           OrderItems      `gorm:"type:text" json:"items"`
	Total           float64         `json:"total"`
	Status          OrderStatus     `gorm:"index;size:32" json:"status"`
	CustomerInfo    CustomerInfo    `gorm:"embedded;embeddedPrefix:customer_" json:"customer_info"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"size:32" json:"payment_method"`
	TransactionID   string          `gorm:"size:64" json:"transaction_id"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}
