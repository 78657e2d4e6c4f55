package domain

import "time"

// Product is a catalog item. Cart lines and order items copy the fields
// they need at add/purchase time, so editing a product never rewrites
// carts or historical orders.
type Product struct {
	ID            int64     `gorm:"primaryKey" json:"id,string"`
	Name          string    `gorm:"index" json:"name" form:"name"`
	Description   string    `gorm:"size:4096" json:"description" form:"description"`
	Price         float64   `json:"price" form:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty" form:"original_price"` // pre-discount "was" price, display only
	Category      string    `gorm:"index;size:64" json:"category" form:"category"`
	Stock         int       `json:"stock" form:"stock"`
	OnSale        bool      `json:"on_sale" form:"on_sale"`
	ImageURL      string    `gorm:"size:1024" json:"image_url" form:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
