package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderedByPhone string          `gorm:"type:varchar(10);not null;index:idx_orders_phone_time" json:"ordered_by_phone"`
	OrderTime      time.Time       `gorm:"not null;index:idx_orders_phone_time" json:"order_time"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;default:'New'" json:"status"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	PickupCode     *int            `json:"pickup_code,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"order_items,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderTime.IsZero() {
		o.OrderTime = time.Now()
	}
	if o.Status == "" {
		o.Status = StatusNew
	}
	return nil
}

// ItemsTotal sums price*quantity over the stored line items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
