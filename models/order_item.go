package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem keeps the unit price captured when the order was placed, so later
// menu edits never change historical orders.
type OrderItem struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID    string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	MenuItemID string          `gorm:"type:varchar(36);not null" json:"menu_item_id"`
	MenuItem   *MenuItem       `gorm:"foreignKey:MenuItemID;references:ID" json:"menu_item,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
