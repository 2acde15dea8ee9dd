package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	ImageURL    string          `gorm:"column:image_url;type:varchar(255)" json:"image_url"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (MenuItem) TableName() string { return "menu_items" }

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
