package models

import "time"

// User is identified solely by phone number.
type User struct {
	Phone     string    `gorm:"primaryKey;type:varchar(10)" json:"phone"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
