package models

import "time"

// DefaultProductImage is served for products created without an image.
const DefaultProductImage = "/uploads/default.png"

// Product represents a product in the store.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100)" form:"name" validate:"required,max=100"`
	Price       float64   `json:"price" form:"price" validate:"gte=0"`
	Category    string    `json:"category" gorm:"type:varchar(100);index" form:"category" validate:"required"`
	Stock       int       `json:"stock" form:"stock" validate:"gte=0"`
	Description string    `json:"description,omitempty" gorm:"type:varchar(500)" form:"description" validate:"omitempty,max=500"`
	ImageURL    string    `json:"imageUrl" form:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime;<-:create"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
