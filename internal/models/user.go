package models

import "time"

// Role gates access to admin-only operations.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents an account of the store.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(100)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password     string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialised
	Role         Role      `json:"role" gorm:"type:varchar(10);default:user"`
	ProfileImage string    `json:"profileImage" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
