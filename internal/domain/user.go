package domain

import "time"

// User status values.
const (
	UserStatusActive    = "ACTIVE"
	UserStatusPending   = "PENDING"
	UserStatusSuspended = "SUSPENDED"
)

// User is an end user of the platform managed from the back-office.
type User struct {
	BaseModel
	Name        string     `gorm:"size:100;not null" json:"name"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone       string     `gorm:"size:32" json:"phone"`
	Status      string     `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Admin is a back-office operator. Admins authenticate against the API.
type Admin struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	RoleID       *uint  `gorm:"index" json:"role_id"`
	Active       bool   `gorm:"not null;default:true" json:"active"`
}
