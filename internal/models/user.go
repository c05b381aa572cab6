package models

import "time"

// User represents a registered account. Email is always stored lower-cased.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"type:varchar(255)"`
	Email             string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Image             *string   `json:"image"`
	EncryptedPassword string    `json:"-" gorm:"type:varchar(255)"` // No json tag for security
	RoleID            uint      `json:"roleId"`
	Role              *Role     `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
