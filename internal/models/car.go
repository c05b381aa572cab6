package models

import "time"

// Car sizes. Input is matched case-insensitively and stored upper-cased.
const (
	CarSizeSmall  = "SMALL"
	CarSizeMedium = "MEDIUM"
	CarSizeLarge  = "LARGE"
)

// Car is a rentable vehicle. IsCurrentlyRented is informational only, the
// reservations table decides availability.
type Car struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"type:varchar(255)" validate:"required,min=1,max=255"`
	Price             float64   `json:"price" validate:"required,gt=0"`
	Size              string    `json:"size" gorm:"type:varchar(10);index" validate:"required,oneof=SMALL MEDIUM LARGE"`
	Image             string    `json:"image" validate:"omitempty,max=1000"`
	IsCurrentlyRented bool      `json:"isCurrentlyRented"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
