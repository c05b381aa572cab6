package models

import "time"

// UserCar is one booking interval of one car by one user.
type UserCar struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"userId" gorm:"index"`
	CarID         uint      `json:"carId" gorm:"index"`
	RentStartedAt time.Time `json:"rentStartedAt" gorm:"index"`
	RentEndedAt   time.Time `json:"rentEndedAt" gorm:"index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
