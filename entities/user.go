package entities

import "time"

// User is keyed by the farmer identifier (Aadhaar or similar) chosen at registration.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
