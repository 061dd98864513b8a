package entities

import "time"

type DetectionRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	Disease    string    `gorm:"not null" json:"disease"`
	Confidence float64   `json:"confidence"`
	Language   string    `json:"language,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
