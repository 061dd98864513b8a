package entities

import "time"

// ChatRecord keeps one advisor turn in the working language (English).
type ChatRecord struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    *string `gorm:"index" json:"user_id"`
	SessionID string  `gorm:"index" json:"session_id"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Language  string  `json:"language,omitempty"`
	// farmer context as sent to the advisor
	Context   map[string]string `gorm:"serializer:json" json:"context,omitempty"`
	CreatedAt time.Time         `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
