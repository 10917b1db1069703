package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordReset stores a one-time 6-digit code for the forgot-password flow.
// A code is valid until ExpiresAt and may be consumed at most once.
type PasswordReset struct {
	gorm.Model
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	OTPCode   string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
