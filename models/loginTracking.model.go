package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking records successful student logins for the audit view.
type LoginTracking struct {
	gorm.Model
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Device    string    `gorm:"size:255" json:"device"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}
