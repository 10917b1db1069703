package models

import (
	"gorm.io/gorm"
)

// Admin is a staff account for the management API.
type Admin struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName     string `gorm:"size:100" json:"full_name"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
}
