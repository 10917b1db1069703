package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Student is a wallet account holder. Balance is a cached value derived from
// the transactions ledger and must only be written through the ledger package.
type Student struct {
	gorm.Model
	SchoolID     string          `gorm:"uniqueIndex;size:20;not null" json:"school_id"`
	FirstName    string          `gorm:"size:50;not null" json:"first_name"`
	LastName     string          `gorm:"size:50;not null" json:"last_name"`
	FullName     string          `gorm:"size:100" json:"full_name"`
	Email        string          `gorm:"size:100;index" json:"email,omitempty"`
	Phone        string          `gorm:"size:15" json:"phone,omitempty"`
	GradeSection string          `gorm:"size:50" json:"grade_section"`
	PasswordHash string          `gorm:"size:100;not null" json:"-"`
	Balance      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
}
