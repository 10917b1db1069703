package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType defines the type of wallet transaction
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "PURCHASE"
	TransactionTypeCashIn   TransactionType = "CASH_IN"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Transaction is one row of the append-only ledger. Rows are never updated
// or deleted; the invariant NewBalance = PreviousBalance ± Amount (sign by
// type) holds for every row.
type Transaction struct {
	gorm.Model
	StudentID       uint              `gorm:"not null;index" json:"student_id"`
	TransactionType TransactionType   `gorm:"type:varchar(20);not null" json:"transaction_type"`
	Amount          decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PreviousBalance decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"previous_balance"`
	NewBalance      decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"new_balance"`
	ItemName        string            `gorm:"size:100" json:"item_name,omitempty"`
	Location        string            `gorm:"size:100" json:"location,omitempty"`
	Description     string            `gorm:"type:text" json:"description,omitempty"`
	Status          TransactionStatus `gorm:"type:varchar(20);default:'COMPLETED'" json:"status"`
	TransactionDate time.Time         `gorm:"not null" json:"transaction_date"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
