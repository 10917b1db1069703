package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CashInStatus defines the lifecycle of a cash-in request.
// PENDING -> COMPLETED is the only allowed transition.
type CashInStatus string

const (
	CashInStatusPending   CashInStatus = "PENDING"
	CashInStatusCompleted CashInStatus = "COMPLETED"
)

// CashInRequest records an intent to top up a wallet. ReferenceNumber is the
// idempotency token supplied by the student or the payment gateway; the
// unique index is what makes duplicate webhook deliveries safe under
// concurrency.
type CashInRequest struct {
	gorm.Model
	StudentID       uint            `gorm:"not null;index" json:"student_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ReferenceNumber string          `gorm:"uniqueIndex;size:100;not null" json:"reference_number"`
	Status          CashInStatus    `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	RequestedAt     time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	GatewayPayload  datatypes.JSON  `json:"-"` // raw webhook body, kept for audit

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}

func (CashInRequest) TableName() string {
	return "cash_in_requests"
}
