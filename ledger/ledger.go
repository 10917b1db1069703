// Package ledger owns every balance mutation. A mutation reads the current
// balance, applies a signed delta, and appends one transaction row, all
// inside a single database transaction. Calls for the same student are
// serialized; calls for different students run in parallel.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"campuspay/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrStudentNotFound    = errors.New("student not found")
	ErrInactiveAccount    = errors.New("account is deactivated")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidReference   = errors.New("reference number is required")
	ErrDuplicateReference = errors.New("reference already completed")
	ErrReferenceMismatch  = errors.New("reference belongs to a different student")
)

// InsufficientFundsError carries the balance snapshot so callers can report
// the shortfall without re-reading the account.
type InsufficientFundsError struct {
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, required %s", e.Balance, e.Required)
}

// Is makes errors.Is(err, ErrInsufficientFunds) work.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall is the amount missing to cover the requested debit.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Balance)
}

// Entry describes the ledger row to append alongside a balance mutation.
// Amount is a positive magnitude; the operation decides the sign.
type Entry struct {
	Amount      decimal.Decimal
	ItemName    string
	Location    string
	Description string
}

// MutationResult reports the balances around a committed mutation.
type MutationResult struct {
	TransactionID   uint            `json:"transaction_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}

// Ledger applies balance mutations against one database.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// studentLocks is package-level: handlers construct a Ledger per request, so
// the map serializing mutations per student must outlive any one instance.
var studentLocks sync.Map // student ID -> *sync.Mutex

// studentLock returns the mutex serializing mutations for one student.
// Mutations for different students do not contend.
func (l *Ledger) studentLock(studentID uint) *sync.Mutex {
	mu, _ := studentLocks.LoadOrStore(studentID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// lockStudent loads the student row for update inside tx. On engines with
// row locks this issues SELECT ... FOR UPDATE; sqlite has a single writer
// and rejects the clause, so it is skipped there.
func (l *Ledger) lockStudent(tx *gorm.DB, studentID uint) (*models.Student, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var student models.Student
	if err := q.First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !student.IsActive {
		return nil, ErrInactiveAccount
	}
	return &student, nil
}

// Credit adds entry.Amount to the student's balance and appends one CASH_IN
// row. Both writes commit or roll back together.
func (l *Ledger) Credit(studentID uint, entry Entry) (*MutationResult, error) {
	return l.apply(studentID, models.TransactionTypeCashIn, entry)
}

// Debit subtracts entry.Amount from the student's balance and appends one
// PURCHASE row. Fails with *InsufficientFundsError when the balance does not
// cover the amount; nothing is written in that case.
func (l *Ledger) Debit(studentID uint, entry Entry) (*MutationResult, error) {
	return l.apply(studentID, models.TransactionTypePurchase, entry)
}

func (l *Ledger) apply(studentID uint, txType models.TransactionType, entry Entry) (*MutationResult, error) {
	if entry.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	mu := l.studentLock(studentID)
	mu.Lock()
	defer mu.Unlock()

	var result *MutationResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		res, err := l.applyInTx(tx, studentID, txType, entry)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyInTx performs the read-check-write-append sequence inside an open
// transaction. Callers hold the student lock.
func (l *Ledger) applyInTx(tx *gorm.DB, studentID uint, txType models.TransactionType, entry Entry) (*MutationResult, error) {
	student, err := l.lockStudent(tx, studentID)
	if err != nil {
		return nil, err
	}

	previous := student.Balance
	var next decimal.Decimal
	switch txType {
	case models.TransactionTypePurchase:
		if entry.Amount.GreaterThan(previous) {
			return nil, &InsufficientFundsError{Balance: previous, Required: entry.Amount}
		}
		next = previous.Sub(entry.Amount)
	default:
		next = previous.Add(entry.Amount)
	}

	if err := tx.Model(&models.Student{}).Where("id = ?", studentID).
		Update("balance", next).Error; err != nil {
		return nil, err
	}

	row := models.Transaction{
		StudentID:       studentID,
		TransactionType: txType,
		Amount:          entry.Amount,
		PreviousBalance: previous,
		NewBalance:      next,
		ItemName:        entry.ItemName,
		Location:        entry.Location,
		Description:     entry.Description,
		Status:          models.TransactionStatusCompleted,
		TransactionDate: time.Now(),
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}

	return &MutationResult{
		TransactionID:   row.ID,
		PreviousBalance: previous,
		NewBalance:      next,
	}, nil
}

// Balance returns the student's current balance.
func (l *Ledger) Balance(studentID uint) (decimal.Decimal, error) {
	var student models.Student
	if err := l.db.First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrStudentNotFound
		}
		return decimal.Zero, err
	}
	return student.Balance, nil
}

// Transactions returns the student's ledger rows newest-first.
func (l *Ledger) Transactions(studentID uint, limit, offset int) ([]models.Transaction, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := l.db.Model(&models.Transaction{}).Where("student_id = ?", studentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Transaction
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// WeeklySpending sums PURCHASE amounts in a rolling 7-day window anchored at
// now. This is intentionally not a calendar week.
func (l *Ledger) WeeklySpending(studentID uint) (decimal.Decimal, error) {
	since := time.Now().AddDate(0, 0, -7)

	var total decimal.Decimal
	err := l.db.Model(&models.Transaction{}).
		Where("student_id = ? AND transaction_type = ? AND created_at >= ?",
			studentID, models.TransactionTypePurchase, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// RequestCashIn records a PENDING top-up intent. When reference is empty a
// unique one is generated.
func (l *Ledger) RequestCashIn(studentID uint, amount decimal.Decimal, reference string) (*models.CashInRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	var student models.Student
	if err := l.db.First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if reference == "" {
		reference = "CASHIN_" + uuid.NewString()
	}

	request := models.CashInRequest{
		StudentID:       studentID,
		Amount:          amount,
		ReferenceNumber: reference,
		Status:          models.CashInStatusPending,
		RequestedAt:     time.Now(),
	}
	if err := l.db.Create(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}
	return &request, nil
}

// CompleteCashIn credits the student and marks the cash-in request for
// reference COMPLETED in one atomic unit. Redelivering the same reference
// returns ErrDuplicateReference with no further mutation; the unique index
// on reference_number enforces this even for concurrent duplicates. A
// reference already claimed by a different student is rejected with
// ErrReferenceMismatch.
func (l *Ledger) CompleteCashIn(studentID uint, amount decimal.Decimal, reference, description string, payload []byte) (*MutationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if reference == "" {
		return nil, ErrInvalidReference
	}

	mu := l.studentLock(studentID)
	mu.Lock()
	defer mu.Unlock()

	var result *MutationResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Claim the reference before touching the balance so a duplicate
		// delivery bails out with zero writes.
		var request models.CashInRequest
		err := tx.Where("reference_number = ?", reference).First(&request).Error
		switch {
		case err == nil:
			if request.StudentID != studentID {
				return ErrReferenceMismatch
			}
			if request.Status == models.CashInStatusCompleted {
				return ErrDuplicateReference
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			request = models.CashInRequest{
				StudentID:       studentID,
				Amount:          amount,
				ReferenceNumber: reference,
				Status:          models.CashInStatusPending,
				RequestedAt:     now,
			}
			if err := tx.Create(&request).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// a concurrent delivery claimed the reference first
					return ErrDuplicateReference
				}
				return err
			}
		default:
			return err
		}

		res, err := l.applyInTx(tx, studentID, models.TransactionTypeCashIn, Entry{
			Amount:      amount,
			Description: description,
		})
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":       models.CashInStatusCompleted,
			"amount":       amount,
			"processed_at": &now,
		}
		if len(payload) > 0 {
			updates["gateway_payload"] = datatypes.JSON(payload)
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CashInRequestByReference looks up a cash-in request by its idempotency
// token.
func (l *Ledger) CashInRequestByReference(reference string) (*models.CashInRequest, error) {
	var request models.CashInRequest
	if err := l.db.Where("reference_number = ?", reference).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}
