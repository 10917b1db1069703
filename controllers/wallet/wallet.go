package walletController

import (
	"errors"
	"log"

	"campuspay/database"
	"campuspay/ledger"
	"campuspay/middleware"
	"campuspay/models"
	"campuspay/utils"
	walletValidator "campuspay/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func currentStudent(c *fiber.Ctx) (*models.Student, error) {
	studentID, ok := c.Locals("accountId").(uint)
	if !ok {
		return nil, errors.New("missing student identity")
	}

	var student models.Student
	if err := database.Database.Db.First(&student, "id = ?", studentID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// GetBalance returns the student's current wallet balance
func GetBalance(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet balance fetched!", fiber.Map{
		"balance":  student.Balance,
		"currency": "PHP",
	})
}

// GetTransactions returns the student's ledger history, newest first
func GetTransactions(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	led := ledger.New(database.Database.Db)
	rows, total, err := led.Transactions(student.ID, limit, offset)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transactions fetched!", fiber.Map{
		"transactions": rows,
		"count":        len(rows),
		"total":        total,
	})
}

// GetWeeklySpending sums purchases over the last 7 days (rolling window)
func GetWeeklySpending(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	led := ledger.New(database.Database.Db)
	total, err := led.WeeklySpending(student.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute weekly spending!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Weekly spending fetched!", fiber.Map{
		"weekly_spending": total,
	})
}

// ProcessPurchase debits the wallet for an on-campus purchase
func ProcessPurchase(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedPurchase").(*walletValidator.PurchaseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	led := ledger.New(database.Database.Db)
	result, err := led.Debit(student.ID, ledger.Entry{
		Amount:   reqData.Amount,
		ItemName: reqData.ItemName,
		Location: reqData.Location,
	})
	if err != nil {
		var insufficient *ledger.InsufficientFundsError
		if errors.As(err, &insufficient) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Insufficient balance", fiber.Map{
				"current_balance": insufficient.Balance,
				"required":        insufficient.Required,
				"shortfall":       insufficient.Shortfall(),
			})
		}
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Amount must be greater than 0!", nil)
		}
		log.Printf("Purchase failed for student %d: %v", student.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Transaction failed, please retry.", nil)
	}

	// receipts are best-effort and must not affect the response
	if student.Email != "" {
		go utils.SendPurchaseReceipt(student.Email, student.FullName, reqData.ItemName, reqData.Amount, result.NewBalance)
	}
	if student.Phone != "" {
		go utils.SendPurchaseSMS(student.Phone, student.FullName, reqData.ItemName, reqData.Amount, result.NewBalance)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Purchase successful", fiber.Map{
		"new_balance":  result.NewBalance,
		"amount_spent": reqData.Amount,
	})
}

// RequestCashIn records a PENDING top-up intent
func RequestCashIn(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedCashIn").(*walletValidator.CashInRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	led := ledger.New(database.Database.Db)
	request, err := led.RequestCashIn(student.ID, reqData.Amount, reqData.ReferenceNumber)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateReference) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Reference number already used!", nil)
		}
		log.Printf("Cash-in request failed for student %d: %v", student.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Cash-in request failed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cash-in request submitted", fiber.Map{
		"cash_in_id":       request.ID,
		"reference_number": request.ReferenceNumber,
		"status":           request.Status,
	})
}

// CreatePaymentLink opens a PayMongo checkout session for a top-up
func CreatePaymentLink(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedPaymentLink").(*walletValidator.PaymentLinkRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	session, err := utils.CreatePaymentLink(student.ID, reqData.Amount)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to create payment link!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment link created", fiber.Map{
		"checkout_url": session.CheckoutURL,
		"session_id":   session.SessionID,
		"amount":       session.Amount,
	})
}
