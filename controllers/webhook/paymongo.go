package webhookController

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"campuspay/database"
	"campuspay/ledger"
	"campuspay/middleware"
	"campuspay/models"
	"campuspay/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// paymongoEvent mirrors the payment payload PayMongo posts to the webhook.
// Amount is in centavos; the student ID rides in the checkout session
// metadata and comes back as a string.
type paymongoEvent struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status   string `json:"status"`
			Amount   int64  `json:"amount"`
			Metadata struct {
				StudentID string `json:"student_id"`
			} `json:"metadata"`
		} `json:"attributes"`
	} `json:"data"`
}

// HandlePayMongo receives payment confirmations from the gateway. The
// signature is verified over the raw body before anything is parsed; only a
// "paid" status credits the wallet, and a redelivered payment ID is a no-op
// success. Transient storage failures return 500 so the gateway retries.
func HandlePayMongo(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Paymongo-Signature")

	if !utils.VerifyWebhookSignature(payload, signature) {
		log.Printf("Webhook rejected: invalid signature from %s", c.IP())
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid signature", nil)
	}

	var event paymongoEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.Data.Attributes.Status == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid format", nil)
	}

	status := event.Data.Attributes.Status
	paymentID := event.Data.ID
	amount := decimal.New(event.Data.Attributes.Amount, -2) // centavos -> pesos
	studentID, _ := strconv.ParseUint(event.Data.Attributes.Metadata.StudentID, 10, 64)

	// anything other than a confirmed payment is acknowledged and ignored
	if status != "paid" || studentID == 0 {
		log.Printf("Webhook received, no action taken (status: %s, student_id: %s)",
			status, event.Data.Attributes.Metadata.StudentID)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Webhook received", nil)
	}

	reference := "PAYMONGO_" + paymentID
	led := ledger.New(database.Database.Db)
	result, err := led.CompleteCashIn(uint(studentID), amount, reference,
		"Cash In via PayMongo (Payment ID: "+paymentID+")", payload)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateReference):
			// at-least-once delivery: already credited, nothing more to do
			log.Printf("Webhook duplicate delivery ignored (reference: %s)", reference)
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Already processed", nil)
		case errors.Is(err, ledger.ErrStudentNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found", nil)
		case errors.Is(err, ledger.ErrReferenceMismatch):
			log.Printf("Webhook rejected: reference %s already claimed by another student", reference)
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Reference does not match student", nil)
		case errors.Is(err, ledger.ErrInvalidAmount):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid amount", nil)
		default:
			log.Printf("Webhook credit failed (reference: %s): %v", reference, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to credit balance", nil)
		}
	}

	log.Printf("Webhook credited student %d with %s (reference: %s, new balance: %s)",
		studentID, amount.StringFixed(2), reference, result.NewBalance.StringFixed(2))

	var student models.Student
	if err := database.Database.Db.First(&student, "id = ?", uint(studentID)).Error; err == nil {
		if student.Email != "" {
			go utils.SendCashInReceipt(student.Email, student.FullName, amount, result.NewBalance, reference)
		}
		if student.Phone != "" {
			go utils.SendCashInSMS(student.Phone, student.FullName, amount, result.NewBalance)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance credited successfully", fiber.Map{
		"student_id":  studentID,
		"amount":      amount,
		"new_balance": result.NewBalance,
	})
}
