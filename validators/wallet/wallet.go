package walletValidator

import (
	"campuspay/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PurchaseRequest is the parsed purchase body.
type PurchaseRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	ItemName string          `json:"item_name"`
	Location string          `json:"location"`
}

// Purchase validates a purchase request
func Purchase() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PurchaseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Amount.LessThanOrEqual(decimal.Zero) {
			errors["amount"] = "Amount must be greater than 0!"
		}
		if reqData.ItemName == "" {
			errors["item_name"] = "Item name is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPurchase", reqData)
		return c.Next()
	}
}

// CashInRequest is the parsed cash-in request body.
type CashInRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"reference_number"`
}

// CashIn validates a cash-in request
func CashIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CashInRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Amount.LessThanOrEqual(decimal.Zero) {
			return middleware.ValidationErrorResponse(c, map[string]string{"amount": "Amount must be greater than 0!"})
		}

		c.Locals("validatedCashIn", reqData)
		return c.Next()
	}
}

// PaymentLinkRequest is the parsed payment link body.
type PaymentLinkRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// minimum checkout amount accepted by the gateway
var minPaymentAmount = decimal.NewFromInt(10)

// PaymentLink validates a checkout session request
func PaymentLink() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PaymentLinkRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Amount.LessThan(minPaymentAmount) {
			return middleware.ValidationErrorResponse(c, map[string]string{"amount": "Minimum amount is PHP 10!"})
		}

		c.Locals("validatedPaymentLink", reqData)
		return c.Next()
	}
}
