package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"campuspay/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// CheckoutSession is the subset of the PayMongo checkout session response we
// surface to the frontend.
type CheckoutSession struct {
	SessionID   string          `json:"session_id"`
	CheckoutURL string          `json:"checkout_url"`
	Amount      decimal.Decimal `json:"amount"`
}

type paymongoCheckoutResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"attributes"`
	} `json:"data"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreatePaymentLink creates a PayMongo checkout session for a wallet top-up.
// The student ID travels in the session metadata and comes back on the
// payment.paid webhook. Amounts are sent in centavos.
func CreatePaymentLink(studentID uint, amount decimal.Decimal) (*CheckoutSession, error) {
	cfg := config.AppConfig

	body := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"line_items": []map[string]interface{}{
					{
						"currency":    "PHP",
						"amount":      amount.Mul(decimal.NewFromInt(100)).IntPart(),
						"description": "E-Wallet Cash In",
						"name":        "Campus E-Wallet",
						"quantity":    1,
					},
				},
				"payment_method_types": []string{"gcash"},
				"success_url":          cfg.CheckoutSuccessURL,
				"cancel_url":           cfg.CheckoutCancelURL,
				"description":          fmt.Sprintf("Student ID: %d | Amount: PHP %s", studentID, amount.StringFixed(2)),
				"metadata": map[string]interface{}{
					"student_id": fmt.Sprintf("%d", studentID),
					"amount":     amount.StringFixed(2),
				},
			},
		},
	}

	var out paymongoCheckoutResponse
	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBasicAuth(cfg.PayMongoSecretKey, "").
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(cfg.PayMongoAPIURL + "/checkout_sessions")
	if err != nil {
		return nil, fmt.Errorf("paymongo request failed: %w", err)
	}

	if resp.IsError() || out.Data.ID == "" {
		detail := "failed to create payment link"
		if len(out.Errors) > 0 {
			detail = out.Errors[0].Detail
		}
		log.Printf("PayMongo checkout session error (HTTP %d): %s", resp.StatusCode(), detail)
		return nil, fmt.Errorf("paymongo: %s", detail)
	}

	return &CheckoutSession{
		SessionID:   out.Data.ID,
		CheckoutURL: out.Data.Attributes.CheckoutURL,
		Amount:      amount,
	}, nil
}

// VerifyWebhookSignature checks the Paymongo-Signature header against the
// raw request body. The header format is "t=<ts>,te=<test sig>,li=<live sig>"
// and the signature is HMAC-SHA256 over "<ts>.<body>" with the webhook
// secret. Comparison is constant-time.
func VerifyWebhookSignature(payload []byte, header string) bool {
	return verifyWebhookSignature(payload, header,
		config.AppConfig.PayMongoWebhookSecret, config.AppConfig.PayMongoLiveMode)
}

func verifyWebhookSignature(payload []byte, header, secret string, liveMode bool) bool {
	if secret == "" || header == "" {
		return false
	}

	var timestamp, testSig, liveSig string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "te":
			testSig = value
		case "li":
			liveSig = value
		}
	}

	supplied := testSig
	if liveMode {
		supplied = liveSig
	}
	if timestamp == "" || supplied == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(supplied))
}
