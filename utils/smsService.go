package utils

import (
	"fmt"
	"log"
	"strings"

	"campuspay/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// SendSMS delivers one message through the Semaphore API.
func SendSMS(phone, message string) error {
	if !config.AppConfig.EnableSMS {
		log.Printf("[SMS] disabled, skipping message to %s", phone)
		return nil
	}

	number := normalizePhone(phone)
	if number == "" {
		return fmt.Errorf("sms: invalid phone number %q", phone)
	}

	client := resty.New()
	resp, err := client.R().
		SetFormData(map[string]string{
			"apikey":     config.AppConfig.SemaphoreAPIKey,
			"number":     number,
			"message":    message,
			"sendername": config.AppConfig.SemaphoreSenderName,
		}).
		Post(config.AppConfig.SemaphoreAPIURL)
	if err != nil {
		log.Printf("[SMS] error sending to %s: %v", number, err)
		return err
	}
	if resp.IsError() {
		log.Printf("[SMS] semaphore rejected message to %s: HTTP %d %s", number, resp.StatusCode(), resp.String())
		return fmt.Errorf("semaphore: HTTP %d", resp.StatusCode())
	}

	log.Printf("[SMS] sent to %s", number)
	return nil
}

// normalizePhone strips formatting and converts local PH numbers (09xx...)
// to international form (+639xx...).
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	number := b.String()
	if strings.HasPrefix(number, "0") {
		number = "+63" + number[1:]
	}
	return number
}

// SendCashInSMS texts a cash-in confirmation.
func SendCashInSMS(phone, name string, amount, newBalance decimal.Decimal) error {
	message := fmt.Sprintf(
		"Hi %s! Your campus e-wallet has been credited with P%s. New balance: P%s. Thank you!",
		name, amount.StringFixed(2), newBalance.StringFixed(2),
	)
	return SendSMS(phone, message)
}

// SendPurchaseSMS texts a purchase confirmation.
func SendPurchaseSMS(phone, name, item string, amount, newBalance decimal.Decimal) error {
	message := fmt.Sprintf(
		"Hi %s! You purchased %s for P%s. Remaining balance: P%s.",
		name, item, amount.StringFixed(2), newBalance.StringFixed(2),
	)
	return SendSMS(phone, message)
}

// SendOTPSMS texts a password-reset code.
func SendOTPSMS(phone, otp string) error {
	message := fmt.Sprintf("Your campus e-wallet password reset code is %s. It expires in 15 minutes.", otp)
	return SendSMS(phone, message)
}
