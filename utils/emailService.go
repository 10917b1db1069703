package utils

import (
	"fmt"
	"log"

	"campuspay/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
)

// SendEmail sends one HTML email through SendGrid. Failures are logged and
// returned; callers in the request path must dispatch with `go` so delivery
// problems never affect the HTTP response.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if !config.AppConfig.EnableEmail {
		log.Printf("[EMAIL] disabled, skipping %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail(config.AppConfig.EmailSenderName, config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] error sending %q to %s: %v", subject, toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] sendgrid rejected %q to %s: HTTP %d %s", subject, toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid: HTTP %d", resp.StatusCode)
	}

	log.Printf("[EMAIL] sent %q to %s", subject, toEmail)
	return nil
}

func emailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
			<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
				<h2 style="color: #333333; text-align: center;">%s</h2>
				%s
				<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 30px;">Campus E-Wallet</p>
			</div>
		</body>
	</html>`, title, bodyContent)
}

// SendOTPEmail mails a password-reset code.
func SendOTPEmail(email, name, otp string) error {
	subject := "Password Reset Code"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your password reset code is:</p>
		<h1 style="text-align: center; color: #4CAF50; font-size: 40px;">%s</h1>
		<p style="font-size: 14px; color: #999999;">The code expires in 15 minutes. Do not share it with anyone.</p>
	`, name, otp)

	return SendEmail(email, name, subject, emailTemplate("Password Reset", body))
}

// SendCashInReceipt mails a cash-in confirmation after a committed credit.
func SendCashInReceipt(email, name string, amount, newBalance decimal.Decimal, reference string) error {
	subject := "Cash-In Received"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your e-wallet has been credited with <strong>PHP %s</strong>.</p>
		<p>New balance: <strong>PHP %s</strong></p>
		<p style="font-size: 12px; color: #999999;">Reference: %s</p>
	`, name, amount.StringFixed(2), newBalance.StringFixed(2), reference)

	return SendEmail(email, name, subject, emailTemplate("Cash-In Confirmed", body))
}

// SendPurchaseReceipt mails a purchase confirmation after a committed debit.
func SendPurchaseReceipt(email, name, item string, amount, newBalance decimal.Decimal) error {
	subject := "Purchase Receipt"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You purchased <strong>%s</strong> for <strong>PHP %s</strong>.</p>
		<p>Remaining balance: <strong>PHP %s</strong></p>
	`, name, item, amount.StringFixed(2), newBalance.StringFixed(2))

	return SendEmail(email, name, subject, emailTemplate("Purchase Receipt", body))
}
