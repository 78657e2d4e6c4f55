package gateway

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends customer-facing notifications. Delivery is best-effort:
// callers fire it after the fact and only log failures.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, email string, orderID int64) error
}

// MailSettings resolves SMTP parameters from the runtime settings
// table, so operators can change them without a restart.
type MailSettings interface {
	GetSettingsStringValue(category, name string) string
	GetSettingsInt64Value(category, name string) int64
}

// SMTPMailer delivers through a real SMTP relay configured under the
// "smtp" settings category.
type SMTPMailer struct {
	settings MailSettings
}

func NewSMTPMailer(settings MailSettings) *SMTPMailer {
	return &SMTPMailer{settings: settings}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, email string, orderID int64) error {
	host := m.settings.GetSettingsStringValue("smtp", "host")
	if host == "" {
		return errors.New("mailer: smtp host not configured")
	}
	port := int(m.settings.GetSettingsInt64Value("smtp", "port"))
	if port == 0 {
		port = 587
	}
	from := m.settings.GetSettingsStringValue("smtp", "from")
	user := m.settings.GetSettingsStringValue("smtp", "username")
	passwd := m.settings.GetSettingsStringValue("smtp", "password")

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", fmt.Sprintf("Your order #%d is confirmed", orderID))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Thanks for shopping with us!\n\nYour order #%d was placed successfully and is now pending. "+
			"We will email you again when it ships.\n", orderID))

	dialer := gomail.NewDialer(host, port, user, passwd)
	return errors.Wrap(dialer.DialAndSend(msg), "mailer: send confirmation")
}

// LogMailer is the development transport: it only writes a log line.
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(ctx context.Context, email string, orderID int64) error {
	zap.L().Info("order confirmation mail (log transport)",
		zap.String("email", email),
		zap.Int64("order_id", orderID))
	return nil
}
