package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

// Mailer sends transactional email.
type Mailer interface {
	SendResetPasswordEmail(toEmail, resetToken string) error
}

// SMTPMailer implements Mailer over SMTP using gomail.
type SMTPMailer struct {
	host        string
	port        int
	from        string
	password    string
	frontendURL string
	logger      *logger.Logger
}

func NewSMTPMailer(host string, port int, from, password, frontendURL string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:        host,
		port:        port,
		from:        from,
		password:    password,
		frontendURL: frontendURL,
		logger:      log.Named("SMTPMailer"),
	}
}

// SendResetPasswordEmail mails the user a link carrying the reset token.
func (m *SMTPMailer) SendResetPasswordEmail(toEmail, resetToken string) error {
	m.logger.Info("Sending reset password email", zap.String("to", toEmail))

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, resetToken)
	body := fmt.Sprintf(
		"Dear user,\n\nTo reset your password, click on this link: %s\n\nIf you did not request any password resets, then ignore this email.",
		resetURL,
	)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Reset password")
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.host, m.port, m.from, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send reset password email", zap.Error(err), zap.String("to", toEmail))
		return fmt.Errorf("failed to send reset password email: %w", err)
	}
	return nil
}
