package service

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"donorhub/internal/logger"
	"donorhub/internal/models"
)

// ==============================================
// EMAIL SERVICE
// ==============================================

type EmailService struct {
	smtpHost string
	smtpPort string
	username string
	password string
	from     string
}

func NewEmailService(host, port, username, password, from string) *EmailService {
	return &EmailService{
		smtpHost: host,
		smtpPort: port,
		username: username,
		password: password,
		from:     from,
	}
}

// ==============================================
// SEND OPERATIONS
// ==============================================

// SendOTP sends an OTP code via email
func (s *EmailService) SendOTP(email, displayName, code, purpose string) error {
	subject, body := otpEmailContent(displayName, code, purpose)
	return s.send(email, subject, body)
}

// SendWelcome sends a welcome email after successful verification
func (s *EmailService) SendWelcome(email, displayName string) error {
	subject := "Welcome to DonorHub!"
	body := fmt.Sprintf(`Hello %s,

Your membership has been verified. You can now log in, manage your
profile, and track your donations.

Thank you for joining DonorHub!

Best regards,
The DonorHub Team
`, displayName)

	return s.send(email, subject, body)
}

// SendPasswordChanged sends a confirmation after a password reset
func (s *EmailService) SendPasswordChanged(email, displayName string) error {
	subject := "Your Password Was Changed - DonorHub"
	body := fmt.Sprintf(`Hello %s,

Your DonorHub password was just changed.

If you made this change, no further action is needed. If you didn't,
please contact support immediately.

Best regards,
The DonorHub Team
`, displayName)

	return s.send(email, subject, body)
}

// SendDonationReceipt acknowledges a received donation
func (s *EmailService) SendDonationReceipt(email, donorName, reference string, amount int64, currency string) error {
	subject := "Thank You for Your Donation - DonorHub"
	body := fmt.Sprintf(`Hello %s,

Thank you for your donation of %s %.2f.

Your receipt reference is: %s

Best regards,
The DonorHub Team
`, donorName, currency, float64(amount)/100.0, reference)

	return s.send(email, subject, body)
}

// ==============================================
// EMAIL TEMPLATES
// ==============================================

func otpEmailContent(displayName, code, purpose string) (subject string, body string) {
	switch purpose {
	case models.OTPPurposeRegistration:
		subject = "Verify Your Email - DonorHub"
		body = fmt.Sprintf(`Hello %s,

Thank you for registering with DonorHub!

Your email verification code is: %s

This code will expire in 10 minutes.

If you didn't request this code, please ignore this email.

Best regards,
The DonorHub Team
`, displayName, code)

	case models.OTPPurposePasswordReset:
		subject = "Reset Your Password - DonorHub"
		body = fmt.Sprintf(`Hello %s,

We received a request to reset your password.

Your password reset code is: %s

This code will expire in 10 minutes.

If you didn't request this, please ignore this email and your password
will remain unchanged.

Best regards,
The DonorHub Team
`, displayName, code)

	default:
		subject = "Your Verification Code - DonorHub"
		body = fmt.Sprintf(`Hello %s,

Your verification code is: %s

This code will expire in 10 minutes.

Best regards,
The DonorHub Team
`, displayName, code)
	}

	return subject, body
}

// ==============================================
// SMTP TRANSPORT
// ==============================================

// send delivers a plain-text message over implicit TLS (port 465)
func (s *EmailService) send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := s.smtpHost + ":" + s.smtpPort

	tlsConfig := &tls.Config{
		ServerName: s.smtpHost,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.smtpHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	logger.Get().Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
