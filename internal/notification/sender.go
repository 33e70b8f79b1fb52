package notification

import (
	"context"
	"fmt"

	"gymweb/booking-api/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers transactional mail to gym clients. Implementations may
// fail with a delivery error; callers decide whether that failure matters
// (session-cancellation notices are best-effort, OTP mail is not).
type Sender interface {
	SendSessionCancellation(ctx context.Context, to string, data CancellationData) error
	SendOTP(ctx context.Context, to, name, code string) error
}

// CancellationData carries the details rendered into a cancellation notice.
type CancellationData struct {
	Name        string
	Notes       string
	SessionDate string
	SessionTime string
	Reason      string
}

// smtpSender implements Sender over SMTP via gomail.
type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPSender creates a mail sender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendSessionCancellation emails a client that an administrator cancelled
// their workout session.
func (s *smtpSender) SendSessionCancellation(ctx context.Context, to string, data CancellationData) error {
	body, err := renderCancellation(data)
	if err != nil {
		return fmt.Errorf("render cancellation email: %w", err)
	}
	return s.send(ctx, to, "Workout Session Cancelled - Gym Web", body)
}

// SendOTP emails a password-reset code.
func (s *smtpSender) SendOTP(ctx context.Context, to, name, code string) error {
	body, err := renderOTP(name, code)
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}
	return s.send(ctx, to, "Password Reset OTP - Gym Web", body)
}

func (s *smtpSender) send(ctx context.Context, to, subject, body string) error {
	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp delivery to %s: %w", to, err)
	}
	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
