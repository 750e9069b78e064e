package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/mantavyam/jacob-web/internal/config"
	"github.com/mantavyam/jacob-web/pkg/logger"
)

const (
	confirmationSubject = "Complaint Received - WomenRise"
	helplineNumber      = "14490"
	reasonNotConfigured = "email not configured"
)

// Confirmation carries what the confirmation email needs to know about a
// freshly stored complaint.
type Confirmation struct {
	ComplaintID int64
	Username    string
	Email       string
	SubmittedAt time.Time
}

// NotifyResult reports whether a confirmation left the server. Reason is set
// when Sent is false.
type NotifyResult struct {
	Sent   bool
	Reason string
}

// Notifier sends best-effort confirmation emails. Implementations never
// return an error; failures are logged and reported through NotifyResult.
type Notifier interface {
	SendConfirmation(ctx context.Context, c Confirmation) NotifyResult
	Configured() bool
}

// NewNotifier builds the notifier selected by cfg.Provider. A backend that
// cannot be initialised degrades to the no-op notifier.
func NewNotifier(ctx context.Context, cfg config.EmailConfig, log *slog.Logger) Notifier {
	switch cfg.Provider {
	case "ses":
		n, err := NewSESNotifier(ctx, cfg, log)
		if err != nil {
			log.Warn("SES notifier unavailable, confirmations disabled", slog.Any("error", err))
			return NoopNotifier{}
		}
		return n
	case "smtp":
		if cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
			log.Warn("SMTP credentials missing, confirmations disabled")
			return NoopNotifier{}
		}
		return NewSMTPNotifier(cfg, log)
	default:
		return NoopNotifier{}
	}
}

// NoopNotifier is used when no email backend is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendConfirmation(context.Context, Confirmation) NotifyResult {
	return NotifyResult{Reason: reasonNotConfigured}
}

func (NoopNotifier) Configured() bool { return false }

// sesSender is the subset of the SES client the notifier uses.
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends confirmations through AWS SES.
type SESNotifier struct {
	client      sesSender
	fromAddress string
	timeout     time.Duration
	logger      *slog.Logger
}

func NewSESNotifier(ctx context.Context, cfg config.EmailConfig, log *slog.Logger) (*SESNotifier, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required for SES")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{
		client:      ses.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		timeout:     cfg.Timeout,
		logger:      log,
	}, nil
}

func (n *SESNotifier) Configured() bool { return true }

func (n *SESNotifier) SendConfirmation(ctx context.Context, c Confirmation) NotifyResult {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{c.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(confirmationSubject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(confirmationHTML(c))},
				Text: &types.Content{Data: aws.String(confirmationText(c))},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error("failed to send confirmation via SES",
			slog.Int64("complaint_id", c.ComplaintID),
			slog.String("email", logger.SanitizedEmail(c.Email)),
			slog.Any("error", err))
		return NotifyResult{Reason: err.Error()}
	}

	n.logger.Info("confirmation email sent",
		slog.Int64("complaint_id", c.ComplaintID),
		slog.String("email", logger.SanitizedEmail(c.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return NotifyResult{Sent: true}
}

// sendMailFunc delivers one message and gives up once ctx is done.
type sendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// sendMailContext follows smtp.SendMail but bounds the dial and every read and
// write by ctx, so a stalled relay cannot hold the sender forever.
func sendMailContext(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// SMTPNotifier sends confirmations through an authenticated SMTP relay.
type SMTPNotifier struct {
	addr     string
	auth     smtp.Auth
	from     string
	timeout  time.Duration
	sendMail sendMailFunc
	logger   *slog.Logger
}

func NewSMTPNotifier(cfg config.EmailConfig, log *slog.Logger) *SMTPNotifier {
	from := cfg.FromAddress
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPNotifier{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth:     smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		from:     from,
		timeout:  cfg.Timeout,
		sendMail: sendMailContext,
		logger:   log,
	}
}

func (n *SMTPNotifier) Configured() bool { return true }

// SendConfirmation waits for the relay at most the configured timeout. The
// send shares that deadline, so it stops soon after being reported as not sent.
func (n *SMTPNotifier) SendConfirmation(ctx context.Context, c Confirmation) NotifyResult {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := buildMIMEMessage(n.from, c.Email, confirmationSubject, confirmationHTML(c))

	done := make(chan error, 1)
	go func() {
		done <- n.sendMail(ctx, n.addr, n.auth, n.from, []string{c.Email}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			n.logger.Error("failed to send confirmation via SMTP",
				slog.Int64("complaint_id", c.ComplaintID),
				slog.String("email", logger.SanitizedEmail(c.Email)),
				slog.Any("error", err))
			return NotifyResult{Reason: err.Error()}
		}
	case <-ctx.Done():
		n.logger.Warn("confirmation email timed out",
			slog.Int64("complaint_id", c.ComplaintID),
			slog.Duration("timeout", n.timeout))
		return NotifyResult{Reason: "email send timed out"}
	}

	n.logger.Info("confirmation email sent",
		slog.Int64("complaint_id", c.ComplaintID),
		slog.String("email", logger.SanitizedEmail(c.Email)))

	return NotifyResult{Sent: true}
}

func buildMIMEMessage(from, to, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(htmlBody)
	return b.Bytes()
}

func confirmationHTML(c Confirmation) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #ff69b4;">WomenRise - Complaint Confirmation</h2>
    <p>Dear %s,</p>
    <p>Thank you for reaching out to us. We have successfully received your complaint.</p>
    <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
        <h3 style="margin-top: 0;">Complaint Details:</h3>
        <p><strong>Submission Date:</strong> %s</p>
        <p><strong>Reference ID:</strong> %d</p>
        <p><strong>Status:</strong> Pending Review</p>
    </div>
    <p>Our team will review your complaint and get back to you within 2-3 business days.</p>
    <div style="background-color: #fff3cd; padding: 10px; border-left: 4px solid #ffc107; margin: 20px 0;">
        <p style="margin: 0;"><strong>Emergency Support:</strong> If you need immediate assistance, please call our helpline at <strong>%s</strong></p>
    </div>
    <p style="color: #666; font-size: 12px; margin-top: 30px;">This is an automated confirmation email. Please do not reply to this email.</p>
    <p style="margin-top: 30px;">Regards,<br><strong>WomenRise Team</strong></p>
</div>
</body>
</html>
`, html.EscapeString(c.Username), formatSubmitted(c.SubmittedAt), c.ComplaintID, helplineNumber)
}

func confirmationText(c Confirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", c.Username)
	b.WriteString("Thank you for reaching out to us. We have successfully received your complaint.\n\n")
	fmt.Fprintf(&b, "Submission Date: %s\n", formatSubmitted(c.SubmittedAt))
	fmt.Fprintf(&b, "Reference ID: %d\n", c.ComplaintID)
	b.WriteString("Status: Pending Review\n\n")
	b.WriteString("Our team will review your complaint and get back to you within 2-3 business days.\n\n")
	fmt.Fprintf(&b, "Emergency Support: call our helpline at %s\n\n", helplineNumber)
	b.WriteString("Regards,\nWomenRise Team\n")
	return b.String()
}

var istZone = time.FixedZone("IST", 5*60*60+30*60)

func formatSubmitted(t time.Time) string {
	return t.In(istZone).Format("02 Jan 2006, 03:04 PM MST")
}
