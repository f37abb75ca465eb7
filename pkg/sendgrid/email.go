package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker/v2"
)

var ErrServiceUnavailable = errors.New("email service temporarily unavailable")

type EmailService interface {
	Send(ctx context.Context, req *models.EmailNotificationRequest) error
}

type Client struct {
	client    *sg.Client
	breaker   *gobreaker.CircuitBreaker[*rest.Response]
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid backed sender, or a logging sender when
// no API key is configured.
func NewEmailService(cfg config.SendGrid) EmailService {
	if cfg.APIKey == "" {
		return LogSender{}
	}

	return NewClient(cfg)
}

func NewClient(cfg config.SendGrid) *Client {

	settings := gobreaker.Settings{
		Name:        "sendgrid",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Client{
		client:    sg.NewSendClient(cfg.APIKey),
		breaker:   gobreaker.NewCircuitBreaker[*rest.Response](settings),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (c *Client) Send(ctx context.Context, req *models.EmailNotificationRequest) error {

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail("", req.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)

	personalization.Subject = req.Subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", req.Content))
	if req.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", req.HTMLContent))
	}

	// only transport failures and 5xx count against the breaker
	response, err := c.breaker.Execute(func() (*rest.Response, error) {
		resp, err := c.client.SendWithContext(ctx, message)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, fmt.Errorf("failed to send email, status code: %d", resp.StatusCode)
		}
		return resp, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

// SendGridClient exposes the underlying client so tests can point it at a fake server.
func (c *Client) SendGridClient() *sg.Client {
	return c.client
}

func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, req *models.EmailNotificationRequest) error {
	slog.InfoContext(ctx, "Email not sent, no SendGrid API key configured",
		slog.String("to", req.To),
		slog.String("subject", req.Subject),
	)
	return nil
}
