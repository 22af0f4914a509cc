// Package notify delivers best-effort messages to the customer's phone
// through a WhatsApp HTTP gateway. Delivery failure never rolls back a
// committed reservation.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notifier sends a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, phone, text string) error
}

// WhatsAppClient talks to a WhatsApp gateway over HTTP.
type WhatsAppClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	delays     []time.Duration
	logger     *zerolog.Logger
}

// NewWhatsAppClient constructs a client for the gateway at baseURL.
func NewWhatsAppClient(baseURL, token string, logger *zerolog.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(20), 30),
		delays:     []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
		logger:     logger,
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send posts the message to the gateway, retrying transient failures
// with the configured backoff delays.
func (c *WhatsAppClient) Send(ctx context.Context, phone, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.delays[attempt-1]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.post(ctx, phone, text)
		if lastErr == nil {
			return nil
		}
		c.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Str("phone", phone).Msg("whatsapp send failed")
	}
	return fmt.Errorf("send whatsapp message: %w", lastErr)
}

func (c *WhatsAppClient) post(ctx context.Context, phone, text string) error {
	body, err := json.Marshal(sendRequest{Phone: phone, Message: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}

// Noop logs messages instead of delivering them, for deployments
// without a configured gateway.
type Noop struct {
	Logger *zerolog.Logger
}

func (n *Noop) Send(_ context.Context, phone, text string) error {
	n.Logger.Info().Str("phone", phone).Str("text", text).Msg("notification skipped: no gateway configured")
	return nil
}
