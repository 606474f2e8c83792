// Package email delivers plain-text mail for workflow notifications.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/config"
)

const (
	resendAPIBaseURL = "https://api.resend.com"
	resendSendPath   = "/emails"
)

// ErrDeliveryFailed is returned when the provider refuses a message
var ErrDeliveryFailed = errors.New("email: delivery failed")

// ResendSender sends mail through the Resend HTTP API
type ResendSender struct {
	apiKey     string
	baseURL    string
	from       string
	httpClient *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// NewResendSender creates a sender from configuration
func NewResendSender(cfg config.EmailConfig) (*ResendSender, error) {
	if cfg.ResendAPIKey == "" {
		return nil, errors.New("email: resend api key is required")
	}
	if cfg.From == "" {
		return nil, errors.New("email: from address is required")
	}
	baseURL := strings.TrimSuffix(cfg.ResendURL, "/")
	if baseURL == "" {
		baseURL = resendAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ResendSender{
		apiKey:  cfg.ResendAPIKey,
		baseURL: baseURL,
		from:    cfg.From,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Send delivers one message. An empty recipient is a validation error so
// callers can tell it apart from a provider failure.
func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return shared.NewValidationError("to", "Recipient address is required")
	}

	payload, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("email: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+resendSendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("email: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("email: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp resendErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: %s - %s", ErrDeliveryFailed, errResp.Name, errResp.Message)
		}
		return fmt.Errorf("%w: HTTP %d", ErrDeliveryFailed, resp.StatusCode)
	}

	var ok resendResponse
	if err := json.Unmarshal(respBody, &ok); err != nil || ok.ID == "" {
		return fmt.Errorf("%w: unexpected response", ErrDeliveryFailed)
	}
	return nil
}

var _ shared.EmailSink = (*ResendSender)(nil)
