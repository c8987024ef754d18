package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/pkg/httpretry"
	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// ErrSendGridTransport is the fixed message surfaced when SendGrid could
// not be reached at all. When SendGrid responds with a structured error
// body, its own message is surfaced instead.
var ErrSendGridTransport = errors.New("Failed to send email via SendGrid")

// SendGridSender sends through the SendGrid v3 mail API.
type SendGridSender struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewSendGridSender creates a SendGrid-backed sender.
func NewSendGridSender(cfg config.SendGridConfig) *SendGridSender {
	return &SendGridSender{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

// Name implements Sender.
func (s *SendGridSender) Name() string { return "sendgrid" }

// Send implements Sender against POST /v3/mail/send.
func (s *SendGridSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": msg.To}}},
		},
		"from": map[string]string{
			"email": msg.FromEmail,
			"name":  msg.FromName,
		},
		"reply_to": map[string]string{"email": msg.ReplyTo},
		"subject":  msg.Subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": msg.Text},
			{"type": "text/html", "value": msg.HTML},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal transmission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Transport failure: mask the cause, log it server-side.
		logger.Error("sendgrid transport error", "recipient", msg.To, "error", err.Error())
		return nil, ErrSendGridTransport
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &SendResult{MessageID: resp.Header.Get("X-Message-Id")}, nil
	}

	// SendGrid error bodies carry their own messages ("Invalid API key",
	// "The from email does not match a verified Sender Identity", ...).
	respBody, _ := io.ReadAll(resp.Body)
	var sgErr struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &sgErr); err == nil && len(sgErr.Errors) > 0 && sgErr.Errors[0].Message != "" {
		return nil, errors.New(sgErr.Errors[0].Message)
	}

	logger.Error("sendgrid error response", "recipient", msg.To, "status", resp.StatusCode, "body", string(respBody))
	return nil, ErrSendGridTransport
}
