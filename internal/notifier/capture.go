package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// ErrCaptureUnavailable is surfaced when the local capture sink is down.
var ErrCaptureUnavailable = errors.New("Failed to deliver to local mail capture")

// CaptureSender is the development-only sink: it accepts the same message
// envelope as the real providers but posts it to a local endpoint instead
// of delivering externally.
type CaptureSender struct {
	url        string
	httpClient *http.Client
}

// NewCaptureSender creates a local-capture sender.
func NewCaptureSender(cfg config.CaptureConfig) *CaptureSender {
	return &CaptureSender{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// Name implements Sender.
func (s *CaptureSender) Name() string { return "capture" }

// Send implements Sender by posting the envelope to the capture endpoint.
func (s *CaptureSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("mail capture unreachable", "url", s.url, "error", err.Error())
		return nil, ErrCaptureUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("mail capture rejected message", "url", s.url, "status", resp.StatusCode)
		return nil, ErrCaptureUnavailable
	}

	return &SendResult{MessageID: "capture-" + uuid.New().String()}, nil
}

// SelectSender resolves the operating mode once at process start:
// SendGrid when an API key is configured, SES when enabled, otherwise the
// local capture sink.
func SelectSender(ctx context.Context, cfg *config.Config) (Sender, error) {
	switch {
	case cfg.SendGrid.APIKey != "":
		logger.Info("email mode selected", "mode", "sendgrid")
		return NewSendGridSender(cfg.SendGrid), nil
	case cfg.SES.Enabled:
		logger.Info("email mode selected", "mode", "ses", "region", cfg.SES.Region)
		return NewSESSender(ctx, cfg.SES)
	default:
		logger.Info("email mode selected", "mode", "capture", "url", cfg.Capture.URL)
		return NewCaptureSender(cfg.Capture), nil
	}
}
