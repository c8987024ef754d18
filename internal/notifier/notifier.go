// Package notifier dispatches templated transactional email. The operating
// mode (SendGrid, SES, or a local capture sink) is decided once at process
// start and injected into the constructor; it is never re-read per call.
package notifier

import (
	"context"
	"fmt"

	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// Template identifies one of the fixed transactional email kinds.
type Template string

const (
	TemplateNewsletterWelcome    Template = "newsletter-welcome"
	TemplateInvestorConfirmation Template = "investor-confirmation"
	TemplateCareerConfirmation   Template = "career-confirmation"
	TemplateTest                 Template = "test-message"
)

// Message is the provider-agnostic envelope. Provider mode and local
// capture mode accept the identical shape.
type Message struct {
	To        string `json:"to"`
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
	ReplyTo   string `json:"replyTo"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
}

// SendResult reports a successful delivery handoff.
type SendResult struct {
	MessageID string `json:"messageId"`
}

// Sender delivers a single message through one operating mode.
type Sender interface {
	// Name identifies the mode for logging ("sendgrid", "ses", "capture").
	Name() string

	// Send hands the message to the underlying transport. A returned error
	// carries the provider's own message when the provider responded with a
	// structured error body, and a fixed generic message otherwise.
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

// route fixes the subject line and reply-to mailbox for a template kind.
// Replies route per audience: investor replies go to a different mailbox
// than founder/career replies.
type route struct {
	subject string
	replyTo string
}

// Service renders templates and sends through the configured Sender.
type Service struct {
	sender    Sender
	templates *registry
	fromEmail string
	fromName  string
	routes    map[Template]route
}

// New creates a notifier bound to the given sender. The routing table is
// static configuration, built once from the mail settings.
func New(sender Sender, mail config.MailConfig) *Service {
	return &Service{
		sender:    sender,
		templates: newRegistry(),
		fromEmail: mail.FromEmail,
		fromName:  mail.FromName,
		routes: map[Template]route{
			TemplateNewsletterWelcome:    {subject: "Welcome to the NartaQ newsletter", replyTo: mail.ReplyToGeneral},
			TemplateInvestorConfirmation: {subject: "We received your investor application", replyTo: mail.ReplyToInvestors},
			TemplateCareerConfirmation:   {subject: "We received your application", replyTo: mail.ReplyToFounders},
			TemplateTest:                 {subject: "NartaQ test message", replyTo: mail.ReplyToGeneral},
		},
	}
}

// Mode reports the active operating mode.
func (s *Service) Mode() string { return s.sender.Name() }

// Send renders the template and dispatches one message. The plain-text body
// is derived from the rendered HTML.
func (s *Service) Send(ctx context.Context, template Template, recipient string, data map[string]interface{}) (*SendResult, error) {
	rt, ok := s.routes[template]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", template)
	}

	html, err := s.templates.render(template, data)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", template, err)
	}

	res, err := s.sender.Send(ctx, Message{
		To:        recipient,
		FromEmail: s.fromEmail,
		FromName:  s.fromName,
		ReplyTo:   rt.replyTo,
		Subject:   rt.subject,
		HTML:      html,
		Text:      PlainText(html),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("email sent",
		"mode", s.sender.Name(),
		"template", string(template),
		"recipient", recipient,
		"messageId", res.MessageID)
	return res, nil
}

// BulkError records one failed recipient in a bulk send.
type BulkError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BulkResult accounts for a bulk send. Success is true only when no
// recipient failed.
type BulkResult struct {
	Success bool        `json:"success"`
	Sent    int         `json:"sent"`
	Failed  int         `json:"failed"`
	Errors  []BulkError `json:"errors,omitempty"`
}

// SendBulk sends independently to each recipient: one recipient's failure
// never aborts the others. Delivery order across recipients is not
// guaranteed and must not be assumed by callers.
func (s *Service) SendBulk(ctx context.Context, recipients []string, subject string, render func(recipient string) (string, error)) *BulkResult {
	result := &BulkResult{}

	for _, recipient := range recipients {
		html, err := render(recipient)
		if err == nil {
			_, err = s.sender.Send(ctx, Message{
				To:        recipient,
				FromEmail: s.fromEmail,
				FromName:  s.fromName,
				ReplyTo:   s.routes[TemplateTest].replyTo,
				Subject:   subject,
				HTML:      html,
				Text:      PlainText(html),
			})
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkError{Email: recipient, Error: err.Error()})
			logger.Warn("bulk send failed", "recipient", recipient, "error", err.Error())
			continue
		}
		result.Sent++
	}

	result.Success = result.Failed == 0
	return result
}
