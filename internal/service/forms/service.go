package forms

import (
	"context"
	"sync"
	"time"

	"github.com/nartaq/forms-service/internal/domain"
	"github.com/nartaq/forms-service/internal/notifier"
	"github.com/nartaq/forms-service/internal/pkg/logger"
	"github.com/nartaq/forms-service/internal/validation"
)

// MsgAlreadySubscribed is the fixed duplicate-subscription rejection. It is
// exported so the HTTP layer can map it to a conflict status.
const MsgAlreadySubscribed = "This email is already subscribed to our newsletter"

// Fixed caller-facing messages. Persistence causes are never included.
const (
	msgSubscribeFailed   = "Failed to subscribe to newsletter"
	msgApplicationFailed = "Failed to submit application"
	msgSubscribersFailed = "Failed to fetch subscribers"
	msgStatsFailed       = "Failed to fetch subscriber stats"
)

// Mailer dispatches a templated transactional email. Sends are best-effort
// relative to the pipeline: a mailer failure never changes a submission's
// reported outcome.
type Mailer interface {
	Send(ctx context.Context, template notifier.Template, recipient string, data map[string]interface{}) (*notifier.SendResult, error)
}

// Analytics is a fire-and-forget event sink. Emit must never block and is
// never awaited.
type Analytics interface {
	Emit(event string, props map[string]interface{})
}

// Service orchestrates Validator → Repository → Notifier for each
// submission kind and serves the admin queries.
type Service struct {
	newsletter NewsletterRepository
	investors  InvestorRepository
	careers    CareerRepository
	mailer     Mailer
	analytics  Analytics

	notifyTimeout time.Duration
	wg            sync.WaitGroup
}

// NewService creates the forms service. mailer and analytics may be nil,
// in which case the corresponding step is skipped.
func NewService(newsletter NewsletterRepository, investors InvestorRepository, careers CareerRepository, mailer Mailer, analytics Analytics) *Service {
	return &Service{
		newsletter:    newsletter,
		investors:     investors,
		careers:       careers,
		mailer:        mailer,
		analytics:     analytics,
		notifyTimeout: 30 * time.Second,
	}
}

// SubscribeNewsletter handles a newsletter signup.
func (s *Service) SubscribeNewsletter(ctx context.Context, in validation.NewsletterInput) *Result {
	data, violations := validation.Newsletter(in)
	if len(violations) > 0 {
		return invalid(violations)
	}

	source := data.Source
	sub, err := s.newsletter.Create(ctx, &domain.NewsletterSubscription{
		Email:  data.Email,
		Name:   data.Name,
		Source: &source,
	})
	if err == ErrAlreadySubscribed {
		return fail(MsgAlreadySubscribed)
	}
	if err != nil {
		return fail(msgSubscribeFailed)
	}

	s.notify(notifier.TemplateNewsletterWelcome, sub.Email, map[string]interface{}{
		"name": derefOr(sub.Name, "there"),
	})
	s.emit("newsletter_subscribed", map[string]interface{}{"source": source})

	return ok(sub)
}

// SubmitInvestorApplication handles an investor application.
func (s *Service) SubmitInvestorApplication(ctx context.Context, in validation.InvestorInput) *Result {
	data, violations := validation.Investor(in)
	if len(violations) > 0 {
		return invalid(violations)
	}

	app, err := s.investors.Create(ctx, &domain.InvestorApplication{
		FullName:        data.FullName,
		WorkEmail:       data.WorkEmail,
		CompanyName:     data.CompanyName,
		Title:           data.Title,
		InvestmentFocus: data.InvestmentFocus,
		OtherFocus:      data.OtherFocus,
		TicketSize:      data.TicketSize,
		TargetGeography: data.TargetGeography,
		ReferralSource:  data.ReferralSource,
		OtherSource:     data.OtherSource,
	})
	if err != nil {
		return fail(msgApplicationFailed)
	}

	s.notify(notifier.TemplateInvestorConfirmation, app.WorkEmail, map[string]interface{}{
		"name":    app.FullName,
		"company": app.CompanyName,
	})
	s.emit("investor_application_submitted", map[string]interface{}{"ticketSize": string(app.TicketSize)})

	return ok(app)
}

// SubmitCareerApplication handles a career application.
func (s *Service) SubmitCareerApplication(ctx context.Context, in validation.CareerInput) *Result {
	data, violations := validation.Career(in)
	if len(violations) > 0 {
		return invalid(violations)
	}

	app, err := s.careers.Create(ctx, &domain.CareerApplication{
		FullName:       data.FullName,
		Email:          data.Email,
		Position:       data.Position,
		LinkedInURL:    data.LinkedInURL,
		PortfolioURL:   data.PortfolioURL,
		Message:        data.Message,
		ReferralSource: data.ReferralSource,
		OtherSource:    data.OtherSource,
	})
	if err != nil {
		return fail(msgApplicationFailed)
	}

	s.notify(notifier.TemplateCareerConfirmation, app.Email, map[string]interface{}{
		"name":     app.FullName,
		"position": app.Position,
	})
	s.emit("career_application_submitted", map[string]interface{}{"position": app.Position})

	return ok(app)
}

// GetSubscribers returns all newsletter subscriptions, newest first.
func (s *Service) GetSubscribers(ctx context.Context) *Result {
	subs, err := s.newsletter.List(ctx)
	if err != nil {
		return fail(msgSubscribersFailed)
	}
	if subs == nil {
		subs = []domain.NewsletterSubscription{}
	}
	return ok(subs)
}

// GetStats returns subscriber aggregates. The day boundary is the local
// midnight at call time; the week window trails 7 days. A failure in any
// underlying aggregate fails the whole call — no partial stats.
func (s *Service) GetStats(ctx context.Context) *Result {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -7)

	stats, err := s.newsletter.Aggregate(ctx, dayStart, weekStart)
	if err != nil {
		return fail(msgStatsFailed)
	}
	return ok(stats)
}

// notify dispatches a transactional email without blocking the caller. The
// submission's response is already determined by the time the send settles;
// failures are logged and swallowed.
func (s *Service) notify(template notifier.Template, recipient string, data map[string]interface{}) {
	if s.mailer == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if _, err := s.mailer.Send(ctx, template, recipient, data); err != nil {
			logger.Warn("notification failed",
				"template", string(template),
				"recipient", recipient,
				"error", err.Error())
		}
	}()
}

// emit forwards an event to the analytics sink. Never awaited, never fails.
func (s *Service) emit(event string, props map[string]interface{}) {
	if s.analytics == nil {
		return
	}
	s.analytics.Emit(event, props)
}

// Wait blocks until in-flight notifications settle. Called on shutdown so
// a SIGTERM doesn't drop welcome emails mid-send.
func (s *Service) Wait() { s.wg.Wait() }

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
