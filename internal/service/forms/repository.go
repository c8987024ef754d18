package forms

import (
	"context"
	"time"

	"github.com/nartaq/forms-service/internal/domain"
)

// NewsletterRepository defines the data access contract for newsletter
// subscriptions. Implementations must be safe for concurrent use.
type NewsletterRepository interface {
	// Create inserts a subscription unless the email already exists
	// (case-insensitive). Returns ErrAlreadySubscribed without writing when
	// it does. The lookup-then-insert is not transactionally isolated; the
	// storage layer's unique index on lower(email) is the backstop under
	// concurrent duplicates.
	Create(ctx context.Context, sub *domain.NewsletterSubscription) (*domain.NewsletterSubscription, error)

	// List returns all subscriptions ordered by created_at DESC. An empty
	// result is a valid outcome, not an error.
	List(ctx context.Context) ([]domain.NewsletterSubscription, error)

	// Aggregate computes subscriber counts: total, created since dayStart,
	// created since weekStart, and counts grouped by source with NULL
	// reported as "unknown". Stored source values are preserved verbatim.
	Aggregate(ctx context.Context, dayStart, weekStart time.Time) (*domain.SubscriberStats, error)
}

// InvestorRepository persists investor applications. Inserts are
// unconditional; repeated submissions produce distinct rows.
type InvestorRepository interface {
	Create(ctx context.Context, app *domain.InvestorApplication) (*domain.InvestorApplication, error)
}

// CareerRepository persists career applications. Same insert semantics as
// InvestorRepository.
type CareerRepository interface {
	Create(ctx context.Context, app *domain.CareerApplication) (*domain.CareerApplication, error)
}
