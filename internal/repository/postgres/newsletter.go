// Package postgres implements the forms repository interfaces against
// PostgreSQL. Every low-level store failure is logged here and surfaced to
// callers only as forms.ErrOperationFailed.
package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nartaq/forms-service/internal/domain"
	"github.com/nartaq/forms-service/internal/pkg/logger"
	"github.com/nartaq/forms-service/internal/service/forms"
)

// NewsletterRepo implements forms.NewsletterRepository.
type NewsletterRepo struct{ db *sql.DB }

// NewNewsletterRepo creates a Postgres-backed newsletter repository.
func NewNewsletterRepo(db *sql.DB) *NewsletterRepo { return &NewsletterRepo{db: db} }

// Create inserts a subscription unless the email already exists. The
// lookup-then-insert pair is not wrapped in a transaction — at this traffic
// the window is uncontended, and the unique index on lower(email) is the
// backstop: a racing duplicate insert fails there and is masked like any
// other store failure.
func (r *NewsletterRepo) Create(ctx context.Context, sub *domain.NewsletterSubscription) (*domain.NewsletterSubscription, error) {
	email := strings.ToLower(strings.TrimSpace(sub.Email))

	var existingID string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM newsletter WHERE lower(email) = $1
	`, email).Scan(&existingID)
	if err == nil {
		return nil, forms.ErrAlreadySubscribed
	}
	if err != sql.ErrNoRows {
		return nil, opFailed("newsletter lookup", err)
	}

	out := &domain.NewsletterSubscription{
		ID:     uuid.New().String(),
		Email:  email,
		Name:   sub.Name,
		Source: sub.Source,
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO newsletter (id, email, name, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`, out.ID, email, sub.Name, sub.Source).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, opFailed("newsletter insert", err)
	}
	return out, nil
}

// List returns all subscriptions, newest first.
func (r *NewsletterRepo) List(ctx context.Context) ([]domain.NewsletterSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, source, created_at, updated_at
		FROM newsletter
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, opFailed("newsletter list", err)
	}
	defer rows.Close()

	var out []domain.NewsletterSubscription
	for rows.Next() {
		var s domain.NewsletterSubscription
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.Source, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, opFailed("newsletter scan", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("newsletter rows", err)
	}
	return out, nil
}

// Aggregate computes the subscriber counters in one call. NULL sources are
// relabeled "unknown" in the output only; stored values stay as persisted,
// and non-null values pass through verbatim (sanitization is a display
// concern).
func (r *NewsletterRepo) Aggregate(ctx context.Context, dayStart, weekStart time.Time) (*domain.SubscriberStats, error) {
	stats := &domain.SubscriberStats{BySource: []domain.SourceCount{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE created_at >= $1),
		       COUNT(*) FILTER (WHERE created_at >= $2)
		FROM newsletter
	`, dayStart, weekStart).Scan(&stats.TotalSubscribers, &stats.TodaySubscribers, &stats.WeekSubscribers)
	if err != nil {
		return nil, opFailed("newsletter counts", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(source, 'unknown') AS source, COUNT(*)
		FROM newsletter
		GROUP BY COALESCE(source, 'unknown')
		ORDER BY COUNT(*) DESC, source ASC
	`)
	if err != nil {
		return nil, opFailed("newsletter by-source", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc domain.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, opFailed("newsletter by-source scan", err)
		}
		stats.BySource = append(stats.BySource, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("newsletter by-source rows", err)
	}
	return stats, nil
}

// opFailed logs the original store error and returns the masked sentinel.
// The cause never reaches a caller.
func opFailed(op string, err error) error {
	logger.Error("repository operation failed", "op", op, "error", err.Error())
	return forms.ErrOperationFailed
}
