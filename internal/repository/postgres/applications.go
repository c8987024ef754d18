package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nartaq/forms-service/internal/domain"
)

// InvestorRepo implements forms.InvestorRepository. Inserts are
// unconditional: the same investor applying twice produces two rows.
type InvestorRepo struct{ db *sql.DB }

// NewInvestorRepo creates a Postgres-backed investor application repository.
func NewInvestorRepo(db *sql.DB) *InvestorRepo { return &InvestorRepo{db: db} }

func (r *InvestorRepo) Create(ctx context.Context, app *domain.InvestorApplication) (*domain.InvestorApplication, error) {
	out := *app
	out.ID = uuid.New().String()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO investor_application
			(id, full_name, work_email, company_name, title, investment_focus,
			 other_focus, ticket_size, target_geography, referral_source,
			 other_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`, out.ID, out.FullName, out.WorkEmail, out.CompanyName, out.Title,
		pq.Array(out.InvestmentFocus), out.OtherFocus, out.TicketSize,
		pq.Array(out.TargetGeography), out.ReferralSource, out.OtherSource,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, opFailed("investor insert", err)
	}
	return &out, nil
}

// CareerRepo implements forms.CareerRepository with the same insert
// semantics as InvestorRepo.
type CareerRepo struct{ db *sql.DB }

// NewCareerRepo creates a Postgres-backed career application repository.
func NewCareerRepo(db *sql.DB) *CareerRepo { return &CareerRepo{db: db} }

func (r *CareerRepo) Create(ctx context.Context, app *domain.CareerApplication) (*domain.CareerApplication, error) {
	out := *app
	out.ID = uuid.New().String()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO career_application
			(id, full_name, email, position, linkedin_url, portfolio_url,
			 message, referral_source, other_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`, out.ID, out.FullName, out.Email, out.Position, out.LinkedInURL,
		out.PortfolioURL, out.Message, out.ReferralSource, out.OtherSource,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, opFailed("career insert", err)
	}
	return &out, nil
}
