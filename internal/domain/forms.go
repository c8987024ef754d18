package domain

import "time"

// TicketSize is the investment ticket bucket an investor selects.
// Values mirror the fixed options presented by the application form.
type TicketSize string

const (
	TicketUnder100K TicketSize = "under_100k"
	Ticket100K500K  TicketSize = "100k_500k"
	Ticket500K1M    TicketSize = "500k_1m"
	Ticket1M5M      TicketSize = "1m_5m"
	TicketOver5M    TicketSize = "over_5m"
)

// TicketSizes lists the valid ticket buckets in display order.
func TicketSizes() []TicketSize {
	return []TicketSize{TicketUnder100K, Ticket100K500K, Ticket500K1M, Ticket1M5M, TicketOver5M}
}

// NewsletterSubscription is a single newsletter signup. Identity is the
// email, unique case-insensitively. Rows are created once and never change.
type NewsletterSubscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Source    *string   `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InvestorApplication is a submitted investor application. Repeated
// submissions from the same person produce distinct rows.
type InvestorApplication struct {
	ID              string     `json:"id"`
	FullName        string     `json:"fullName"`
	WorkEmail       string     `json:"workEmail"`
	CompanyName     string     `json:"companyName"`
	Title           string     `json:"title"`
	InvestmentFocus []string   `json:"investmentFocus"`
	OtherFocus      *string    `json:"otherFocus,omitempty"`
	TicketSize      TicketSize `json:"ticketSize"`
	TargetGeography []string   `json:"targetGeography"`
	ReferralSource  string     `json:"referralSource"`
	OtherSource     *string    `json:"otherSource,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CareerApplication is a submitted career application, shaped symmetrically
// with the investor application.
type CareerApplication struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Position       string    `json:"position"`
	LinkedInURL    *string   `json:"linkedinUrl,omitempty"`
	PortfolioURL   *string   `json:"portfolioUrl,omitempty"`
	Message        *string   `json:"message,omitempty"`
	ReferralSource string    `json:"referralSource"`
	OtherSource    *string   `json:"otherSource,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SubscriberStats is the on-demand aggregate over newsletter rows.
// Today is bounded by the local day boundary at call time; Week is the
// trailing 7-day window.
type SubscriberStats struct {
	TotalSubscribers int           `json:"totalSubscribers"`
	TodaySubscribers int           `json:"todaySubscribers"`
	WeekSubscribers  int           `json:"weekSubscribers"`
	BySource         []SourceCount `json:"subscribersBySource"`
}

// SourceCount is one by-source bucket. Rows stored with a NULL source are
// reported under "unknown"; stored values are otherwise preserved verbatim,
// including markup-looking strings — sanitization is a display concern.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}
