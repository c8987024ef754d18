// Package validation schema-checks raw form payloads and normalizes
// optional fields. It is pure and synchronous: no I/O, no side effects.
// A payload either normalizes as a whole or fails with the complete
// violation list.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nartaq/forms-service/internal/domain"
)

// Violation codes. invalid_type means the field was missing or had the
// wrong JSON type; invalid_format means it was present but malformed.
const (
	CodeInvalidType   = "invalid_type"
	CodeInvalidFormat = "invalid_format"
	CodeRequired      = "required"
	CodeInvalidEnum   = "invalid_enum_value"
	CodeTooSmall      = "too_small"
)

// Violation is a single field-path-tagged validation error.
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NewsletterInput is the raw newsletter payload. Pointer fields distinguish
// missing keys from empty strings.
type NewsletterInput struct {
	Email  *string `json:"email"`
	Name   *string `json:"name"`
	Source *string `json:"source"`
}

// NewsletterData is a normalized newsletter subscription request.
type NewsletterData struct {
	Email  string
	Name   *string
	Source string
}

// Newsletter validates and normalizes a newsletter payload.
func Newsletter(in NewsletterInput) (NewsletterData, []Violation) {
	var vs []Violation
	email := checkEmail(&vs, "email", in.Email)
	if len(vs) > 0 {
		return NewsletterData{}, vs
	}
	return NewsletterData{
		Email:  email,
		Name:   optional(in.Name),
		Source: sourceOrUnknown(in.Source),
	}, nil
}

// InvestorInput is the raw investor application payload.
type InvestorInput struct {
	FullName        *string  `json:"fullName"`
	WorkEmail       *string  `json:"workEmail"`
	CompanyName     *string  `json:"companyName"`
	Title           *string  `json:"title"`
	InvestmentFocus []string `json:"investmentFocus"`
	OtherFocus      *string  `json:"otherFocus"`
	TicketSize      *string  `json:"ticketSize"`
	TargetGeography []string `json:"targetGeography"`
	ReferralSource  *string  `json:"referralSource"`
	OtherSource     *string  `json:"otherSource"`
}

// InvestorData is a normalized investor application request.
type InvestorData struct {
	FullName        string
	WorkEmail       string
	CompanyName     string
	Title           string
	InvestmentFocus []string
	OtherFocus      *string
	TicketSize      domain.TicketSize
	TargetGeography []string
	ReferralSource  string
	OtherSource     *string
}

// Investor validates and normalizes an investor application payload.
func Investor(in InvestorInput) (InvestorData, []Violation) {
	var vs []Violation

	fullName := checkRequired(&vs, "fullName", "Full name", in.FullName)
	workEmail := checkEmail(&vs, "workEmail", in.WorkEmail)
	companyName := checkRequired(&vs, "companyName", "Company name", in.CompanyName)
	title := checkRequired(&vs, "title", "Title", in.Title)
	focus := checkNonEmptyList(&vs, "investmentFocus", "investment focus area", in.InvestmentFocus)
	ticket := checkTicketSize(&vs, "ticketSize", in.TicketSize)
	geo := checkNonEmptyList(&vs, "targetGeography", "target geography", in.TargetGeography)
	referral := checkRequired(&vs, "referralSource", "Referral source", in.ReferralSource)

	if len(vs) > 0 {
		return InvestorData{}, vs
	}
	return InvestorData{
		FullName:        fullName,
		WorkEmail:       workEmail,
		CompanyName:     companyName,
		Title:           title,
		InvestmentFocus: focus,
		OtherFocus:      optional(in.OtherFocus),
		TicketSize:      ticket,
		TargetGeography: geo,
		ReferralSource:  referral,
		OtherSource:     optional(in.OtherSource),
	}, nil
}

// CareerInput is the raw career application payload.
type CareerInput struct {
	FullName       *string `json:"fullName"`
	Email          *string `json:"email"`
	Position       *string `json:"position"`
	LinkedInURL    *string `json:"linkedinUrl"`
	PortfolioURL   *string `json:"portfolioUrl"`
	Message        *string `json:"message"`
	ReferralSource *string `json:"referralSource"`
	OtherSource    *string `json:"otherSource"`
}

// CareerData is a normalized career application request.
type CareerData struct {
	FullName       string
	Email          string
	Position       string
	LinkedInURL    *string
	PortfolioURL   *string
	Message        *string
	ReferralSource string
	OtherSource    *string
}

// Career validates and normalizes a career application payload.
func Career(in CareerInput) (CareerData, []Violation) {
	var vs []Violation

	fullName := checkRequired(&vs, "fullName", "Full name", in.FullName)
	email := checkEmail(&vs, "email", in.Email)
	position := checkRequired(&vs, "position", "Position", in.Position)
	referral := checkRequired(&vs, "referralSource", "Referral source", in.ReferralSource)

	if len(vs) > 0 {
		return CareerData{}, vs
	}
	return CareerData{
		FullName:       fullName,
		Email:          email,
		Position:       position,
		LinkedInURL:    optional(in.LinkedInURL),
		PortfolioURL:   optional(in.PortfolioURL),
		Message:        optional(in.Message),
		ReferralSource: referral,
		OtherSource:    optional(in.OtherSource),
	}, nil
}

// checkEmail validates an email field. A missing field is an invalid_type
// violation; an empty or malformed value is invalid_format. Returns the
// normalized (trimmed, lowercased) address.
func checkEmail(vs *[]Violation, field string, v *string) string {
	if v == nil {
		*vs = append(*vs, Violation{Field: field, Code: CodeInvalidType, Message: "Expected string, received null"})
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(*v))
	if !emailRegex.MatchString(email) {
		*vs = append(*vs, Violation{Field: field, Code: CodeInvalidFormat, Message: "Please enter a valid email address"})
		return ""
	}
	return email
}

// checkRequired validates a required free-text field.
func checkRequired(vs *[]Violation, field, label string, v *string) string {
	if v == nil {
		*vs = append(*vs, Violation{Field: field, Code: CodeInvalidType, Message: "Expected string, received null"})
		return ""
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		*vs = append(*vs, Violation{Field: field, Code: CodeRequired, Message: label + " is required"})
		return ""
	}
	return s
}

// checkNonEmptyList enforces the dedicated non-empty rule for tag arrays.
// A missing array is an invalid_type violation; an explicitly empty array
// gets its own too_small message, distinct from "required".
func checkNonEmptyList(vs *[]Violation, field, label string, v []string) []string {
	if v == nil {
		*vs = append(*vs, Violation{Field: field, Code: CodeInvalidType, Message: "Expected array, received null"})
		return nil
	}
	out := make([]string, 0, len(v))
	for _, item := range v {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		*vs = append(*vs, Violation{Field: field, Code: CodeTooSmall, Message: fmt.Sprintf("Please select at least one %s", label)})
		return nil
	}
	return out
}

func checkTicketSize(vs *[]Violation, field string, v *string) domain.TicketSize {
	if v == nil {
		*vs = append(*vs, Violation{Field: field, Code: CodeInvalidType, Message: "Expected string, received null"})
		return ""
	}
	for _, ts := range domain.TicketSizes() {
		if domain.TicketSize(*v) == ts {
			return ts
		}
	}
	*vs = append(*vs, Violation{Field: field, Code: CodeInvalidEnum, Message: "Please select a ticket size"})
	return ""
}

// optional normalizes an optional free-text field: nil or blank becomes
// absent (nil), never an empty string.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// sourceOrUnknown normalizes the newsletter source tag. Unlike the other
// optional fields it defaults to the literal "unknown" because the stats
// aggregation groups on it.
func sourceOrUnknown(v *string) string {
	if v == nil {
		return "unknown"
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "unknown"
	}
	return s
}
