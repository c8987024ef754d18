package validation

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func findViolation(vs []Violation, field string) *Violation {
	for i := range vs {
		if vs[i].Field == field {
			return &vs[i]
		}
	}
	return nil
}

func TestNewsletterValid(t *testing.T) {
	data, vs := Newsletter(NewsletterInput{
		Email:  strPtr("  Jane.Doe@Example.COM "),
		Name:   strPtr("Jane"),
		Source: strPtr("homepage-footer"),
	})
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if data.Email != "jane.doe@example.com" {
		t.Errorf("email not normalized: %q", data.Email)
	}
	if data.Name == nil || *data.Name != "Jane" {
		t.Errorf("name = %v, want Jane", data.Name)
	}
	if data.Source != "homepage-footer" {
		t.Errorf("source = %q", data.Source)
	}
}

func TestNewsletterEmailMissing(t *testing.T) {
	_, vs := Newsletter(NewsletterInput{})
	v := findViolation(vs, "email")
	if v == nil {
		t.Fatal("expected violation on email")
	}
	if v.Code != CodeInvalidType {
		t.Errorf("code = %q, want %q", v.Code, CodeInvalidType)
	}
}

func TestNewsletterEmailInvalid(t *testing.T) {
	for _, bad := range []string{"invalid-email", "", "a@b", "@example.com"} {
		_, vs := Newsletter(NewsletterInput{Email: strPtr(bad)})
		v := findViolation(vs, "email")
		if v == nil {
			t.Fatalf("email %q: expected violation", bad)
		}
		if v.Code != CodeInvalidFormat {
			t.Errorf("email %q: code = %q, want %q", bad, v.Code, CodeInvalidFormat)
		}
	}
}

func TestNewsletterNormalizesOptionals(t *testing.T) {
	data, vs := Newsletter(NewsletterInput{
		Email:  strPtr("jane@example.com"),
		Name:   strPtr("   "),
		Source: strPtr(""),
	})
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if data.Name != nil {
		t.Errorf("blank name should normalize to absent, got %q", *data.Name)
	}
	if data.Source != "unknown" {
		t.Errorf("blank source should normalize to \"unknown\", got %q", data.Source)
	}
}

func validInvestorInput() InvestorInput {
	return InvestorInput{
		FullName:        strPtr("Jane Doe"),
		WorkEmail:       strPtr("jane@fund.com"),
		CompanyName:     strPtr("Fund Capital"),
		Title:           strPtr("Partner"),
		InvestmentFocus: []string{"fintech", "deeptech"},
		TicketSize:      strPtr("100k_500k"),
		TargetGeography: []string{"europe"},
		ReferralSource:  strPtr("linkedin"),
	}
}

func TestInvestorValid(t *testing.T) {
	data, vs := Investor(validInvestorInput())
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if data.TicketSize != "100k_500k" {
		t.Errorf("ticketSize = %q", data.TicketSize)
	}
	if len(data.InvestmentFocus) != 2 {
		t.Errorf("investmentFocus = %v", data.InvestmentFocus)
	}
	if data.OtherFocus != nil {
		t.Errorf("otherFocus should be absent, got %v", data.OtherFocus)
	}
}

func TestInvestorEmptyFocusIsDedicatedViolation(t *testing.T) {
	in := validInvestorInput()
	in.InvestmentFocus = []string{}
	_, vs := Investor(in)
	v := findViolation(vs, "investmentFocus")
	if v == nil {
		t.Fatal("expected violation on investmentFocus")
	}
	if v.Code != CodeTooSmall {
		t.Errorf("code = %q, want %q", v.Code, CodeTooSmall)
	}
	if v.Message == "Investment focus is required" {
		t.Error("empty array must not reuse the generic required message")
	}
}

func TestInvestorEmptyGeographyIsDedicatedViolation(t *testing.T) {
	in := validInvestorInput()
	in.TargetGeography = []string{}
	_, vs := Investor(in)
	v := findViolation(vs, "targetGeography")
	if v == nil {
		t.Fatal("expected violation on targetGeography")
	}
	if v.Code != CodeTooSmall {
		t.Errorf("code = %q, want %q", v.Code, CodeTooSmall)
	}
}

func TestInvestorCollectsAllViolations(t *testing.T) {
	_, vs := Investor(InvestorInput{})
	// Every required field should be reported, not just the first.
	for _, field := range []string{"fullName", "workEmail", "companyName", "title", "investmentFocus", "ticketSize", "targetGeography", "referralSource"} {
		if findViolation(vs, field) == nil {
			t.Errorf("missing violation for %s", field)
		}
	}
	if len(vs) != 8 {
		t.Errorf("expected 8 violations, got %d: %v", len(vs), vs)
	}
}

func TestInvestorBadTicketSize(t *testing.T) {
	in := validInvestorInput()
	in.TicketSize = strPtr("a-briefcase-of-cash")
	_, vs := Investor(in)
	v := findViolation(vs, "ticketSize")
	if v == nil || v.Code != CodeInvalidEnum {
		t.Fatalf("expected invalid_enum_value on ticketSize, got %v", vs)
	}
}

func TestCareerValid(t *testing.T) {
	data, vs := Career(CareerInput{
		FullName:       strPtr("John Doe"),
		Email:          strPtr("john@example.com"),
		Position:       strPtr("Senior Engineer"),
		PortfolioURL:   strPtr(""),
		ReferralSource: strPtr("jobboard"),
	})
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if data.PortfolioURL != nil {
		t.Error("blank portfolio URL should normalize to absent")
	}
}

func TestCareerMissingFields(t *testing.T) {
	_, vs := Career(CareerInput{})
	for _, field := range []string{"fullName", "email", "position", "referralSource"} {
		if findViolation(vs, field) == nil {
			t.Errorf("missing violation for %s", field)
		}
	}
}
