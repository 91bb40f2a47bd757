package validation

import (
	"testing"
	"time"

	"github.com/kmoran/personal-library/models"
)

func TestValidateLoanCreate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	in := LoanCreate{
		Book:          "507f1f77bcf86cd799439011",
		BorrowerName:  "Ana",
		BorrowerEmail: "ana@example.com",
		DueDate:       &models.Date{Time: now.Add(7 * 24 * time.Hour)},
	}
	if msgs := ValidateLoanCreate(&in, now); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
}

func TestValidateLoanCreateDueDateInPast(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	in := LoanCreate{
		Book:          "507f1f77bcf86cd799439011",
		BorrowerName:  "Ana",
		BorrowerEmail: "ana@example.com",
		DueDate:       &models.Date{Time: now.Add(-24 * time.Hour)},
	}
	msgs := ValidateLoanCreate(&in, now)
	if !hasMessage(msgs, "dueDate must be in the future") {
		t.Fatalf("expected due date violation, got %v", msgs)
	}
}

func TestValidateLoanCreateCollectsAllViolations(t *testing.T) {
	in := LoanCreate{Book: "nope", BorrowerName: "A", BorrowerEmail: "not-an-email"}
	msgs := ValidateLoanCreate(&in, time.Now())
	for _, want := range []string{
		"borrowerName must be at least 2 characters",
		"borrowerEmail must be a valid email address",
		"book must be a valid book id",
		"dueDate is required",
	} {
		if !hasMessage(msgs, want) {
			t.Fatalf("missing %q in %v", want, msgs)
		}
	}
}

func TestValidateLoanUpdate(t *testing.T) {
	if msgs := ValidateLoanUpdate(&LoanUpdate{}); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
	bad := "Lost"
	msgs := ValidateLoanUpdate(&LoanUpdate{Status: &bad})
	if !hasMessage(msgs, "status must be one of: Active, Returned, Overdue") {
		t.Fatalf("expected status violation, got %v", msgs)
	}
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}
	notes := string(long)
	msgs = ValidateLoanUpdate(&LoanUpdate{Notes: &notes})
	if !hasMessage(msgs, "notes cannot be more than 500 characters") {
		t.Fatalf("expected notes violation, got %v", msgs)
	}
}
