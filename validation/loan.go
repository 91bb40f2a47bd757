package validation

import (
	"time"

	"github.com/kmoran/personal-library/models"
)

type LoanCreate struct {
	Book          string       `json:"book" validate:"required"`
	BorrowerName  string       `json:"borrowerName" validate:"required,min=2"`
	BorrowerEmail string       `json:"borrowerEmail" validate:"required,email"`
	DueDate       *models.Date `json:"dueDate"`
	Notes         string       `json:"notes" validate:"omitempty,max=500"`
}

type LoanUpdate struct {
	BorrowerName  *string      `json:"borrowerName" validate:"omitempty,min=2"`
	BorrowerEmail *string      `json:"borrowerEmail" validate:"omitempty,email"`
	DueDate       *models.Date `json:"dueDate"`
	ReturnDate    *models.Date `json:"returnDate"`
	Status        *string      `json:"status" validate:"omitempty,oneof='Active' 'Returned' 'Overdue'"`
	Notes         *string      `json:"notes" validate:"omitempty,max=500"`
}

// ValidateLoanCreate checks a new loan request. The due date must be in the
// future at creation time; now is passed in so the rule stays testable.
func ValidateLoanCreate(in *LoanCreate, now time.Time) []string {
	msgs := check(in)
	if in.Book != "" && !isObjectID(in.Book) {
		msgs = append(msgs, "book must be a valid book id")
	}
	switch {
	case in.DueDate == nil || in.DueDate.Time.IsZero():
		msgs = append(msgs, "dueDate is required")
	case in.DueDate.Time.Before(now):
		msgs = append(msgs, "dueDate must be in the future")
	}
	return msgs
}

func ValidateLoanUpdate(in *LoanUpdate) []string {
	return check(in)
}
