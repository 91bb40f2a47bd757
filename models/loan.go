package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loan statuses. Returned is terminal.
const (
	LoanStatusActive   = "Active"
	LoanStatusReturned = "Returned"
	LoanStatusOverdue  = "Overdue"
)

type LoanRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID        primitive.ObjectID `bson:"book" json:"book"`
	BorrowerName  string             `bson:"borrowerName" json:"borrowerName"`
	BorrowerEmail string             `bson:"borrowerEmail" json:"borrowerEmail"`
	LoanDate      time.Time          `bson:"loanDate" json:"loanDate"`
	DueDate       time.Time          `bson:"dueDate" json:"dueDate"`
	ReturnDate    *time.Time         `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeriveLoanStatus computes the status a loan should carry at the given
// instant. Returned never changes; anything else past its due date is
// Overdue. Callers persist the result whenever it differs from the stored
// status.
func DeriveLoanStatus(loan *LoanRecord, now time.Time) string {
	if loan.Status == LoanStatusReturned {
		return LoanStatusReturned
	}
	if loan.DueDate.Before(now) {
		return LoanStatusOverdue
	}
	return LoanStatusActive
}

// Open reports whether the loan still holds its book (Active or Overdue).
func (l *LoanRecord) Open() bool {
	return l.Status != LoanStatusReturned
}

// LoanBook is the slice of the referenced book carried on loan responses.
// AuthorName is resolved through the book's author.
type LoanBook struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Title      string             `bson:"title" json:"title"`
	ISBN       string             `bson:"isbn" json:"isbn"`
	AuthorID   primitive.ObjectID `bson:"author" json:"author"`
	AuthorName string             `bson:"authorName,omitempty" json:"authorName,omitempty"`
}

type LoanWithBook struct {
	LoanRecord `bson:",inline"`
	Book       *LoanBook `bson:"bookDoc,omitempty" json:"bookDetails,omitempty"`
}

// LoanStats is the /api/loans/stats payload.
type LoanStats struct {
	Summary             LoanSummary `json:"summary"`
	AverageLoanDuration float64     `json:"averageLoanDuration"`
}

type LoanSummary struct {
	TotalLoans    int `bson:"totalLoans" json:"totalLoans"`
	ActiveLoans   int `bson:"activeLoans" json:"activeLoans"`
	ReturnedLoans int `bson:"returnedLoans" json:"returnedLoans"`
	OverdueLoans  int `bson:"overdueLoans" json:"overdueLoans"`
}
