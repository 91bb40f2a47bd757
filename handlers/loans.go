package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/store"
	"github.com/kmoran/personal-library/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoanStore is satisfied by *store.DB. It spans loans and the book
// availability flag, since the lifecycle couples the two.
type LoanStore interface {
	InsertLoan(ctx context.Context, loan *models.LoanRecord) (primitive.ObjectID, error)
	ListLoans(ctx context.Context, filter store.LoanFilter) ([]models.LoanWithBook, int64, error)
	LoanByID(ctx context.Context, id primitive.ObjectID) (*models.LoanRecord, error)
	LoanWithBookByID(ctx context.Context, id primitive.ObjectID) (*models.LoanWithBook, error)
	UpdateLoan(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.LoanRecord, error)
	SetLoanStatus(ctx context.Context, id primitive.ObjectID, status string) error
	DeleteLoan(ctx context.Context, id primitive.ObjectID) (bool, error)
	LoanStats(ctx context.Context) (*models.LoanStats, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	ClaimBook(ctx context.Context, id primitive.ObjectID) (bool, error)
	ReleaseBook(ctx context.Context, id primitive.ObjectID) error
}

type LoansHandler struct {
	DB LoanStore
	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

func (h *LoansHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// reconcile applies the derived Overdue transition and persists it before
// the loan is returned to the client.
func (h *LoansHandler) reconcile(ctx context.Context, loan *models.LoanRecord) error {
	derived := models.DeriveLoanStatus(loan, h.now())
	if derived == loan.Status {
		return nil
	}
	if err := h.DB.SetLoanStatus(ctx, loan.ID, derived); err != nil {
		return err
	}
	loan.Status = derived
	return nil
}

func (h *LoansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.LoanCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateLoanCreate(&in, h.now()); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	bookID, _ := primitive.ObjectIDFromHex(in.Book)
	book, err := h.DB.BookByID(r.Context(), bookID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if book == nil {
		respondError(w, http.StatusNotFound, "Book not found")
		return
	}
	// Atomic claim: if another request took the book between the read
	// above and here, this reports the conflict instead of double-lending.
	claimed, err := h.DB.ClaimBook(r.Context(), bookID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if !claimed {
		respondError(w, http.StatusBadRequest, "Book is not available for loan")
		return
	}
	loan := &models.LoanRecord{
		BookID:        bookID,
		BorrowerName:  in.BorrowerName,
		BorrowerEmail: in.BorrowerEmail,
		LoanDate:      h.now(),
		DueDate:       in.DueDate.Time,
		Status:        models.LoanStatusActive,
		Notes:         in.Notes,
	}
	id, err := h.DB.InsertLoan(r.Context(), loan)
	if err != nil {
		// Give the book back rather than stranding it unavailable.
		_ = h.DB.ReleaseBook(r.Context(), bookID)
		respondServerError(w, err)
		return
	}
	loan.ID = id
	respondData(w, http.StatusCreated, loan)
}

func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePagination(r)
	filter := store.LoanFilter{
		Status: q.Get("status"),
		Email:  q.Get("email"),
		Page:   page,
		Limit:  limit,
	}
	if v := q.Get("bookId"); v != "" {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.BookID = &id
		}
	}
	if from, err := time.Parse("2006-01-02", q.Get("fromDate")); err == nil {
		if to, err := time.Parse("2006-01-02", q.Get("toDate")); err == nil {
			filter.FromDate = &from
			filter.ToDate = &to
		}
	}
	loans, total, err := h.DB.ListLoans(r.Context(), filter)
	if err != nil {
		respondServerError(w, err)
		return
	}
	for i := range loans {
		if err := h.reconcile(r.Context(), &loans[i].LoanRecord); err != nil {
			respondServerError(w, err)
			return
		}
	}
	respondList(w, loans, len(loans), total, page, limit)
}

func (h *LoansHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid loan ID format")
		return
	}
	loan, err := h.DB.LoanWithBookByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if loan == nil {
		respondError(w, http.StatusNotFound, "Loan record not found")
		return
	}
	if err := h.reconcile(r.Context(), &loan.LoanRecord); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, loan)
}

func (h *LoansHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid loan ID format")
		return
	}
	var in validation.LoanUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateLoanUpdate(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	loan, err := h.DB.LoanByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if loan == nil {
		respondError(w, http.StatusNotFound, "Loan record not found")
		return
	}
	if err := h.reconcile(r.Context(), loan); err != nil {
		respondServerError(w, err)
		return
	}

	set := bson.M{}
	if in.BorrowerName != nil {
		set["borrowerName"] = *in.BorrowerName
	}
	if in.BorrowerEmail != nil {
		set["borrowerEmail"] = *in.BorrowerEmail
	}
	if in.DueDate != nil {
		set["dueDate"] = in.DueDate.Time
	}
	if in.ReturnDate != nil {
		set["returnDate"] = in.ReturnDate.Time
	}
	if in.Notes != nil {
		set["notes"] = *in.Notes
	}
	releaseBook := false
	if in.Status != nil {
		set["status"] = *in.Status
		if *in.Status == models.LoanStatusReturned && loan.Open() {
			// Returning: stamp the return date if the caller left it out.
			if in.ReturnDate == nil {
				set["returnDate"] = h.now()
			}
			releaseBook = true
		}
	}
	updated, err := h.DB.UpdateLoan(r.Context(), id, set)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Loan record not found")
		return
	}
	// The Returned status is persisted before the book is freed, so a
	// failure between the two writes cannot leave an open loan holding an
	// available book.
	if releaseBook {
		if err := h.DB.ReleaseBook(r.Context(), loan.BookID); err != nil {
			respondServerError(w, err)
			return
		}
	}
	respondData(w, http.StatusOK, updated)
}

func (h *LoansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid loan ID format")
		return
	}
	loan, err := h.DB.LoanByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if loan == nil {
		respondError(w, http.StatusNotFound, "Loan record not found")
		return
	}
	// Deleting an open loan hands the book back.
	if loan.Open() {
		if err := h.DB.ReleaseBook(r.Context(), loan.BookID); err != nil {
			respondServerError(w, err)
			return
		}
	}
	if _, err := h.DB.DeleteLoan(r.Context(), id); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, struct{}{})
}

func (h *LoansHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DB.LoanStats(r.Context())
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
