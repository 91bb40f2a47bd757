package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/store"
	"github.com/kmoran/personal-library/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookStore is satisfied by *store.DB.
type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	ListBooks(ctx context.Context, filter store.BookFilter) ([]models.BookWithAuthor, int64, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	BookWithAuthorByID(ctx context.Context, id primitive.ObjectID) (*models.BookWithAuthor, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Book, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountOpenLoansForBook(ctx context.Context, bookID primitive.ObjectID) (int64, error)
	BookStats(ctx context.Context) (*models.BookStats, error)
}

type BooksHandler struct {
	DB BookStore
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePagination(r)
	filter := store.BookFilter{
		Genre:      q.Get("genre"),
		ReadStatus: q.Get("readStatus"),
		Search:     q.Get("search"),
		Page:       page,
		Limit:      limit,
	}
	if v := q.Get("isAvailable"); v != "" {
		avail := v == "true"
		filter.IsAvailable = &avail
	}
	if n, err := strconv.Atoi(q.Get("minRating")); err == nil {
		filter.MinRating = n
	}
	books, total, err := h.DB.ListBooks(r.Context(), filter)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondList(w, books, len(books), total, page, limit)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}
	book, err := h.DB.BookWithAuthorByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if book == nil {
		respondError(w, http.StatusNotFound, "Book not found")
		return
	}
	respondData(w, http.StatusOK, book)
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.BookCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateBookCreate(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	authorID, _ := primitive.ObjectIDFromHex(in.Author)
	readStatus := in.ReadStatus
	if readStatus == "" {
		readStatus = models.ReadStatusToRead
	}
	book := &models.Book{
		Title:           in.Title,
		AuthorID:        authorID,
		Genre:           in.Genre,
		ISBN:            in.ISBN,
		PublicationDate: in.PublicationDate.Time,
		Pages:           in.Pages,
		Format:          in.Format,
		PersonalRating:  in.PersonalRating,
		ReadStatus:      readStatus,
		IsAvailable:     true,
		Notes:           in.Notes,
	}
	id, err := h.DB.InsertBook(r.Context(), book)
	if err != nil {
		if store.IsDuplicateKey(err) {
			respondError(w, http.StatusBadRequest, "A book with this ISBN already exists")
			return
		}
		respondServerError(w, err)
		return
	}
	book.ID = id
	respondData(w, http.StatusCreated, book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}
	var in validation.BookUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateBookUpdate(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	// isAvailable is deliberately absent from the payload: only the loan
	// lifecycle mutates it.
	set := bson.M{}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Author != nil {
		authorID, _ := primitive.ObjectIDFromHex(*in.Author)
		set["author"] = authorID
	}
	if in.Genre != nil {
		set["genre"] = *in.Genre
	}
	if in.ISBN != nil {
		set["isbn"] = *in.ISBN
	}
	if in.PublicationDate != nil {
		set["publicationDate"] = in.PublicationDate.Time
	}
	if in.Pages != nil {
		set["pages"] = *in.Pages
	}
	if in.Format != nil {
		set["format"] = *in.Format
	}
	if in.PersonalRating != nil {
		set["personalRating"] = *in.PersonalRating
	}
	if in.ReadStatus != nil {
		set["readStatus"] = *in.ReadStatus
	}
	if in.Notes != nil {
		set["notes"] = *in.Notes
	}
	book, err := h.DB.UpdateBook(r.Context(), id, set)
	if err != nil {
		if store.IsDuplicateKey(err) {
			respondError(w, http.StatusBadRequest, "A book with this ISBN already exists")
			return
		}
		respondServerError(w, err)
		return
	}
	if book == nil {
		respondError(w, http.StatusNotFound, "Book not found")
		return
	}
	respondData(w, http.StatusOK, book)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if book == nil {
		respondError(w, http.StatusNotFound, "Book not found")
		return
	}
	open, err := h.DB.CountOpenLoansForBook(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if open > 0 {
		respondError(w, http.StatusBadRequest, "Cannot delete a book with an open loan. Return or delete the loan first.")
		return
	}
	if _, err := h.DB.DeleteBook(r.Context(), id); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, struct{}{})
}

func (h *BooksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DB.BookStats(r.Context())
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
