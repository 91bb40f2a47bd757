package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/store"
	"github.com/kmoran/personal-library/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorStore is satisfied by *store.DB.
type AuthorStore interface {
	InsertAuthor(ctx context.Context, author *models.Author) (primitive.ObjectID, error)
	ListAuthors(ctx context.Context, filter store.AuthorFilter) ([]models.Author, int64, error)
	AuthorByID(ctx context.Context, id primitive.ObjectID) (*models.Author, error)
	BooksByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.AuthorBook, error)
	UpdateAuthor(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Author, error)
	DeleteAuthor(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountBooksByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
	AuthorStats(ctx context.Context) (*models.AuthorStats, error)
}

type AuthorsHandler struct {
	DB AuthorStore
}

func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := store.AuthorFilter{
		Nationality: r.URL.Query().Get("nationality"),
		Search:      r.URL.Query().Get("search"),
		Page:        page,
		Limit:       limit,
	}
	authors, total, err := h.DB.ListAuthors(r.Context(), filter)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondList(w, authors, len(authors), total, page, limit)
}

func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid author ID format")
		return
	}
	author, err := h.DB.AuthorByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if author == nil {
		respondError(w, http.StatusNotFound, "Author not found")
		return
	}
	books, err := h.DB.BooksByAuthor(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, models.AuthorWithBooks{Author: *author, Books: books})
}

func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.AuthorCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateAuthorCreate(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	author := &models.Author{
		Name:        in.Name,
		Biography:   in.Biography,
		Nationality: in.Nationality,
		Website:     in.Website,
		Genres:      in.Genres,
		Notes:       in.Notes,
	}
	if in.BirthDate != nil {
		t := in.BirthDate.Time
		author.BirthDate = &t
	}
	if in.DeathDate != nil {
		t := in.DeathDate.Time
		author.DeathDate = &t
	}
	id, err := h.DB.InsertAuthor(r.Context(), author)
	if err != nil {
		respondServerError(w, err)
		return
	}
	author.ID = id
	respondData(w, http.StatusCreated, author)
}

func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid author ID format")
		return
	}
	var in validation.AuthorUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validation.ValidateAuthorUpdate(&in); len(msgs) > 0 {
		respondErrors(w, http.StatusBadRequest, msgs)
		return
	}
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Biography != nil {
		set["biography"] = *in.Biography
	}
	if in.BirthDate != nil {
		set["birthDate"] = in.BirthDate.Time
	}
	if in.DeathDate != nil {
		set["deathDate"] = in.DeathDate.Time
	}
	if in.Nationality != nil {
		set["nationality"] = *in.Nationality
	}
	if in.Website != nil {
		set["website"] = *in.Website
	}
	if in.Genres != nil {
		set["genres"] = in.Genres
	}
	if in.Notes != nil {
		set["notes"] = *in.Notes
	}
	author, err := h.DB.UpdateAuthor(r.Context(), id, set)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if author == nil {
		respondError(w, http.StatusNotFound, "Author not found")
		return
	}
	respondData(w, http.StatusOK, author)
}

func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid author ID format")
		return
	}
	author, err := h.DB.AuthorByID(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if author == nil {
		respondError(w, http.StatusNotFound, "Author not found")
		return
	}
	bookCount, err := h.DB.CountBooksByAuthor(r.Context(), id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if bookCount > 0 {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot delete author with %d books. Remove the books first or reassign them to another author.", bookCount))
		return
	}
	if _, err := h.DB.DeleteAuthor(r.Context(), id); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, struct{}{})
}

func (h *AuthorsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DB.AuthorStats(r.Context())
	if err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
