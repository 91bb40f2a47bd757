package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeBookStore struct {
	inserted   []*models.Book
	listFilter store.BookFilter
	listBooks  []models.BookWithAuthor
	listTotal  int64
	books      map[primitive.ObjectID]*models.Book
	authors    map[primitive.ObjectID]*models.BookAuthor // keyed by book id
	openLoans  map[primitive.ObjectID]int64
	deleted    []primitive.ObjectID
}

func (f *fakeBookStore) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	f.inserted = append(f.inserted, book)
	return primitive.NewObjectID(), nil
}

func (f *fakeBookStore) ListBooks(_ context.Context, filter store.BookFilter) ([]models.BookWithAuthor, int64, error) {
	f.listFilter = filter
	return f.listBooks, f.listTotal, nil
}

func (f *fakeBookStore) BookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	return f.books[id], nil
}

func (f *fakeBookStore) BookWithAuthorByID(_ context.Context, id primitive.ObjectID) (*models.BookWithAuthor, error) {
	book := f.books[id]
	if book == nil {
		return nil, nil
	}
	return &models.BookWithAuthor{Book: *book, Author: f.authors[id]}, nil
}

func (f *fakeBookStore) UpdateBook(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Book, error) {
	book := f.books[id]
	if book == nil {
		return nil, nil
	}
	if v, ok := set["title"].(string); ok {
		book.Title = v
	}
	if v, ok := set["readStatus"].(string); ok {
		book.ReadStatus = v
	}
	cp := *book
	return &cp, nil
}

func (f *fakeBookStore) DeleteBook(_ context.Context, id primitive.ObjectID) (bool, error) {
	if f.books[id] == nil {
		return false, nil
	}
	delete(f.books, id)
	f.deleted = append(f.deleted, id)
	return true, nil
}

func (f *fakeBookStore) CountOpenLoansForBook(_ context.Context, bookID primitive.ObjectID) (int64, error) {
	return f.openLoans[bookID], nil
}

func (f *fakeBookStore) BookStats(_ context.Context) (*models.BookStats, error) {
	return &models.BookStats{}, nil
}

func booksRouter(fake *fakeBookStore) *chi.Mux {
	h := &BooksHandler{DB: fake}
	r := chi.NewRouter()
	r.Get("/api/books", h.List)
	r.Post("/api/books", h.Create)
	r.Get("/api/books/{id}", h.Get)
	r.Put("/api/books/{id}", h.Update)
	r.Delete("/api/books/{id}", h.Delete)
	return r
}

func TestCreateBookDefaults(t *testing.T) {
	fake := &fakeBookStore{}
	r := booksRouter(fake)

	body := `{
		"title": "The Fifth Season",
		"author": "` + primitive.NewObjectID().Hex() + `",
		"genre": "Fantasy",
		"isbn": "978-0-316-22929-6",
		"publicationDate": "2015-08-04",
		"pages": 512,
		"format": "Paperback"
	}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/books", strings.NewReader(body)))

	if w.Code != 201 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(fake.inserted) != 1 {
		t.Fatalf("inserted %d books, want 1", len(fake.inserted))
	}
	book := fake.inserted[0]
	if book.ReadStatus != models.ReadStatusToRead {
		t.Fatalf("readStatus = %q, want %q", book.ReadStatus, models.ReadStatusToRead)
	}
	if !book.IsAvailable {
		t.Fatal("new book should be available")
	}
}

func TestCreateBookRejectsBadRating(t *testing.T) {
	fake := &fakeBookStore{}
	r := booksRouter(fake)

	body := `{
		"title": "The Fifth Season",
		"author": "` + primitive.NewObjectID().Hex() + `",
		"genre": "Fantasy",
		"isbn": "978-0-316-22929-6",
		"publicationDate": "2015-08-04",
		"pages": 512,
		"format": "Paperback",
		"personalRating": 6
	}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/books", strings.NewReader(body)))

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	msgs := errorMessages(t, decodeEnvelope(t, w))
	if !containsMessage(msgs, "personalRating cannot be more than 5") {
		t.Fatalf("missing rating violation, got %v", msgs)
	}
	if len(fake.inserted) != 0 {
		t.Fatal("invalid book must not be inserted")
	}
}

func TestListBooksFilterAndPagination(t *testing.T) {
	fake := &fakeBookStore{
		listBooks: []models.BookWithAuthor{{Book: models.Book{Title: "Dune"}}},
		listTotal: 3,
	}
	r := booksRouter(fake)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/books?genre=Fantasy&isAvailable=true&page=2&limit=1", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	if fake.listFilter.Genre != "Fantasy" || fake.listFilter.Page != 2 || fake.listFilter.Limit != 1 {
		t.Fatalf("filter not passed through: %+v", fake.listFilter)
	}
	if fake.listFilter.IsAvailable == nil || !*fake.listFilter.IsAvailable {
		t.Fatal("isAvailable filter not parsed")
	}
	env := decodeEnvelope(t, w)
	if env.Count != 1 || env.Total != 3 {
		t.Fatalf("count/total = %d/%d, want 1/3", env.Count, env.Total)
	}
	if env.Pagination == nil || env.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", env.Pagination)
	}
}

func TestGetBookEmbedsAuthor(t *testing.T) {
	id := primitive.NewObjectID()
	authorID := primitive.NewObjectID()
	fake := &fakeBookStore{
		books: map[primitive.ObjectID]*models.Book{
			id: {ID: id, Title: "Dune", AuthorID: authorID},
		},
		authors: map[primitive.ObjectID]*models.BookAuthor{
			id: {ID: authorID, Name: "Frank Herbert", Nationality: "American"},
		},
	}
	r := booksRouter(fake)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/books/"+id.Hex(), nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got models.BookWithAuthor
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &got); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if got.Title != "Dune" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Author == nil || got.Author.Name != "Frank Herbert" || got.Author.Nationality != "American" {
		t.Fatalf("author not embedded: %+v", got.Author)
	}
}

func TestGetBookBadID(t *testing.T) {
	r := booksRouter(&fakeBookStore{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/books/not-an-id", nil))

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	msgs := errorMessages(t, decodeEnvelope(t, w))
	if !containsMessage(msgs, "Invalid book ID format") {
		t.Fatalf("unexpected error: %v", msgs)
	}
}

func TestDeleteBookWithOpenLoan(t *testing.T) {
	id := primitive.NewObjectID()
	fake := &fakeBookStore{
		books:     map[primitive.ObjectID]*models.Book{id: {ID: id, Title: "Dune"}},
		openLoans: map[primitive.ObjectID]int64{id: 1},
	}
	r := booksRouter(fake)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/books/"+id.Hex(), nil))

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(fake.deleted) != 0 {
		t.Fatal("book with an open loan must not be deleted")
	}

	// With the loan cleared, the delete goes through.
	fake.openLoans[id] = 0
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/books/"+id.Hex(), nil))
	if w.Code != 200 || len(fake.deleted) != 1 {
		t.Fatalf("status = %d, deleted %d", w.Code, len(fake.deleted))
	}
}

func TestUpdateBookEmptyDate(t *testing.T) {
	id := primitive.NewObjectID()
	fake := &fakeBookStore{
		books: map[primitive.ObjectID]*models.Book{id: {ID: id, Title: "Dune"}},
	}
	r := booksRouter(fake)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PUT", "/api/books/"+id.Hex(), strings.NewReader(`{"publicationDate": ""}`)))

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	msgs := errorMessages(t, decodeEnvelope(t, w))
	if !containsMessage(msgs, "publicationDate must be a valid date") {
		t.Fatalf("unexpected error: %v", msgs)
	}
}

func TestUpdateBookIgnoresAvailability(t *testing.T) {
	id := primitive.NewObjectID()
	fake := &fakeBookStore{
		books: map[primitive.ObjectID]*models.Book{id: {ID: id, Title: "Dune", IsAvailable: false}},
	}
	r := booksRouter(fake)

	// isAvailable in the payload is not part of the update schema and must
	// not flip the flag.
	body := `{"title": "Dune Messiah", "isAvailable": true}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PUT", "/api/books/"+id.Hex(), strings.NewReader(body)))

	if w.Code != 200 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if fake.books[id].Title != "Dune Messiah" {
		t.Fatalf("title = %q", fake.books[id].Title)
	}
	if fake.books[id].IsAvailable {
		t.Fatal("update must not change availability")
	}

	env := decodeEnvelope(t, w)
	var got models.Book
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if got.IsAvailable {
		t.Fatal("response reports the book available")
	}
}
