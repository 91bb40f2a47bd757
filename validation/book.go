package validation

import (
	"regexp"

	"github.com/kmoran/personal-library/models"
)

var (
	isbn10Pattern = regexp.MustCompile(`^(?:\d[- ]?){9}[\dXx]$`)
	isbn13Pattern = regexp.MustCompile(`^(?:\d[- ]?){13}$`)
)

type BookCreate struct {
	Title           string       `json:"title" validate:"required,max=200"`
	Author          string       `json:"author" validate:"required"`
	Genre           string       `json:"genre" validate:"required"`
	ISBN            string       `json:"isbn" validate:"required"`
	PublicationDate *models.Date `json:"publicationDate"`
	Pages           int          `json:"pages" validate:"required,min=1"`
	Format          string       `json:"format" validate:"required,oneof='Hardcover' 'Paperback' 'E-book' 'Audiobook'"`
	PersonalRating  *int         `json:"personalRating" validate:"omitempty,min=1,max=5"`
	ReadStatus      string       `json:"readStatus" validate:"omitempty,oneof='Read' 'Currently Reading' 'To Read'"`
	Notes           string       `json:"notes" validate:"omitempty,max=1000"`
}

type BookUpdate struct {
	Title           *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Author          *string      `json:"author"`
	Genre           *string      `json:"genre" validate:"omitempty,min=1"`
	ISBN            *string      `json:"isbn"`
	PublicationDate *models.Date `json:"publicationDate"`
	Pages           *int         `json:"pages" validate:"omitempty,min=1"`
	Format          *string      `json:"format" validate:"omitempty,oneof='Hardcover' 'Paperback' 'E-book' 'Audiobook'"`
	PersonalRating  *int         `json:"personalRating" validate:"omitempty,min=1,max=5"`
	ReadStatus      *string      `json:"readStatus" validate:"omitempty,oneof='Read' 'Currently Reading' 'To Read'"`
	Notes           *string      `json:"notes" validate:"omitempty,max=1000"`
}

func ValidateBookCreate(in *BookCreate) []string {
	msgs := check(in)
	if in.Author != "" && !isObjectID(in.Author) {
		msgs = append(msgs, "author must be a valid author id")
	}
	if in.ISBN != "" && !validISBN(in.ISBN) {
		msgs = append(msgs, "isbn must be a valid ISBN-10 or ISBN-13")
	}
	if in.PublicationDate == nil || in.PublicationDate.Time.IsZero() {
		msgs = append(msgs, "publicationDate is required")
	}
	return msgs
}

func ValidateBookUpdate(in *BookUpdate) []string {
	msgs := check(in)
	if in.Author != nil && !isObjectID(*in.Author) {
		msgs = append(msgs, "author must be a valid author id")
	}
	if in.ISBN != nil && !validISBN(*in.ISBN) {
		msgs = append(msgs, "isbn must be a valid ISBN-10 or ISBN-13")
	}
	// An empty date string decodes to a zero Date, which must not reach the
	// document.
	if in.PublicationDate != nil && in.PublicationDate.Time.IsZero() {
		msgs = append(msgs, "publicationDate must be a valid date")
	}
	return msgs
}

func validISBN(isbn string) bool {
	return isbn10Pattern.MatchString(isbn) || isbn13Pattern.MatchString(isbn)
}
