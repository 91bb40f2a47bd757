package validation

import (
	"testing"
	"time"

	"github.com/kmoran/personal-library/models"
)

func date(t *testing.T, s string) *models.Date {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return &models.Date{Time: parsed}
}

func hasMessage(msgs []string, want string) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}

func validBookCreate(t *testing.T) BookCreate {
	return BookCreate{
		Title:           "The Dispossessed",
		Author:          "507f1f77bcf86cd799439011",
		Genre:           "Science Fiction",
		ISBN:            "0060512756",
		PublicationDate: date(t, "1974-05-01"),
		Pages:           341,
		Format:          models.FormatPaperback,
	}
}

func TestValidateBookCreateOK(t *testing.T) {
	in := validBookCreate(t)
	if msgs := ValidateBookCreate(&in); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
}

func TestValidateBookCreateRatingRange(t *testing.T) {
	in := validBookCreate(t)
	rating := 6
	in.PersonalRating = &rating
	msgs := ValidateBookCreate(&in)
	if !hasMessage(msgs, "personalRating cannot be more than 5") {
		t.Fatalf("expected rating violation, got %v", msgs)
	}

	rating = 0
	msgs = ValidateBookCreate(&in)
	if !hasMessage(msgs, "personalRating must be at least 1") {
		t.Fatalf("expected rating violation, got %v", msgs)
	}
}

func TestValidateBookCreateCollectsAllViolations(t *testing.T) {
	in := BookCreate{Format: "Vinyl"}
	msgs := ValidateBookCreate(&in)
	for _, want := range []string{
		"title is required",
		"author is required",
		"genre is required",
		"isbn is required",
		"pages is required",
		"format must be one of: Hardcover, Paperback, E-book, Audiobook",
		"publicationDate is required",
	} {
		if !hasMessage(msgs, want) {
			t.Fatalf("missing %q in %v", want, msgs)
		}
	}
}

func TestValidateBookCreateBadReferences(t *testing.T) {
	in := validBookCreate(t)
	in.Author = "not-an-id"
	in.ISBN = "abc"
	msgs := ValidateBookCreate(&in)
	if !hasMessage(msgs, "author must be a valid author id") {
		t.Fatalf("expected author id violation, got %v", msgs)
	}
	if !hasMessage(msgs, "isbn must be a valid ISBN-10 or ISBN-13") {
		t.Fatalf("expected isbn violation, got %v", msgs)
	}
}

func TestValidateBookUpdatePartial(t *testing.T) {
	// An empty update is fine; only provided fields are checked.
	if msgs := ValidateBookUpdate(&BookUpdate{}); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
	bad := "Vinyl"
	msgs := ValidateBookUpdate(&BookUpdate{Format: &bad})
	if !hasMessage(msgs, "format must be one of: Hardcover, Paperback, E-book, Audiobook") {
		t.Fatalf("expected format violation, got %v", msgs)
	}
}

func TestValidateBookUpdateZeroDate(t *testing.T) {
	// `"publicationDate": ""` decodes to a zero Date, not a nil one; it must
	// be rejected rather than written to the document.
	msgs := ValidateBookUpdate(&BookUpdate{PublicationDate: &models.Date{}})
	if !hasMessage(msgs, "publicationDate must be a valid date") {
		t.Fatalf("expected date violation, got %v", msgs)
	}

	if msgs := ValidateBookUpdate(&BookUpdate{PublicationDate: date(t, "1974-05-01")}); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
}

func TestValidISBN(t *testing.T) {
	for _, ok := range []string{"0306406152", "030-640615-2", "9780306406157", "043942089X"} {
		if !validISBN(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "12345", "978-0-306-40615-7-9-9"} {
		if validISBN(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}
