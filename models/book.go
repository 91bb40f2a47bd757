package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book formats.
const (
	FormatHardcover = "Hardcover"
	FormatPaperback = "Paperback"
	FormatEbook     = "E-book"
	FormatAudiobook = "Audiobook"
)

// Read statuses.
const (
	ReadStatusRead    = "Read"
	ReadStatusReading = "Currently Reading"
	ReadStatusToRead  = "To Read"
)

type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	AuthorID        primitive.ObjectID `bson:"author" json:"author"`
	Genre           string             `bson:"genre" json:"genre"`
	ISBN            string             `bson:"isbn" json:"isbn"`
	PublicationDate time.Time          `bson:"publicationDate" json:"publicationDate"`
	Pages           int                `bson:"pages" json:"pages"`
	Format          string             `bson:"format" json:"format"`
	PersonalRating  *int               `bson:"personalRating,omitempty" json:"personalRating,omitempty"`
	ReadStatus      string             `bson:"readStatus" json:"readStatus"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BookAuthor is the embedded author shape on list/get book responses.
type BookAuthor struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Nationality string             `bson:"nationality,omitempty" json:"nationality,omitempty"`
}

// BookWithAuthor joins a book with its author summary.
type BookWithAuthor struct {
	Book   `bson:",inline"`
	Author *BookAuthor `bson:"authorDoc,omitempty" json:"authorDetails,omitempty"`
}

// BookStats is the /api/books/stats payload.
type BookStats struct {
	Summary BookSummary  `json:"summary"`
	Genres  []GenreCount `json:"genres"`
}

type BookSummary struct {
	TotalBooks       int     `bson:"totalBooks" json:"totalBooks"`
	AvgRating        float64 `bson:"avgRating" json:"avgRating"`
	ReadBooks        int     `bson:"readBooks" json:"readBooks"`
	CurrentlyReading int     `bson:"currentlyReading" json:"currentlyReading"`
	ToRead           int     `bson:"toRead" json:"toRead"`
	AvgPages         float64 `bson:"avgPages" json:"avgPages"`
}

type GenreCount struct {
	Genre string `bson:"_id" json:"genre"`
	Count int    `bson:"count" json:"count"`
}
