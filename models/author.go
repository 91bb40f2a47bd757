package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Author struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Biography   string             `bson:"biography,omitempty" json:"biography,omitempty"`
	BirthDate   *time.Time         `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	DeathDate   *time.Time         `bson:"deathDate,omitempty" json:"deathDate,omitempty"`
	Nationality string             `bson:"nationality,omitempty" json:"nationality,omitempty"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	Genres      []string           `bson:"genres,omitempty" json:"genres,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AuthorBook is the trimmed book shape embedded in a single-author response.
type AuthorBook struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	PublicationDate time.Time          `bson:"publicationDate" json:"publicationDate"`
	Genre           string             `bson:"genre" json:"genre"`
	PersonalRating  *int               `bson:"personalRating,omitempty" json:"personalRating,omitempty"`
	ReadStatus      string             `bson:"readStatus" json:"readStatus"`
}

// AuthorWithBooks is the GET /api/authors/:id payload.
type AuthorWithBooks struct {
	Author `bson:",inline"`
	Books  []AuthorBook `json:"books"`
}

// AuthorStats is the /api/authors/stats payload.
type AuthorStats struct {
	Nationalities      []NationalityCount `bson:"nationalities" json:"nationalities"`
	AuthorsByBookCount []AuthorBookCount  `bson:"authorsByBookCount" json:"authorsByBookCount"`
}

type NationalityCount struct {
	Nationality string `bson:"_id" json:"nationality"`
	Count       int    `bson:"count" json:"count"`
}

type AuthorBookCount struct {
	Name      string `bson:"name" json:"name"`
	BookCount int    `bson:"bookCount" json:"bookCount"`
}
