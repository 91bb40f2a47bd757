package store

import (
	"context"
	"time"

	"github.com/kmoran/personal-library/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookFilter struct {
	Genre       string
	ReadStatus  string
	IsAvailable *bool
	Search      string
	MinRating   int
	Page        int
	Limit       int
}

func (f BookFilter) query() bson.M {
	q := bson.M{}
	if f.Genre != "" {
		q["genre"] = f.Genre
	}
	if f.ReadStatus != "" {
		q["readStatus"] = f.ReadStatus
	}
	if f.IsAvailable != nil {
		q["isAvailable"] = *f.IsAvailable
	}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	if f.MinRating > 0 {
		q["personalRating"] = bson.M{"$gte": f.MinRating}
	}
	return q
}

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	res, err := db.Books().InsertOne(ctx, book)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// bookAuthorLookup joins the author summary onto book documents.
func bookAuthorLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "authors",
			"localField":   "author",
			"foreignField": "_id",
			"as":           "authorDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$authorDoc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"authorDoc.biography": 0,
			"authorDoc.genres":    0,
			"authorDoc.notes":     0,
		}}},
	}
}

// ListBooks returns a page of books with their author summaries joined in,
// plus the unpaginated total.
func (db *DB) ListBooks(ctx context.Context, filter BookFilter) ([]models.BookWithAuthor, int64, error) {
	q := filter.query()
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: q}},
		{{Key: "$sort", Value: bson.M{"title": 1}}},
		{{Key: "$skip", Value: (filter.Page - 1) * filter.Limit}},
		{{Key: "$limit", Value: filter.Limit}},
	}, bookAuthorLookup()...)
	cur, err := db.Books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	books := []models.BookWithAuthor{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, 0, err
	}
	total, err := db.Books().CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// BookWithAuthorByID returns a single book with its author summary joined
// in, or nil when no book matches.
func (db *DB) BookWithAuthorByID(ctx context.Context, id primitive.ObjectID) (*models.BookWithAuthor, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, bookAuthorLookup()...)
	cur, err := db.Books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []models.BookWithAuthor{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, nil
	}
	return &books[0], nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Book, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var book models.Book
	err := db.Books().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Books().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ClaimBook atomically flips an available book to unavailable. A false
// return means the book was already on loan, so two concurrent loan
// requests cannot both win.
func (db *DB) ClaimBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Books().UpdateOne(ctx,
		bson.M{"_id": id, "isAvailable": true},
		bson.M{"$set": bson.M{"isAvailable": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ReleaseBook marks a book available again after a loan closes.
func (db *DB) ReleaseBook(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Books().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isAvailable": true, "updatedAt": time.Now()}},
	)
	return err
}

// BookStats aggregates collection totals and the genre distribution.
func (db *DB) BookStats(ctx context.Context) (*models.BookStats, error) {
	cur, err := db.Books().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalBooks": bson.M{"$sum": 1},
			"avgRating":  bson.M{"$avg": "$personalRating"},
			"readBooks": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$readStatus", models.ReadStatusRead}}, 1, 0},
			}},
			"currentlyReading": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$readStatus", models.ReadStatusReading}}, 1, 0},
			}},
			"toRead": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$readStatus", models.ReadStatusToRead}}, 1, 0},
			}},
			"avgPages": bson.M{"$avg": "$pages"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	summaries := []models.BookSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}

	cur, err = db.Books().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$genre", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	genres := []models.GenreCount{}
	if err := cur.All(ctx, &genres); err != nil {
		return nil, err
	}

	stats := &models.BookStats{Genres: genres}
	if len(summaries) > 0 {
		stats.Summary = summaries[0]
	}
	return stats, nil
}
