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

type AuthorFilter struct {
	Nationality string
	Search      string
	Page        int
	Limit       int
}

func (f AuthorFilter) query() bson.M {
	q := bson.M{}
	if f.Nationality != "" {
		q["nationality"] = f.Nationality
	}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	return q
}

func (db *DB) InsertAuthor(ctx context.Context, author *models.Author) (primitive.ObjectID, error) {
	now := time.Now()
	author.CreatedAt = now
	author.UpdatedAt = now
	res, err := db.Authors().InsertOne(ctx, author)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ListAuthors(ctx context.Context, filter AuthorFilter) ([]models.Author, int64, error) {
	q := filter.query()
	opts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cur, err := db.Authors().Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	authors := []models.Author{}
	if err := cur.All(ctx, &authors); err != nil {
		return nil, 0, err
	}
	total, err := db.Authors().CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (db *DB) AuthorByID(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	var author models.Author
	err := db.Authors().FindOne(ctx, bson.M{"_id": id}).Decode(&author)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// BooksByAuthor returns the trimmed book summaries embedded in a
// single-author response.
func (db *DB) BooksByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.AuthorBook, error) {
	opts := options.Find().SetProjection(bson.M{
		"title":           1,
		"publicationDate": 1,
		"genre":           1,
		"personalRating":  1,
		"readStatus":      1,
	})
	cur, err := db.Books().Find(ctx, bson.M{"author": authorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []models.AuthorBook{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (db *DB) UpdateAuthor(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Author, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var author models.Author
	err := db.Authors().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&author)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (db *DB) DeleteAuthor(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Authors().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (db *DB) CountBooksByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	return db.Books().CountDocuments(ctx, bson.M{"author": authorID})
}

// AuthorStats aggregates the nationality distribution and the five authors
// with the most books.
func (db *DB) AuthorStats(ctx context.Context) (*models.AuthorStats, error) {
	cur, err := db.Authors().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$nationality", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	nationalities := []models.NationalityCount{}
	if err := cur.All(ctx, &nationalities); err != nil {
		return nil, err
	}

	cur, err = db.Books().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$author", "bookCount": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"bookCount": -1}}},
		{{Key: "$limit", Value: 5}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "authors",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "authorDetails",
		}}},
		{{Key: "$unwind", Value: "$authorDetails"}},
		{{Key: "$project", Value: bson.M{
			"_id":       0,
			"name":      "$authorDetails.name",
			"bookCount": 1,
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	byCount := []models.AuthorBookCount{}
	if err := cur.All(ctx, &byCount); err != nil {
		return nil, err
	}

	return &models.AuthorStats{
		Nationalities:      nationalities,
		AuthorsByBookCount: byCount,
	}, nil
}
