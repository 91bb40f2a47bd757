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

type LoanFilter struct {
	Status   string
	Email    string
	BookID   *primitive.ObjectID
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Limit    int
}

func (f LoanFilter) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Email != "" {
		q["borrowerEmail"] = bson.M{"$regex": f.Email, "$options": "i"}
	}
	if f.BookID != nil {
		q["book"] = *f.BookID
	}
	if f.FromDate != nil && f.ToDate != nil {
		q["loanDate"] = bson.M{"$gte": *f.FromDate, "$lte": *f.ToDate}
	}
	return q
}

func (db *DB) InsertLoan(ctx context.Context, loan *models.LoanRecord) (primitive.ObjectID, error) {
	now := time.Now()
	loan.CreatedAt = now
	loan.UpdatedAt = now
	res, err := db.Loans().InsertOne(ctx, loan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// loanBookLookup joins the referenced book onto loan documents, with the
// book author's name resolved through a second lookup.
func loanBookLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "books",
			"localField":   "book",
			"foreignField": "_id",
			"as":           "bookDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$bookDoc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "authors",
			"localField":   "bookDoc.author",
			"foreignField": "_id",
			"as":           "bookAuthorDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$bookAuthorDoc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{"bookDoc.authorName": "$bookAuthorDoc.name"}}},
		{{Key: "$project", Value: bson.M{"bookAuthorDoc": 0}}},
	}
}

// ListLoans returns a page of loans with their book summaries joined in,
// plus the unpaginated total.
func (db *DB) ListLoans(ctx context.Context, filter LoanFilter) ([]models.LoanWithBook, int64, error) {
	q := filter.query()
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: q}},
		{{Key: "$sort", Value: bson.M{"loanDate": -1}}},
		{{Key: "$skip", Value: (filter.Page - 1) * filter.Limit}},
		{{Key: "$limit", Value: filter.Limit}},
	}, loanBookLookup()...)
	cur, err := db.Loans().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	loans := []models.LoanWithBook{}
	if err := cur.All(ctx, &loans); err != nil {
		return nil, 0, err
	}
	total, err := db.Loans().CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

// LoanWithBookByID returns a single loan with its book summary joined in,
// or nil when no loan matches.
func (db *DB) LoanWithBookByID(ctx context.Context, id primitive.ObjectID) (*models.LoanWithBook, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}, loanBookLookup()...)
	cur, err := db.Loans().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	loans := []models.LoanWithBook{}
	if err := cur.All(ctx, &loans); err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, nil
	}
	return &loans[0], nil
}

func (db *DB) LoanByID(ctx context.Context, id primitive.ObjectID) (*models.LoanRecord, error) {
	var loan models.LoanRecord
	err := db.Loans().FindOne(ctx, bson.M{"_id": id}).Decode(&loan)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (db *DB) UpdateLoan(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.LoanRecord, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var loan models.LoanRecord
	err := db.Loans().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&loan)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// SetLoanStatus persists a derived status change (the Overdue write-back).
func (db *DB) SetLoanStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := db.Loans().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}

func (db *DB) DeleteLoan(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Loans().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// CountOpenLoansForBook counts Active/Overdue loans against a book.
func (db *DB) CountOpenLoansForBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	return db.Loans().CountDocuments(ctx, bson.M{
		"book":   bookID,
		"status": bson.M{"$ne": models.LoanStatusReturned},
	})
}

// LoanStats aggregates status counts and the average duration in days of
// returned loans.
func (db *DB) LoanStats(ctx context.Context) (*models.LoanStats, error) {
	cur, err := db.Loans().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalLoans": bson.M{"$sum": 1},
			"activeLoans": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.LoanStatusActive}}, 1, 0},
			}},
			"returnedLoans": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.LoanStatusReturned}}, 1, 0},
			}},
			"overdueLoans": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.LoanStatusOverdue}}, 1, 0},
			}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	summaries := []models.LoanSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}

	cur, err = db.Loans().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":     models.LoanStatusReturned,
			"returnDate": bson.M{"$ne": nil},
		}}},
		{{Key: "$project", Value: bson.M{
			"durationDays": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$returnDate", "$loanDate"}},
				1000 * 60 * 60 * 24,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"averageDuration": bson.M{"$avg": "$durationDays"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	durations := []struct {
		AverageDuration float64 `bson:"averageDuration"`
	}{}
	if err := cur.All(ctx, &durations); err != nil {
		return nil, err
	}

	stats := &models.LoanStats{}
	if len(summaries) > 0 {
		stats.Summary = summaries[0]
	}
	if len(durations) > 0 {
		stats.AverageLoanDuration = durations[0].AverageDuration
	}
	return stats, nil
}
