package store

import (
	"context"
	"time"

	"github.com/kmoran/personal-library/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := db.Users().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return db.findUser(ctx, bson.M{"_id": id})
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"email": email})
}

func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"username": username})
}

func (db *DB) UserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"googleId": googleID})
}

func (db *DB) findUser(ctx context.Context, q bson.M) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, q).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// LinkGoogleAccount attaches a Google identity to an existing local user.
// Role and history are preserved; only the federation fields change.
func (db *DB) LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID, picture string) error {
	set := bson.M{"googleId": googleID, "updatedAt": time.Now()}
	if picture != "" {
		set["picture"] = picture
	}
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
