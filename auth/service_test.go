package auth

import (
	"context"
	"testing"
	"time"

	"github.com/kmoran/personal-library/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeUserStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.users[id], nil
}

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@x.com", Role: models.RoleUser}
	store := &fakeUserStore{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	svc := NewService(store, "test-secret", time.Hour)

	token, err := svc.CreateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved user %s, want %s", got.ID.Hex(), user.ID.Hex())
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	store := &fakeUserStore{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	svc := NewService(store, "test-secret", -time.Hour)

	token, err := svc.CreateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenWithWrongSecretRejected(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	store := &fakeUserStore{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	token, err := NewService(store, "secret-one", time.Hour).CreateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, "secret-two", time.Hour)
	if _, err := svc.Authenticate(context.Background(), token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDeletedUserRejected(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	store := &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
	svc := NewService(store, "test-secret", time.Hour)

	token, err := svc.CreateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), token); err != ErrUnknownUser {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "secret1" {
		t.Fatal("hash should not equal the plaintext")
	}
	if !CheckPassword(hash, "secret1") {
		t.Fatal("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}
