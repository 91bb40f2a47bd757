// Package auth provides the authentication service: password hashing,
// JWT mint/verify, and resolution of bearer tokens to users. The service
// is constructed once in main and passed in wherever it is needed; there
// is no process-global state.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kmoran/personal-library/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnknownUser  = errors.New("user no longer exists")
)

// UserStore is the slice of the store the service needs to resolve tokens.
type UserStore interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

func (s *Service) CreateToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate turns a bearer token into the acting user. A token whose
// subject has since been deleted is rejected like a bad token.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (*models.User, error) {
	claims, err := s.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
