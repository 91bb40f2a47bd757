package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Auth methods.
const (
	AuthMethodLocal  = "local"
	AuthMethodGoogle = "google"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"` // bcrypt hash; set only for local auth
	GoogleID   string             `bson:"googleId,omitempty" json:"-"`
	Role       string             `bson:"role" json:"role"`
	Picture    string             `bson:"picture,omitempty" json:"picture,omitempty"`
	AuthMethod string             `bson:"authMethod" json:"authMethod"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
