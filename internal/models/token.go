package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken stores the hash of an issued refresh token. The plain token
// never touches the database.
type RefreshToken struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId"`
	TokenHash       string             `bson:"tokenHash"`
	ExpiresAt       time.Time          `bson:"expiresAt"`
	Revoked         bool               `bson:"revoked"`
	ReplacedByToken primitive.ObjectID `bson:"replacedByToken,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
}
