package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLowerCamel(t *testing.T) {
	assert.Equal(t, "email", lowerCamel("Email"))
	assert.Equal(t, "addressID", lowerCamel("AddressID"))
	assert.Equal(t, "", lowerCamel(""))
}

func TestHashTokenIsStable(t *testing.T) {
	a := hashToken("refresh-token")
	b := hashToken("refresh-token")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, hashToken("other-token"))
}

func TestGenerateRefreshString(t *testing.T) {
	a := generateRefreshString()
	b := generateRefreshString()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestIssueUserTokenClaims(t *testing.T) {
	userID := primitive.NewObjectID()
	signed, err := issueUserToken(userID, "user@example.com", "customer", "secret", time.Hour)
	assert.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, userID.Hex(), claims["userId"])
	assert.Equal(t, "customer", claims["role"])
}
