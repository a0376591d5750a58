package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type addressRequest struct {
	Name      string `json:"name" binding:"required"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	Phone     string `json:"phone"`
	Landmark  string `json:"landmark"`
	IsDefault bool   `json:"isDefault"`
}

func contextUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get("userId")
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/me"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[USER] [ERROR] get me failed:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        user.ID.Hex(),
			"email":     user.Email,
			"name":      user.Name,
			"phone":     user.Phone,
			"addresses": user.Addresses,
			"createdAt": user.CreatedAt,
			"updatedAt": user.UpdatedAt,
		})
	}
}

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/addresses"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] get addresses failed:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		if req.IsDefault {
			for i := range user.Addresses {
				user.Addresses[i].IsDefault = false
			}
		}

		address := models.Address{
			ID:        primitive.NewObjectID(),
			Name:      strings.TrimSpace(req.Name),
			Street:    strings.TrimSpace(req.Street),
			City:      strings.TrimSpace(req.City),
			State:     strings.TrimSpace(req.State),
			Pincode:   strings.TrimSpace(req.Pincode),
			Phone:     strings.TrimSpace(req.Phone),
			Landmark:  strings.TrimSpace(req.Landmark),
			IsDefault: req.IsDefault || len(user.Addresses) == 0,
		}

		user.Addresses = append(user.Addresses, address)
		user.UpdatedAt = time.Now()

		_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"addresses": user.Addresses,
				"updatedAt": user.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] insert address failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"address": address})
	}
}

func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid address id")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		index := -1
		for i, addr := range user.Addresses {
			if addr.ID == addressID {
				index = i
				break
			}
		}
		if index == -1 {
			respondWithError(c, http.StatusNotFound, route, "address not found")
			return
		}

		if req.IsDefault {
			for i := range user.Addresses {
				user.Addresses[i].IsDefault = false
			}
		}

		user.Addresses[index] = models.Address{
			ID:        addressID,
			Name:      strings.TrimSpace(req.Name),
			Street:    strings.TrimSpace(req.Street),
			City:      strings.TrimSpace(req.City),
			State:     strings.TrimSpace(req.State),
			Pincode:   strings.TrimSpace(req.Pincode),
			Phone:     strings.TrimSpace(req.Phone),
			Landmark:  strings.TrimSpace(req.Landmark),
			IsDefault: req.IsDefault,
		}
		user.UpdatedAt = time.Now()

		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"addresses": user.Addresses,
				"updatedAt": user.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] update address failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address updated:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"address": user.Addresses[index]})
	}
}

func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid address id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		updated := make([]models.Address, 0, len(user.Addresses))
		found := false
		for _, addr := range user.Addresses {
			if addr.ID == addressID {
				found = true
				continue
			}
			updated = append(updated, addr)
		}
		if !found {
			respondWithError(c, http.StatusNotFound, route, "address not found")
			return
		}

		user.UpdatedAt = time.Now()
		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"addresses": updated,
				"updatedAt": user.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] delete address failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address deleted:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}
