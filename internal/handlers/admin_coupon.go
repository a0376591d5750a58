package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type CouponCreateRequest struct {
	Name         string  `json:"name" binding:"required"`
	OfferPrice   float64 `json:"offerPrice" binding:"required"`
	MinimumPrice float64 `json:"minimumPrice" binding:"required"`
	ExpireOn     string  `json:"expireOn" binding:"required"`
}

type CouponUpdateRequest struct {
	OfferPrice   *float64 `json:"offerPrice"`
	MinimumPrice *float64 `json:"minimumPrice"`
	ExpireOn     *string  `json:"expireOn"`
	IsList       *bool    `json:"isList"`
}

func parseCouponExpiry(raw string) (time.Time, bool) {
	expiry, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		expiry, err = time.Parse("2006-01-02", strings.TrimSpace(raw))
	}
	if err != nil || !expiry.After(time.Now()) {
		return time.Time{}, false
	}
	return expiry, true
}

func AdminGetCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/coupons"
		defer handlePanic(c, route)

		opts := options.Find().
			SetSort(bson.D{{Key: "createdOn", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("coupons").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		views := make([]gin.H, 0, len(coupons))
		for _, coupon := range coupons {
			views = append(views, gin.H{
				"id":           coupon.ID.Hex(),
				"name":         coupon.Name,
				"offerPrice":   coupon.OfferPrice,
				"minimumPrice": coupon.MinimumPrice,
				"expireOn":     coupon.ExpireOn,
				"isList":       coupon.IsList,
				"usedCount":    len(coupon.UsedBy),
				"createdOn":    coupon.CreatedOn,
			})
		}

		c.JSON(http.StatusOK, gin.H{"data": views})
	}
}

func AdminCreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/coupons"
		defer handlePanic(c, route)

		var req CouponCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.ToUpper(strings.TrimSpace(req.Name))
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name required")
			return
		}
		if req.OfferPrice <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "offerPrice must be greater than zero")
			return
		}
		if req.MinimumPrice <= req.OfferPrice {
			respondWithError(c, http.StatusBadRequest, route, "minimumPrice must exceed offerPrice")
			return
		}

		expiry, ok := parseCouponExpiry(req.ExpireOn)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "expireOn must be a future date")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("coupons").CountDocuments(ctx, bson.M{
			"name": bson.M{"$regex": "^" + name + "$", "$options": "i"},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "coupon already exists")
			return
		}

		coupon := models.Coupon{
			Name:         name,
			OfferPrice:   req.OfferPrice,
			MinimumPrice: req.MinimumPrice,
			ExpireOn:     expiry,
			IsList:       true,
			UsedBy:       []primitive.ObjectID{},
			CreatedOn:    time.Now(),
		}

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			coupon.ID = id
		}

		c.JSON(http.StatusCreated, gin.H{"data": coupon})
	}
}

func AdminUpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req CouponUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{}
		if req.OfferPrice != nil {
			if *req.OfferPrice <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "offerPrice must be greater than zero")
				return
			}
			set["offerPrice"] = *req.OfferPrice
		}
		if req.MinimumPrice != nil {
			set["minimumPrice"] = *req.MinimumPrice
		}
		if req.ExpireOn != nil {
			expiry, ok := parseCouponExpiry(*req.ExpireOn)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "expireOn must be a future date")
				return
			}
			set["expireOn"] = expiry
		}
		if req.IsList != nil {
			set["isList"] = *req.IsList
		}
		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "coupon updated"})
	}
}

// AdminToggleCoupon flips listing. Unlisting blocks new applications but
// never rewrites orders that already redeemed it.
func AdminToggleCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/coupons/:id/toggle"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		if err := db.Collection("coupons").FindOne(ctx, bson.M{"_id": couponID}).Decode(&coupon); err != nil {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		_, err = db.Collection("coupons").UpdateByID(ctx, couponID,
			bson.M{"$set": bson.M{"isList": !coupon.IsList}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"isList": !coupon.IsList})
	}
}
