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

type OfferCreateRequest struct {
	OfferName string  `json:"offerName" binding:"required"`
	TargetID  string  `json:"targetId" binding:"required"`
	Discount  float64 `json:"discount" binding:"required"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
}

// offerWindow parses the optional window bounds. A missing start means
// "now", a missing end means open-ended.
func offerWindow(startRaw, endRaw string) (time.Time, *time.Time, bool) {
	now := time.Now()

	start := now
	if s := strings.TrimSpace(startRaw); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", s)
		}
		if err != nil {
			return time.Time{}, nil, false
		}
		start = parsed
	}

	var end *time.Time
	if e := strings.TrimSpace(endRaw); e != "" {
		parsed, err := time.Parse(time.RFC3339, e)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", e)
		}
		if err != nil || !parsed.After(start) {
			return time.Time{}, nil, false
		}
		end = &parsed
	}

	return start, end, true
}

func offerCollection(kind string) string {
	if kind == "category" {
		return "category_offers"
	}
	return "product_offers"
}

func AdminGetOffers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/offers"
		defer handlePanic(c, route)

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("product_offers").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		productOffers := make([]models.ProductOffer, 0)
		if err := cursor.All(ctx, &productOffers); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		cursor, err = db.Collection("category_offers").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		categoryOffers := make([]models.CategoryOffer, 0)
		if err := cursor.All(ctx, &categoryOffers); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"productOffers":  productOffers,
			"categoryOffers": categoryOffers,
		})
	}
}

// AdminCreateProductOffer attaches a percentage discount to one product.
func AdminCreateProductOffer(db *mongo.Database) gin.HandlerFunc {
	return adminCreateOffer(db, "product")
}

// AdminCreateCategoryOffer attaches a percentage discount to every product
// in a category.
func AdminCreateCategoryOffer(db *mongo.Database) gin.HandlerFunc {
	return adminCreateOffer(db, "category")
}

func adminCreateOffer(db *mongo.Database, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "POST /admin/api/offers/" + kind
		defer handlePanic(c, route)

		var req OfferCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Discount <= 0 || req.Discount > 100 {
			respondWithError(c, http.StatusBadRequest, route, "discount must be between 0 and 100")
			return
		}

		targetID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.TargetID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid targetId")
			return
		}

		start, end, ok := offerWindow(req.StartDate, req.EndDate)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid offer window")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		targetCollection := "products"
		if kind == "category" {
			targetCollection = "categories"
		}
		if err := db.Collection(targetCollection).FindOne(ctx, bson.M{"_id": targetID}).Err(); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "target not found")
			return
		}

		now := time.Now()
		var doc interface{}
		if kind == "category" {
			doc = models.CategoryOffer{
				CategoryID: targetID,
				OfferName:  strings.TrimSpace(req.OfferName),
				Discount:   req.Discount,
				StartDate:  start,
				EndDate:    end,
				CreatedAt:  now,
			}
		} else {
			doc = models.ProductOffer{
				ProductID: targetID,
				OfferName: strings.TrimSpace(req.OfferName),
				Discount:  req.Discount,
				StartDate: start,
				EndDate:   end,
				CreatedAt: now,
			}
		}

		if _, err := db.Collection(offerCollection(kind)).InsertOne(ctx, doc); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "offer created"})
	}
}

type OfferUpdateRequest struct {
	OfferName *string  `json:"offerName"`
	Discount  *float64 `json:"discount"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
}

// AdminUpdateProductOffer and AdminUpdateCategoryOffer change an offer's
// name, discount or window in place.
func AdminUpdateProductOffer(db *mongo.Database) gin.HandlerFunc {
	return adminUpdateOffer(db, "product")
}

func AdminUpdateCategoryOffer(db *mongo.Database) gin.HandlerFunc {
	return adminUpdateOffer(db, "category")
}

func adminUpdateOffer(db *mongo.Database, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "PUT /admin/api/offers/" + kind + "/:id"
		defer handlePanic(c, route)

		offerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req OfferUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{}
		if req.OfferName != nil {
			name := strings.TrimSpace(*req.OfferName)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "offerName cannot be empty")
				return
			}
			set["offerName"] = name
		}
		if req.Discount != nil {
			if *req.Discount <= 0 || *req.Discount > 100 {
				respondWithError(c, http.StatusBadRequest, route, "discount must be between 0 and 100")
				return
			}
			set["discount"] = *req.Discount
		}
		if req.StartDate != "" || req.EndDate != "" {
			start, end, ok := offerWindow(req.StartDate, req.EndDate)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "invalid offer window")
				return
			}
			if req.StartDate != "" {
				set["startDate"] = start
			}
			if req.EndDate != "" {
				set["endDate"] = end
			}
		}
		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection(offerCollection(kind)).UpdateByID(ctx, offerID, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "offer not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "offer updated"})
	}
}

// AdminDeleteProductOffer and AdminDeleteCategoryOffer end an offer early.
func AdminDeleteProductOffer(db *mongo.Database) gin.HandlerFunc {
	return adminDeleteOffer(db, "product")
}

func AdminDeleteCategoryOffer(db *mongo.Database) gin.HandlerFunc {
	return adminDeleteOffer(db, "category")
}

func adminDeleteOffer(db *mongo.Database, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "DELETE /admin/api/offers/" + kind + "/:id"
		defer handlePanic(c, route)

		offerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection(offerCollection(kind)).DeleteOne(ctx, bson.M{"_id": offerID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "offer not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "offer deleted"})
	}
}
