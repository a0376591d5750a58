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
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
	"storefront/internal/pricing"
)

// productView decorates a product with the best active offer so listings
// show the price a buyer would actually pay.
func productView(p models.Product, offers pricing.Offers, now time.Time) gin.H {
	offer, price := pricing.ResolveOffer(p.ID, p.Category, p.SalePrice, offers, now)
	view := gin.H{
		"id":          p.ID.Hex(),
		"name":        p.Name,
		"description": p.Description,
		"salePrice":   p.SalePrice,
		"offerPrice":  price,
		"category":    p.Category.Hex(),
		"inStock":     p.Quantity > 0,
		"quantity":    p.Quantity,
		"createdAt":   p.CreatedAt,
	}
	if offer != nil {
		view["offer"] = offer
	}
	return view
}

/*
GET /products
- pagination optional: applied only when both page and limit are present
- listed, unblocked products only
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{
			"isListed":  true,
			"isBlocked": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			categoryID, err := primitive.ObjectIDFromHex(category)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid category")
				return
			}
			filter["category"] = categoryID
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			findOptions.SetSkip((page - 1) * limit).SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		now := time.Now()
		offers, err := loadOffers(ctx, db, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		views := make([]gin.H, 0, len(products))
		for _, p := range products {
			views = append(views, productView(p, offers, now))
		}

		log.Printf("[%s] returning %d products", route, len(views))
		c.JSON(http.StatusOK, views)
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isListed":  true,
			"isBlocked": bson.M{"$ne": true},
		}).Decode(&product)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		offers, err := loadOffers(ctx, db, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, productView(product, offers, now))
	}
}
