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

type ProductCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	SalePrice   float64 `json:"salePrice" binding:"required"`
	Quantity    int     `json:"quantity"`
	CategoryID  string  `json:"categoryId" binding:"required"`
	IsListed    *bool   `json:"isListed"`
}

type ProductUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	SalePrice   *float64 `json:"salePrice"`
	Quantity    *int     `json:"quantity"`
	CategoryID  *string  `json:"categoryId"`
	IsListed    *bool    `json:"isListed"`
	IsBlocked   *bool    `json:"isBlocked"`
}

func resolveCategoryID(ctx context.Context, db *mongo.Database, raw string) (primitive.ObjectID, error) {
	categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, err
	}
	err = db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Err()
	if err != nil {
		return primitive.NilObjectID, err
	}
	return categoryID, nil
}

/*
GET /admin/api/products
- all products, listed or not, for the admin panel
*/
func AdminGetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		filter := bson.M{}
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

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}
		for i := range products {
			products[i].InStock = products[i].Quantity > 0
		}

		c.JSON(http.StatusOK, gin.H{"data": products, "total": total})
	}
}

func AdminCreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.SalePrice <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "salePrice must be greater than zero")
			return
		}
		if req.Quantity < 0 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must not be negative")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categoryID, err := resolveCategoryID(ctx, db, req.CategoryID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid categoryId")
			return
		}

		isListed := true
		if req.IsListed != nil {
			isListed = *req.IsListed
		}

		product := models.Product{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			SalePrice:   req.SalePrice,
			Quantity:    req.Quantity,
			Category:    categoryID,
			IsListed:    isListed,
			CreatedAt:   time.Now(),
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}
		product.InStock = product.Quantity > 0

		c.JSON(http.StatusCreated, gin.H{"data": product})
	}
}

func AdminUpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		set := bson.M{}
		if req.Name != nil {
			set["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.SalePrice != nil {
			if *req.SalePrice <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "salePrice must be greater than zero")
				return
			}
			set["salePrice"] = *req.SalePrice
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				respondWithError(c, http.StatusBadRequest, route, "quantity must not be negative")
				return
			}
			set["quantity"] = *req.Quantity
		}
		if req.CategoryID != nil {
			categoryID, err := resolveCategoryID(ctx, db, *req.CategoryID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid categoryId")
				return
			}
			set["category"] = categoryID
		}
		if req.IsListed != nil {
			set["isListed"] = *req.IsListed
		}
		if req.IsBlocked != nil {
			set["isBlocked"] = *req.IsBlocked
		}
		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		res, err := db.Collection("products").UpdateByID(ctx, productID, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

// AdminToggleProductListing unlists or relists a product without touching
// stock or open orders.
func AdminToggleProductListing(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/products/:id/listing"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		_, err = db.Collection("products").UpdateByID(ctx, productID,
			bson.M{"$set": bson.M{"isListed": !product.IsListed}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"isListed": !product.IsListed})
	}
}
