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

// maxPerLine caps how many units of one product a single cart may hold.
const maxPerLine = 10

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func loadCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, err
}

func saveCart(ctx context.Context, db *mongo.Database, cart models.Cart) error {
	cart.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := db.Collection("carts").ReplaceOne(ctx, bson.M{"userId": cart.UserID}, cart, opts)
	return err
}

// cartView reprices the cart and shapes the response. Stale lines whose
// product disappeared or got unlisted are listed separately so the client
// can prompt removal.
func cartView(ctx context.Context, db *mongo.Database, coupons couponSlot, userID primitive.ObjectID) (gin.H, error) {
	cart, err := loadCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	products, unavailable, err := loadCartProducts(ctx, db, cart)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	offers, err := loadOffers(ctx, db, now)
	if err != nil {
		return nil, err
	}

	coupon, err := appliedCoupon(ctx, db, coupons, userID, now)
	if err != nil {
		return nil, err
	}

	res := pricing.PriceCart(cartLines(cart, products), offers, coupon, now)
	if coupon != nil && !res.CouponApplied {
		// offers or the minimum knocked the coupon out, release the slot
		_ = coupons.Clear(ctx, userID)
	}

	items := make([]gin.H, 0, len(res.Lines))
	for _, line := range res.Lines {
		p := products[line.ProductID]
		items = append(items, gin.H{
			"productId":       line.ProductID.Hex(),
			"name":            p.Name,
			"quantity":        line.Quantity,
			"price":           line.Price,
			"discountedPrice": line.DiscountedPrice,
			"totalPrice":      line.TotalPrice,
			"offer":           line.Offer,
			"couponDiscount":  line.CouponDiscount,
			"stock":           p.Quantity,
		})
	}

	unavailableIDs := make([]string, 0, len(unavailable))
	for _, id := range unavailable {
		unavailableIDs = append(unavailableIDs, id.Hex())
	}

	return gin.H{
		"items":          items,
		"unavailable":    unavailableIDs,
		"totalPrice":     res.OriginalTotal,
		"offerDiscount":  res.OfferDiscount,
		"couponDiscount": res.CouponDiscount,
		"finalAmount":    res.FinalTotal,
		"couponApplied":  res.CouponApplied,
	}, nil
}

func GetCart(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/cart"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		view, err := cartView(ctx, db, coupons, userID)
		if err != nil {
			log.Println("[CART] [ERROR] cart view failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, view)
	}
}

func AddToCart(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/cart"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be greater than zero")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !product.Purchasable() {
			respondWithError(c, http.StatusBadRequest, route, "product is not available")
			return
		}
		if product.Quantity <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "product is out of stock")
			return
		}

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		quantity := req.Quantity
		if idx := cart.ItemIndex(productID); idx >= 0 {
			quantity += cart.Items[idx].Quantity
		}
		if quantity > maxPerLine {
			quantity = maxPerLine
		}
		if quantity > product.Quantity {
			quantity = product.Quantity
		}

		if idx := cart.ItemIndex(productID); idx >= 0 {
			cart.Items[idx].Quantity = quantity
			cart.Items[idx].Price = product.SalePrice
		} else {
			cart.Items = append(cart.Items, models.CartItem{
				ProductID: productID,
				Quantity:  quantity,
				Price:     product.SalePrice,
			})
		}

		if err := saveCart(ctx, db, cart); err != nil {
			log.Println("[CART] [ERROR] save cart failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[CART] [INFO] product added to cart:", productID.Hex())
		view, err := cartView(ctx, db, coupons, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func UpdateCartItem(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/cart"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		idx := cart.ItemIndex(productID)
		if idx < 0 {
			respondWithError(c, http.StatusNotFound, route, "product not in cart")
			return
		}

		if req.Quantity <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			var product models.Product
			if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}

			quantity := req.Quantity
			if quantity > maxPerLine {
				quantity = maxPerLine
			}
			if quantity > product.Quantity {
				quantity = product.Quantity
			}
			if quantity <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "product is out of stock")
				return
			}
			cart.Items[idx].Quantity = quantity
		}

		if err := saveCart(ctx, db, cart); err != nil {
			log.Println("[CART] [ERROR] save cart failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		view, err := cartView(ctx, db, coupons, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func RemoveCartItem(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/cart/:productId"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		idx := cart.ItemIndex(productID)
		if idx < 0 {
			respondWithError(c, http.StatusNotFound, route, "product not in cart")
			return
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		if err := saveCart(ctx, db, cart); err != nil {
			log.Println("[CART] [ERROR] save cart failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[CART] [INFO] product removed from cart:", productID.Hex())
		view, err := cartView(ctx, db, coupons, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
