package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/pricing"
)

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func ApplyCoupon(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/cart/coupon"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req applyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.TrimSpace(req.Code)
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "code is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()

		var coupon models.Coupon
		collation := options.FindOne().SetCollation(&options.Collation{Locale: "en", Strength: 2})
		if err := db.Collection("coupons").FindOne(ctx, bson.M{"name": code}, collation).Decode(&coupon); err != nil {
			if err == mongo.ErrNoDocuments {
				metrics.CouponsRejectedTotal.WithLabelValues("not_found").Inc()
				respondWithError(c, http.StatusNotFound, route, "coupon not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !coupon.UsableBy(userID, now) {
			metrics.CouponsRejectedTotal.WithLabelValues("not_usable").Inc()
			respondWithError(c, http.StatusBadRequest, route, "coupon is expired, disabled or already used")
			return
		}

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if len(cart.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "cart is empty")
			return
		}

		products, unavailable, err := loadCartProducts(ctx, db, cart)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if len(unavailable) > 0 {
			respondWithError(c, http.StatusBadRequest, route, "cart contains unavailable products")
			return
		}

		offers, err := loadOffers(ctx, db, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		res := pricing.PriceCart(cartLines(cart, products), offers, &coupon, now)
		if res.HasOfferProducts {
			metrics.CouponsRejectedTotal.WithLabelValues("offer_conflict").Inc()
			respondWithError(c, http.StatusBadRequest, route, "coupons cannot be combined with offer products")
			return
		}
		if !res.CouponApplied {
			metrics.CouponsRejectedTotal.WithLabelValues("below_minimum").Inc()
			respondWithError(c, http.StatusBadRequest, route, "cart total is below the coupon minimum")
			return
		}

		if err := coupons.Apply(ctx, userID, coupon.ID); err != nil {
			log.Println("[COUPON] [ERROR] session apply failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "session error")
			return
		}

		metrics.CouponsAppliedTotal.Inc()
		log.Println("[COUPON] [INFO] coupon applied:", coupon.Name)

		view, err := cartView(ctx, db, coupons, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func RemoveCoupon(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/cart/coupon"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := coupons.Clear(ctx, userID); err != nil {
			log.Println("[COUPON] [ERROR] session clear failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "session error")
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
