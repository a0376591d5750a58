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

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/pricing"
)

type cancelRequest struct {
	Reason string `json:"reason"`
}

type returnRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/orders"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createOn", Value: -1}})

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

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": orders})
	}
}

func findUserOrder(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, idParam string) (models.Order, error) {
	var order models.Order

	filter := bson.M{"userId": userID}
	if objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(idParam)); err == nil {
		filter["_id"] = objectID
	} else {
		filter["orderId"] = strings.TrimSpace(idParam)
	}

	err := db.Collection("orders").FindOne(ctx, filter).Decode(&order)
	return order, err
}

func GetMyOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/orders/:id"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func cancellable(status string) bool {
	return status == models.StatusPending || status == models.StatusConfirmed
}

// restockLine returns a line's units to inventory.
func restockLine(ctx context.Context, db *mongo.Database, item models.OrderItem) error {
	_, err := db.Collection("products").UpdateByID(ctx, item.ProductID,
		bson.M{"$inc": bson.M{"quantity": item.Quantity}})
	return err
}

// CancelOrder cancels every line that is still open, restocks them and,
// for prepaid orders, credits the proportional refunds to the wallet.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/orders/:id/cancel"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req cancelRequest
		_ = c.ShouldBindJSON(&req)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !cancellable(order.Status) {
			respondWithError(c, http.StatusBadRequest, route, "order can no longer be cancelled")
			return
		}

		now := time.Now()
		subtotal := pricing.OrderSubtotal(order.Items)
		reason := strings.TrimSpace(req.Reason)

		for i, item := range order.Items {
			if !cancellable(item.Status) {
				continue
			}

			if err := restockLine(ctx, db, item); err != nil {
				log.Println("[ORDER] [ERROR] restock failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			order.Items[i].Status = models.StatusCancelled
			order.Items[i].CancellationReason = reason
			order.Items[i].RequestedAt = now

			if order.PaymentMethod != models.PaymentMethodCOD {
				amount := pricing.RefundForItem(item, subtotal, order.CouponDiscount)
				description := pricing.RefundDescription(order.OrderID, item.ID, models.StatusCancelled)
				if _, err := creditWallet(ctx, db, userID, amount, description, now); err != nil {
					log.Println("[ORDER] [ERROR] refund credit failed:", err)
					respondWithError(c, http.StatusInternalServerError, route, "db error")
					return
				}
				order.Items[i].RefundProcessed = true
			}
		}

		order.Status = pricing.DeriveOrderStatus(order.Items, order.Status)
		order.UpdatedAt = now

		_, err = db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"orderedItem": order.Items,
				"status":      order.Status,
				"updatedAt":   order.UpdatedAt,
			},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		metrics.OrdersCancelledTotal.Inc()
		log.Println("[ORDER] [INFO] order cancelled:", order.OrderID)
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled", "status": order.Status})
	}
}

// CancelOrderItem cancels one line. When a coupon rode on the order, the
// cancel is rejected if the surviving lines would fall below the coupon's
// minimum purchase, since the discount would no longer have been earned.
func CancelOrderItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/orders/:id/items/:itemId/cancel"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("itemId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		var req cancelRequest
		_ = c.ShouldBindJSON(&req)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		item := order.Item(itemID)
		if item == nil {
			respondWithError(c, http.StatusNotFound, route, "order item not found")
			return
		}
		if !cancellable(item.Status) {
			respondWithError(c, http.StatusBadRequest, route, "item can no longer be cancelled")
			return
		}

		now := time.Now()

		if order.CouponApplied {
			remaining := pricing.RemainingActiveTotal(order.Items, itemID)
			if remaining > 0 {
				var coupon models.Coupon
				err := db.Collection("coupons").FindOne(ctx, bson.M{"name": order.CouponCode}).Decode(&coupon)
				if err == nil && remaining < coupon.MinimumPrice {
					respondWithError(c, http.StatusBadRequest, route,
						"cancelling this item would drop the order below the coupon minimum; cancel the whole order instead")
					return
				}
				if err != nil && err != mongo.ErrNoDocuments {
					respondWithError(c, http.StatusInternalServerError, route, "db error")
					return
				}
			}
		}

		if err := restockLine(ctx, db, *item); err != nil {
			log.Println("[ORDER] [ERROR] restock failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		item.Status = models.StatusCancelled
		item.CancellationReason = strings.TrimSpace(req.Reason)
		item.RequestedAt = now

		if order.PaymentMethod != models.PaymentMethodCOD {
			subtotal := pricing.OrderSubtotal(order.Items)
			amount := pricing.RefundForItem(*item, subtotal, order.CouponDiscount)
			description := pricing.RefundDescription(order.OrderID, item.ID, models.StatusCancelled)
			if _, err := creditWallet(ctx, db, userID, amount, description, now); err != nil {
				log.Println("[ORDER] [ERROR] refund credit failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			item.RefundProcessed = true
		}

		order.Status = pricing.DeriveOrderStatus(order.Items, order.Status)
		order.UpdatedAt = now

		_, err = db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"orderedItem": order.Items,
				"status":      order.Status,
				"updatedAt":   order.UpdatedAt,
			},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		metrics.OrderLinesCancelledTotal.Inc()
		log.Println("[ORDER] [INFO] order item cancelled:", itemID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "item cancelled", "status": order.Status})
	}
}

// ReturnOrderItem opens a return request on a delivered line. Stock and
// money move only when an admin accepts the request.
func ReturnOrderItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/orders/:id/items/:itemId/return"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("itemId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		var req returnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		item := order.Item(itemID)
		if item == nil {
			respondWithError(c, http.StatusNotFound, route, "order item not found")
			return
		}
		if item.Status != models.StatusDelivered {
			respondWithError(c, http.StatusBadRequest, route, "only delivered items can be returned")
			return
		}

		now := time.Now()
		item.Status = models.StatusReturnRequest
		item.ReturnReason = strings.TrimSpace(req.Reason)
		item.RequestedAt = now

		order.Status = pricing.DeriveOrderStatus(order.Items, order.Status)
		order.UpdatedAt = now

		_, err = db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"orderedItem": order.Items,
				"status":      order.Status,
				"updatedAt":   order.UpdatedAt,
			},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		metrics.ReturnsRequestedTotal.Inc()
		log.Println("[ORDER] [INFO] return requested for item:", itemID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "return requested", "status": order.Status})
	}
}

// ReturnOrder opens a return request on every delivered line at once.
func ReturnOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/orders/:id/return"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req returnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		reason := strings.TrimSpace(req.Reason)
		requested := 0
		for i, item := range order.Items {
			if item.Status != models.StatusDelivered {
				continue
			}
			order.Items[i].Status = models.StatusReturnRequest
			order.Items[i].ReturnReason = reason
			order.Items[i].RequestedAt = now
			requested++
		}
		if requested == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no delivered items to return")
			return
		}

		order.Status = pricing.DeriveOrderStatus(order.Items, order.Status)
		order.UpdatedAt = now

		_, err = db.Collection("orders").UpdateByID(ctx, order.ID, bson.M{
			"$set": bson.M{
				"orderedItem": order.Items,
				"status":      order.Status,
				"updatedAt":   order.UpdatedAt,
			},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		metrics.ReturnsRequestedTotal.Inc()
		log.Println("[ORDER] [INFO] return requested for order:", order.OrderID)
		c.JSON(http.StatusOK, gin.H{"message": "return requested", "status": order.Status})
	}
}
