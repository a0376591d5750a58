package handlers

import (
	"context"
	"errors"
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

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type returnActionRequest struct {
	Action  string   `json:"action" binding:"required"` // accept | reject
	ItemID  string   `json:"itemId"`
	ItemIDs []string `json:"itemIds"`
}

func AdminGetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["orderId"] = bson.M{"$regex": search, "$options": "i"}
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

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
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

		c.JSON(http.StatusOK, gin.H{"data": orders, "total": total})
	}
}

func findOrder(ctx context.Context, db *mongo.Database, idParam string) (models.Order, error) {
	var order models.Order

	filter := bson.M{}
	if objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(idParam)); err == nil {
		filter["_id"] = objectID
	} else {
		filter["orderId"] = strings.TrimSpace(idParam)
	}

	err := db.Collection("orders").FindOne(ctx, filter).Decode(&order)
	return order, err
}

// paymentSummary reconciles what the customer has paid against what has
// been returned to their wallet.
func paymentSummary(order models.Order) gin.H {
	refunded := 0.0
	subtotal := pricing.OrderSubtotal(order.Items)
	for _, item := range order.Items {
		if item.RefundProcessed {
			refunded += pricing.RefundForItem(item, subtotal, order.CouponDiscount)
		}
	}

	paid := order.FinalAmount
	if order.PaymentMethod == models.PaymentMethodCOD && order.Status != models.StatusDelivered && order.Status != models.StatusReturned {
		paid = 0
	}

	return gin.H{
		"method":      order.PaymentMethod,
		"finalAmount": order.FinalAmount,
		"paid":        paid,
		"refunded":    pricing.Round2(refunded),
	}
}

func AdminGetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findOrder(ctx, db, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order":   order,
			"payment": paymentSummary(order),
		})
	}
}

// forwardTransitions lists the admin-driven fulfilment moves. Cancels and
// returns travel through their own endpoints.
var forwardTransitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusShipped},
	models.StatusConfirmed: {models.StatusShipped},
	models.StatusShipped:   {models.StatusDelivered},
}

func validTransition(from, to string) bool {
	for _, allowed := range forwardTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AdminUpdateOrderStatus advances fulfilment. Delivering an order also
// stamps every line still in flight as delivered.
func AdminUpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		target := strings.ToLower(strings.TrimSpace(req.Status))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := findOrder(ctx, db, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !validTransition(order.Status, target) {
			respondWithError(c, http.StatusBadRequest, route, "invalid status transition")
			return
		}

		now := time.Now()
		for i, item := range order.Items {
			switch item.Status {
			case models.StatusCancelled, models.StatusReturned, models.StatusReturnRequest:
				continue
			}
			order.Items[i].Status = target
		}

		order.Status = target
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

		log.Println("[ADMIN] [INFO] order status updated:", order.OrderID, "->", target)
		c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": order.Status})
	}
}

// AdminHandleReturnAction accepts or rejects pending returns. The request
// may target one line, a set of lines, or, with no ids, every line awaiting
// a return on the order. Accepting restocks the units and credits the
// proportional refund; rejecting puts the line back to delivered.
func AdminHandleReturnAction(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/return-action"
		defer handlePanic(c, route)

		var req returnActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		action := strings.ToLower(strings.TrimSpace(req.Action))
		if action != "accept" && action != "reject" {
			respondWithError(c, http.StatusBadRequest, route, "action must be accept or reject")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := findOrder(ctx, db, c.Param("id"))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		targets, err := resolveReturnTargets(order, req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if len(targets) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no items awaiting return")
			return
		}

		pending := pendingReturnTargets(order, targets)
		if len(pending) == 0 {
			// re-running the action on settled lines is a no-op, not an error
			c.JSON(http.StatusOK, gin.H{
				"message":  "items already processed",
				"resolved": 0,
				"status":   order.Status,
			})
			return
		}

		now := time.Now()
		subtotal := pricing.OrderSubtotal(order.Items)
		resolved := 0

		for _, itemID := range pending {
			item := order.Item(itemID)

			if action == "reject" {
				item.Status = models.StatusDelivered
				item.ReturnReason = ""
				resolved++
				continue
			}

			if err := restockLine(ctx, db, *item); err != nil {
				log.Println("[ADMIN] [ERROR] restock failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			amount := pricing.RefundForItem(*item, subtotal, order.CouponDiscount)
			description := pricing.RefundDescription(order.OrderID, item.ID, models.StatusReturned)
			if _, err := creditWallet(ctx, db, order.UserID, amount, description, now); err != nil {
				log.Println("[ADMIN] [ERROR] refund credit failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			item.Status = models.StatusReturned
			item.RefundProcessed = true
			resolved++
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

		metrics.ReturnsResolvedTotal.WithLabelValues(action).Add(float64(resolved))
		log.Printf("[ADMIN] [INFO] return %sed %d item(s) on order %s", action, resolved, order.OrderID)
		c.JSON(http.StatusOK, gin.H{
			"message":  "return " + action + "ed",
			"resolved": resolved,
			"status":   order.Status,
		})
	}
}

func resolveReturnTargets(order models.Order, req returnActionRequest) ([]primitive.ObjectID, error) {
	raw := req.ItemIDs
	if id := strings.TrimSpace(req.ItemID); id != "" {
		raw = append(raw, id)
	}

	if len(raw) == 0 {
		// order-level action covers every line awaiting a return
		targets := make([]primitive.ObjectID, 0, len(order.Items))
		for _, item := range order.Items {
			if item.Status == models.StatusReturnRequest {
				targets = append(targets, item.ID)
			}
		}
		return targets, nil
	}

	targets := make([]primitive.ObjectID, 0, len(raw))
	for _, id := range raw {
		itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			return nil, errors.New("invalid item id: " + id)
		}
		targets = append(targets, itemID)
	}
	return targets, nil
}

// pendingReturnTargets filters targets down to lines still awaiting a
// return, so an action replayed against settled lines can be reported as
// already processed instead of silently resolving nothing.
func pendingReturnTargets(order models.Order, targets []primitive.ObjectID) []primitive.ObjectID {
	pending := make([]primitive.ObjectID, 0, len(targets))
	for _, itemID := range targets {
		if item := order.Item(itemID); item != nil && item.Status == models.StatusReturnRequest {
			pending = append(pending, itemID)
		}
	}
	return pending
}
