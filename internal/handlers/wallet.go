package handlers

import (
	"context"
	"log"
	"net/http"
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

// creditWallet applies an idempotent refund credit. The description is the
// dedup key, so retries and overlapping sweeps cannot double-credit.
func creditWallet(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, amount float64, description string, now time.Time) (bool, error) {
	var wallet models.Wallet
	err := db.Collection("wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet)
	if err == mongo.ErrNoDocuments {
		wallet = models.Wallet{
			UserID:       userID,
			Transactions: []models.WalletTransaction{},
			CreatedAt:    now,
		}
	} else if err != nil {
		return false, err
	}

	if !wallet.Credit(amount, description, now) {
		metrics.WalletCreditsSuppressedTotal.Inc()
		return false, nil
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := db.Collection("wallets").ReplaceOne(ctx, bson.M{"userId": userID}, wallet, opts); err != nil {
		return false, err
	}

	metrics.WalletCreditsTotal.Inc()
	log.Printf("[WALLET] [INFO] credited %.2f: %s", amount, description)
	return true, nil
}

// refundableLine reports whether a closed order line is owed a wallet
// credit. Cancelled lines on cash-on-delivery orders were never paid for.
func refundableLine(order models.Order, item models.OrderItem) bool {
	switch item.Status {
	case models.StatusReturned:
		return true
	case models.StatusCancelled:
		return order.PaymentMethod != models.PaymentMethodCOD
	default:
		return false
	}
}

// sweepRefunds walks the user's orders and credits any closed line that
// has not been refunded yet. It backstops crashes between an order update
// and its wallet credit.
func sweepRefunds(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) error {
	cursor, err := db.Collection("orders").Find(ctx, bson.M{
		"userId": userID,
		"orderedItem": bson.M{"$elemMatch": bson.M{
			"status":          bson.M{"$in": []string{models.StatusCancelled, models.StatusReturned}},
			"refundProcessed": false,
		}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	now := time.Now()
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return err
		}

		subtotal := pricing.OrderSubtotal(order.Items)
		for i, item := range order.Items {
			if item.RefundProcessed {
				continue
			}
			if item.Status != models.StatusCancelled && item.Status != models.StatusReturned {
				continue
			}

			if refundableLine(order, item) {
				amount := pricing.RefundForItem(item, subtotal, order.CouponDiscount)
				description := pricing.RefundDescription(order.OrderID, item.ID, item.Status)
				if _, err := creditWallet(ctx, db, userID, amount, description, now); err != nil {
					return err
				}
			}

			order.Items[i].RefundProcessed = true
			_, err := db.Collection("orders").UpdateOne(ctx,
				bson.M{"_id": order.ID, "orderedItem._id": item.ID},
				bson.M{"$set": bson.M{
					"orderedItem.$.refundProcessed": true,
					"updatedAt":                     now,
				}},
			)
			if err != nil {
				return err
			}
		}
	}
	return cursor.Err()
}

func GetWallet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/wallet"
		defer handlePanic(c, route)

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := sweepRefunds(ctx, db, userID); err != nil {
			log.Println("[WALLET] [ERROR] refund sweep failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var wallet models.Wallet
		err := db.Collection("wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, gin.H{
				"balance":      0,
				"transactions": []models.WalletTransaction{},
			})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"balance":      wallet.Balance,
			"transactions": wallet.Transactions,
		})
	}
}
