package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/pricing"
)

type createOrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type insufficientWalletError struct {
	Balance  float64
	Required float64
}

func (e insufficientWalletError) Error() string {
	return "insufficient wallet balance"
}

func newOrderRef() string {
	return "TLX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// couponClaim builds the atomic single-use redemption mark. The membership
// check travels in the filter: a user already in usedBy matches nothing,
// so the claim fails instead of silently succeeding.
func couponClaim(couponID, userID primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"_id": couponID, "usedBy": bson.M{"$ne": userID}}
	update := bson.M{"$addToSet": bson.M{"usedBy": userID}}
	return filter, update
}

// CreateOrder reprices the cart from the database, freezes the result onto
// an order and commits the order insert, the stock decrements, the coupon
// redemption mark and any wallet debit in a single transaction. The cart
// and the coupon session slot are only cleared after the commit.
func CreateOrder(db *mongo.Database, coupons couponSlot) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := contextUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		payment := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
		if !models.ValidPaymentMethod(payment) {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		address, ok := resolveAddress(user, strings.TrimSpace(req.AddressID))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "no delivery address")
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

		now := time.Now()
		offers, err := loadOffers(ctx, db, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		coupon, err := appliedCoupon(ctx, db, coupons, userID, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "session error")
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			lines := make([]pricing.Line, 0, len(cart.Items))
			productByID := make(map[primitive.ObjectID]models.Product, len(cart.Items))

			for _, item := range cart.Items {
				var product models.Product
				err := db.Collection("products").FindOne(sessCtx, bson.M{"_id": item.ProductID}).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productNotFoundError{ProductID: item.ProductID}
				}
				if err != nil {
					return nil, err
				}
				if !product.Purchasable() {
					return nil, productNotFoundError{ProductID: item.ProductID}
				}
				if product.Quantity < item.Quantity {
					return nil, outOfStockError{
						ProductID: item.ProductID,
						Available: product.Quantity,
						Requested: item.Quantity,
					}
				}

				productByID[product.ID] = product
				lines = append(lines, pricing.Line{
					ProductID:  product.ID,
					CategoryID: product.Category,
					Price:      product.SalePrice,
					Quantity:   item.Quantity,
				})
			}

			res := pricing.PriceCart(lines, offers, coupon, now)

			// Claim the redemption before freezing anything. The one-use
			// check travels in the filter, so a concurrent checkout that
			// already added this user loses the claim and the order is
			// re-priced without the discount.
			if res.CouponApplied && coupon != nil {
				claimFilter, claimUpdate := couponClaim(coupon.ID, userID)
				claimRes, err := db.Collection("coupons").UpdateOne(sessCtx, claimFilter, claimUpdate)
				if err != nil {
					return nil, err
				}
				if claimRes.MatchedCount == 0 {
					log.Println("[ORDER] [WARN] coupon already redeemed, repricing without it:", coupon.Name)
					res = pricing.PriceCart(lines, offers, nil, now)
				}
			}

			items := make([]models.OrderItem, 0, len(res.Lines))
			for _, line := range res.Lines {
				items = append(items, models.OrderItem{
					ID:              primitive.NewObjectID(),
					ProductID:       line.ProductID,
					Quantity:        line.Quantity,
					Price:           line.Price,
					DiscountedPrice: line.DiscountedPrice,
					TotalPrice:      line.TotalPrice,
					Offer:           line.Offer,
					CouponDiscount:  line.CouponDiscount,
					Status:          models.StatusPending,
				})
			}

			order = models.Order{
				OrderID:        newOrderRef(),
				UserID:         userID,
				Items:          items,
				TotalPrice:     res.OriginalTotal,
				OfferDiscount:  res.OfferDiscount,
				CouponDiscount: res.CouponDiscount,
				Discount:       pricing.Round2(res.OfferDiscount + res.CouponDiscount),
				FinalAmount:    res.FinalTotal,
				Address:        models.OrderAddressFrom(address),
				PaymentMethod:  payment,
				CouponApplied:  res.CouponApplied,
				Status:         models.StatusPending,
				InvoiceDate:    now,
				CreatedOn:      now,
				UpdatedAt:      now,
			}
			if res.CouponApplied && coupon != nil {
				order.CouponCode = coupon.Name
			}

			if payment == models.PaymentMethodWallet {
				if err := debitWalletTx(sessCtx, db, userID, order.FinalAmount,
					fmt.Sprintf("Payment for order %s", order.OrderID), now); err != nil {
					return nil, err
				}
			}

			// Conditional decrement: the stock check travels in the filter
			// so a concurrent checkout cannot oversell.
			for _, item := range items {
				filter := bson.M{
					"_id":      item.ProductID,
					"quantity": bson.M{"$gte": item.Quantity},
				}
				update := bson.M{"$inc": bson.M{"quantity": -item.Quantity}}

				updateRes, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if updateRes.MatchedCount == 0 {
					p := productByID[item.ProductID]
					return nil, outOfStockError{
						ProductID: item.ProductID,
						Available: p.Quantity,
						Requested: item.Quantity,
					}
				}
			}

			insertRes, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := insertRes.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}

			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				metrics.CheckoutFailedTotal.WithLabelValues("out_of_stock").Inc()
				c.JSON(http.StatusConflict, gin.H{
					"error":     "product out of stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				metrics.CheckoutFailedTotal.WithLabelValues("product_unavailable").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product is not available",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			var walletErr insufficientWalletError
			if errors.As(err, &walletErr) {
				metrics.CheckoutFailedTotal.WithLabelValues("wallet_balance").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error":    "insufficient wallet balance",
					"balance":  walletErr.Balance,
					"required": walletErr.Required,
				})
				return
			}
			log.Println("[ORDER] [ERROR] checkout transaction failed:", err)
			metrics.CheckoutFailedTotal.WithLabelValues("internal").Inc()
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Post-commit cleanup. Failures here leave a stale cart, not a bad
		// order, so they are logged and swallowed.
		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
			log.Println("[ORDER] [WARN] cart cleanup failed:", err)
		}
		if err := coupons.Clear(ctx, userID); err != nil {
			log.Println("[ORDER] [WARN] coupon slot cleanup failed:", err)
		}

		metrics.OrdersCreatedTotal.Inc()
		log.Println("[ORDER] [INFO] order created:", order.OrderID)
		c.JSON(http.StatusCreated, gin.H{
			"orderId":     order.OrderID,
			"finalAmount": order.FinalAmount,
			"message":     "order created",
		})
	}
}

func resolveAddress(user models.User, addressID string) (models.Address, bool) {
	if addressID == "" {
		return user.DefaultAddress()
	}
	id, err := primitive.ObjectIDFromHex(addressID)
	if err != nil {
		return models.Address{}, false
	}
	for _, a := range user.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return models.Address{}, false
}

// debitWalletTx withdraws the order amount inside the checkout transaction.
// The balance check travels in the filter so two concurrent wallet orders
// cannot both spend the same funds.
func debitWalletTx(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, amount float64, description string, now time.Time) error {
	var wallet models.Wallet
	err := db.Collection("wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet)
	if err == mongo.ErrNoDocuments {
		return insufficientWalletError{Balance: 0, Required: amount}
	}
	if err != nil {
		return err
	}
	if wallet.Balance < amount {
		return insufficientWalletError{Balance: wallet.Balance, Required: amount}
	}

	res, err := db.Collection("wallets").UpdateOne(ctx,
		bson.M{"userId": userID, "balance": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{"balance": -amount},
			"$push": bson.M{"transactions": bson.M{
				"$each": []models.WalletTransaction{{
					Amount:      amount,
					Type:        models.TransactionDebit,
					Date:        now,
					Description: description,
				}},
				"$position": 0,
			}},
			"$set": bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return insufficientWalletError{Balance: wallet.Balance, Required: amount}
	}
	return nil
}
