package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/pricing"
)

// loadOffers fetches every offer whose window could be active. Window
// filtering against the exact instant happens in the pricing package.
func loadOffers(ctx context.Context, db *mongo.Database, now time.Time) (pricing.Offers, error) {
	var offers pricing.Offers

	filter := bson.M{
		"startDate": bson.M{"$lte": now},
		"$or": []bson.M{
			{"endDate": nil},
			{"endDate": bson.M{"$gt": now}},
		},
	}

	cursor, err := db.Collection("product_offers").Find(ctx, filter)
	if err != nil {
		return offers, err
	}
	if err := cursor.All(ctx, &offers.Product); err != nil {
		return offers, err
	}

	cursor, err = db.Collection("category_offers").Find(ctx, filter)
	if err != nil {
		return offers, err
	}
	if err := cursor.All(ctx, &offers.Category); err != nil {
		return offers, err
	}

	return offers, nil
}

// loadCartProducts resolves every cart line to its purchasable product.
// Lines whose product has been unlisted or blocked since add-to-cart are
// reported through the second return value so callers can surface them.
func loadCartProducts(ctx context.Context, db *mongo.Database, cart models.Cart) (map[primitive.ObjectID]models.Product, []primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.Product{}, nil, nil
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, nil, err
	}

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, nil, err
	}

	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var unavailable []primitive.ObjectID
	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		if !ok || !p.Purchasable() {
			unavailable = append(unavailable, item.ProductID)
		}
	}

	return byID, unavailable, nil
}

// cartLines converts cart items to pricing lines using the current sale
// price, not the price captured at add-to-cart time.
func cartLines(cart models.Cart, products map[primitive.ObjectID]models.Product) []pricing.Line {
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, pricing.Line{
			ProductID:  p.ID,
			CategoryID: p.Category,
			Price:      p.SalePrice,
			Quantity:   item.Quantity,
		})
	}
	return lines
}

// appliedCoupon loads the coupon recorded in the user's session slot and
// validates it against the database. A missing slot, missing document or a
// coupon no longer usable by the user all yield nil.
func appliedCoupon(ctx context.Context, db *mongo.Database, coupons couponSlot, userID primitive.ObjectID, now time.Time) (*models.Coupon, error) {
	couponID, ok, err := coupons.Applied(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var coupon models.Coupon
	if err := db.Collection("coupons").FindOne(ctx, bson.M{"_id": couponID}).Decode(&coupon); err != nil {
		if err == mongo.ErrNoDocuments {
			_ = coupons.Clear(ctx, userID)
			return nil, nil
		}
		return nil, err
	}

	if !coupon.UsableBy(userID, now) {
		_ = coupons.Clear(ctx, userID)
		return nil, nil
	}

	return &coupon, nil
}

// couponSlot is the session surface the handlers need. Satisfied by
// *session.CouponStore.
type couponSlot interface {
	Apply(ctx context.Context, userID, couponID primitive.ObjectID) error
	Applied(ctx context.Context, userID primitive.ObjectID) (primitive.ObjectID, bool, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}
