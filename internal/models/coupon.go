package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a flat-amount discount code. UsedBy is the one-use-per-user
// redemption set; a user id is added atomically only after their order
// has been persisted.
type Coupon struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	OfferPrice   float64              `bson:"offerPrice" json:"offerPrice"`
	MinimumPrice float64              `bson:"minimumPrice" json:"minimumPrice"`
	ExpireOn     time.Time            `bson:"expireOn" json:"expireOn"`
	IsList       bool                 `bson:"isList" json:"isList"`
	UsedBy       []primitive.ObjectID `bson:"usedBy" json:"-"`
	CreatedOn    time.Time            `bson:"createdOn" json:"createdOn"`
}

// UsableBy reports whether the coupon is listed, unexpired at now, and not
// yet redeemed by the given user. The minimum-purchase check is separate
// because it depends on the cart total.
func (cp Coupon) UsableBy(userID primitive.ObjectID, now time.Time) bool {
	if !cp.IsList || cp.ExpireOn.Before(now) {
		return false
	}
	for _, id := range cp.UsedBy {
		if id == userID {
			return false
		}
	}
	return true
}
