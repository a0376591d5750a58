package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponStore keeps the coupon a user has applied to their cart. The slot
// is advisory: checkout re-validates the coupon against the database before
// freezing anything, so a stale or evicted slot only costs the discount.
type CouponStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCouponStore(client *redis.Client, ttl time.Duration) *CouponStore {
	return &CouponStore{client: client, ttl: ttl}
}

func couponKey(userID primitive.ObjectID) string {
	return fmt.Sprintf("coupon:%s", userID.Hex())
}

// Apply records couponID as the user's applied coupon, replacing any
// previous slot value.
func (s *CouponStore) Apply(ctx context.Context, userID, couponID primitive.ObjectID) error {
	return s.client.Set(ctx, couponKey(userID), couponID.Hex(), s.ttl).Err()
}

// Applied returns the user's applied coupon id, or ok=false when no slot
// is set.
func (s *CouponStore) Applied(ctx context.Context, userID primitive.ObjectID) (primitive.ObjectID, bool, error) {
	val, err := s.client.Get(ctx, couponKey(userID)).Result()
	if err == redis.Nil {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	couponID, err := primitive.ObjectIDFromHex(val)
	if err != nil {
		// garbage in the slot, treat as unset
		return primitive.NilObjectID, false, nil
	}
	return couponID, true, nil
}

// Clear removes the user's applied coupon slot.
func (s *CouponStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.client.Del(ctx, couponKey(userID)).Err()
}
