package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OfferTypeProduct  = "Product Offer"
	OfferTypeCategory = "Category Offer"
)

// ProductOffer is a time-bounded percentage discount on a single product.
type ProductOffer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	OfferName string             `bson:"offerName" json:"offerName"`
	Discount  float64            `bson:"discount" json:"discount"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   *time.Time         `bson:"endDate" json:"endDate"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CategoryOffer is a time-bounded percentage discount on every product in a category.
type CategoryOffer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryID primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	OfferName  string             `bson:"offerName" json:"offerName"`
	Discount   float64            `bson:"discount" json:"discount"`
	StartDate  time.Time          `bson:"startDate" json:"startDate"`
	EndDate    *time.Time         `bson:"endDate" json:"endDate"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// OfferSnapshot is the offer metadata frozen onto cart lines and order lines.
type OfferSnapshot struct {
	OfferName string  `bson:"offerName" json:"offerName"`
	Discount  float64 `bson:"discount" json:"discount"`
	Type      string  `bson:"type" json:"type"`
}

// ActiveAt reports whether the offer window covers the given instant.
// A nil end date means the offer never expires.
func (o ProductOffer) ActiveAt(now time.Time) bool {
	return activeWindow(o.StartDate, o.EndDate, now)
}

func (o CategoryOffer) ActiveAt(now time.Time) bool {
	return activeWindow(o.StartDate, o.EndDate, now)
}

func activeWindow(start time.Time, end *time.Time, now time.Time) bool {
	if start.After(now) {
		return false
	}
	return end == nil || end.After(now)
}
