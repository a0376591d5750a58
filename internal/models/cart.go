package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem snapshots the sale price at add-to-cart time. DiscountedPrice and
// TotalPrice are recomputed on every view since offers and coupons can change
// between visits.
type CartItem struct {
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Price           float64            `bson:"price" json:"price"`
	DiscountedPrice float64            `bson:"discountedPrice" json:"discountedPrice"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ItemIndex returns the position of the line for the given product, or -1.
func (c Cart) ItemIndex(productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
