package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	SalePrice   float64            `bson:"salePrice" json:"salePrice"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	IsListed    bool               `bson:"isListed" json:"isListed"`
	IsBlocked   bool               `bson:"isBlocked" json:"isBlocked"`
	InStock     bool               `bson:"-" json:"inStock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Purchasable reports whether the product may appear in carts and orders.
func (p Product) Purchasable() bool {
	return p.IsListed && !p.IsBlocked
}
