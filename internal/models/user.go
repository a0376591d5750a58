package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a single address book entry for a user.
type Address struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Street    string             `bson:"street" json:"street"`
	City      string             `bson:"city" json:"city"`
	State     string             `bson:"state,omitempty" json:"state,omitempty"`
	Pincode   string             `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Landmark  string             `bson:"landmark,omitempty" json:"landmark,omitempty"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
}

// User represents the application user account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsBlocked    bool               `bson:"isBlocked" json:"isBlocked"`
	Addresses    []Address          `bson:"addresses" json:"addresses"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderAddressFrom snapshots an address book entry onto an order.
func OrderAddressFrom(a Address) OrderAddress {
	return OrderAddress{
		Name:     a.Name,
		Street:   a.Street,
		City:     a.City,
		State:    a.State,
		Pincode:  a.Pincode,
		Phone:    a.Phone,
		Landmark: a.Landmark,
	}
}

// DefaultAddress returns the default entry, falling back to the first one.
func (u User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(u.Addresses) > 0 {
		return u.Addresses[0], true
	}
	return Address{}, false
}
