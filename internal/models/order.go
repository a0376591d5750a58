package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item and order statuses. Each line carries its own status; the order
// status is derived from the lines after every mutation.
const (
	StatusPending       = "pending"
	StatusConfirmed     = "confirmed"
	StatusShipped       = "shipped"
	StatusDelivered     = "delivered"
	StatusCancelled     = "cancelled"
	StatusReturnRequest = "returnrequest"
	StatusReturned      = "returned"
)

// Payment methods are an explicit enum. COD cancellations are never
// refunded to the wallet because no money was collected.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodWallet:
		return true
	}
	return false
}

// OrderItem freezes the pricing of one cart line at checkout. Price fields
// never change after creation; only Status, the reason fields and
// RefundProcessed mutate.
type OrderItem struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	ProductID          primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	Price              float64            `bson:"price" json:"price"`
	DiscountedPrice    float64            `bson:"discountedPrice" json:"discountedPrice"`
	TotalPrice         float64            `bson:"totalPrice" json:"totalPrice"`
	Offer              *OfferSnapshot     `bson:"offer,omitempty" json:"offer,omitempty"`
	CouponDiscount     float64            `bson:"couponDiscount" json:"couponDiscount"`
	Status             string             `bson:"status" json:"status"`
	CancellationReason string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	ReturnReason       string             `bson:"returnReason,omitempty" json:"returnReason,omitempty"`
	RefundProcessed    bool               `bson:"refundProcessed" json:"refundProcessed"`
	RequestedAt        time.Time          `bson:"requestedAt" json:"requestedAt"`
}

// OrderAddress is the delivery address frozen onto the order.
type OrderAddress struct {
	Name     string `bson:"name" json:"name"`
	Street   string `bson:"street" json:"street"`
	City     string `bson:"city" json:"city"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode  string `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Landmark string `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

// Order is created once at checkout and is immutable afterwards except for
// status transitions. TotalPrice is the pre-discount total; FinalAmount is
// what the customer was actually charged.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        string             `bson:"orderId" json:"orderId"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Items          []OrderItem        `bson:"orderedItem" json:"orderedItem"`
	TotalPrice     float64            `bson:"totalPrice" json:"totalPrice"`
	OfferDiscount  float64            `bson:"offerDiscount" json:"offerDiscount"`
	CouponDiscount float64            `bson:"couponDiscount" json:"couponDiscount"`
	Discount       float64            `bson:"discount" json:"discount"`
	FinalAmount    float64            `bson:"finalAmount" json:"finalAmount"`
	Address        OrderAddress       `bson:"address" json:"address"`
	PaymentMethod  string             `bson:"paymentMethod" json:"paymentMethod"`
	CouponApplied  bool               `bson:"couponApplied" json:"couponApplied"`
	CouponCode     string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	Status         string             `bson:"status" json:"status"`
	InvoiceDate    time.Time          `bson:"invoiceDate" json:"invoiceDate"`
	CreatedOn      time.Time          `bson:"createOn" json:"createOn"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Item returns a pointer to the line with the given id, or nil.
func (o *Order) Item(itemID primitive.ObjectID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
