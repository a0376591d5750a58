package handlers

import (
	"testing"

	"storefront/internal/models"
)

func TestRefundableLine(t *testing.T) {
	cases := []struct {
		name    string
		payment string
		status  string
		want    bool
	}{
		{"returned card line", models.PaymentMethodCard, models.StatusReturned, true},
		{"returned cod line", models.PaymentMethodCOD, models.StatusReturned, true},
		{"cancelled card line", models.PaymentMethodCard, models.StatusCancelled, true},
		{"cancelled wallet line", models.PaymentMethodWallet, models.StatusCancelled, true},
		{"cancelled cod line", models.PaymentMethodCOD, models.StatusCancelled, false},
		{"delivered line", models.PaymentMethodCard, models.StatusDelivered, false},
		{"pending line", models.PaymentMethodCard, models.StatusPending, false},
	}
	for _, tc := range cases {
		order := models.Order{PaymentMethod: tc.payment}
		item := models.OrderItem{Status: tc.status}
		if got := refundableLine(order, item); got != tc.want {
			t.Errorf("%s: refundableLine = %v, want %v", tc.name, got, tc.want)
		}
	}
}
