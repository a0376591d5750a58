package pricing

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func orderItem(total float64, status string) models.OrderItem {
	return models.OrderItem{
		ID:         primitive.NewObjectID(),
		Quantity:   1,
		TotalPrice: total,
		Status:     status,
	}
}

func TestRefundForItemWithCouponShare(t *testing.T) {
	items := []models.OrderItem{
		orderItem(540, models.StatusDelivered),
		orderItem(360, models.StatusDelivered),
	}
	subtotal := OrderSubtotal(items)
	if subtotal != 900 {
		t.Fatalf("expected subtotal 900, got %v", subtotal)
	}

	// 540 - (540/900)*100 = 480
	refund := RefundForItem(items[0], subtotal, 100)
	if refund != 480 {
		t.Fatalf("expected refund 480, got %v", refund)
	}

	refund = RefundForItem(items[1], subtotal, 100)
	if refund != 320 {
		t.Fatalf("expected refund 320, got %v", refund)
	}
}

func TestRefundForItemNoCoupon(t *testing.T) {
	item := orderItem(750.5, models.StatusDelivered)
	refund := RefundForItem(item, 750.5, 0)
	if refund != 750.5 {
		t.Fatalf("expected full line total back, got %v", refund)
	}
}

func TestRefundForItemZeroSubtotal(t *testing.T) {
	item := orderItem(0, models.StatusCancelled)
	refund := RefundForItem(item, 0, 100)
	if refund != 0 {
		t.Fatalf("expected zero refund, got %v", refund)
	}
}

func TestRefundForItemNeverExceedsLineTotal(t *testing.T) {
	item := orderItem(100, models.StatusDelivered)
	refund := RefundForItem(item, 100, 50)
	if refund < 0 || refund > item.TotalPrice {
		t.Fatalf("refund %v out of [0, %v]", refund, item.TotalPrice)
	}
}

func TestRefundDescriptionIsStableForSameLine(t *testing.T) {
	itemID := primitive.NewObjectID()
	first := RefundDescription("TLX-1234", itemID, models.StatusCancelled)
	second := RefundDescription("TLX-1234", itemID, models.StatusCancelled)
	if first != second {
		t.Fatalf("descriptions differ: %q vs %q", first, second)
	}
	if !strings.Contains(first, "TLX-1234") || !strings.Contains(first, itemID.Hex()) {
		t.Fatalf("description missing order or item reference: %q", first)
	}

	returned := RefundDescription("TLX-1234", itemID, models.StatusReturned)
	if returned == first {
		t.Fatal("cancel and return refunds for the same line must have distinct descriptions")
	}
}

func TestRemainingActiveTotal(t *testing.T) {
	cancelled := orderItem(200, models.StatusCancelled)
	active := orderItem(600, models.StatusConfirmed)
	leaving := orderItem(300, models.StatusConfirmed)

	items := []models.OrderItem{cancelled, active, leaving}
	got := RemainingActiveTotal(items, leaving.ID)
	if got != 600 {
		t.Fatalf("expected 600 remaining, got %v", got)
	}
}

func TestDeriveOrderStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		current  string
		want     string
	}{
		{"all cancelled", []string{models.StatusCancelled, models.StatusCancelled}, models.StatusConfirmed, models.StatusCancelled},
		{"all closed", []string{models.StatusCancelled, models.StatusReturned}, models.StatusDelivered, models.StatusReturned},
		{"return pending", []string{models.StatusDelivered, models.StatusReturnRequest}, models.StatusDelivered, models.StatusReturnRequest},
		{"all terminal", []string{models.StatusDelivered, models.StatusCancelled}, models.StatusShipped, models.StatusDelivered},
		{"in flight", []string{models.StatusConfirmed, models.StatusCancelled}, models.StatusConfirmed, models.StatusConfirmed},
		{"empty", nil, models.StatusPending, models.StatusPending},
	}

	for _, tc := range cases {
		items := make([]models.OrderItem, 0, len(tc.statuses))
		for _, s := range tc.statuses {
			items = append(items, orderItem(100, s))
		}
		if got := DeriveOrderStatus(items, tc.current); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
