package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusShipped, true},
		{models.StatusConfirmed, models.StatusShipped, true},
		{models.StatusShipped, models.StatusDelivered, true},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusDelivered, models.StatusShipped, false},
		{models.StatusShipped, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
		{models.StatusDelivered, models.StatusReturned, false},
	}
	for _, tc := range cases {
		if got := validTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("validTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestResolveReturnTargetsDefaultsToPendingReturns(t *testing.T) {
	requested := primitive.NewObjectID()
	delivered := primitive.NewObjectID()
	order := models.Order{Items: []models.OrderItem{
		{ID: requested, Status: models.StatusReturnRequest},
		{ID: delivered, Status: models.StatusDelivered},
	}}

	targets, err := resolveReturnTargets(order, returnActionRequest{Action: "accept"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 1 || targets[0] != requested {
		t.Fatalf("targets = %v, want only %s", targets, requested.Hex())
	}
}

func TestResolveReturnTargetsExplicitIDs(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	order := models.Order{}

	req := returnActionRequest{
		Action:  "accept",
		ItemID:  second.Hex(),
		ItemIDs: []string{first.Hex()},
	}
	targets, err := resolveReturnTargets(order, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 2 || targets[0] != first || targets[1] != second {
		t.Fatalf("targets = %v, want [%s %s]", targets, first.Hex(), second.Hex())
	}
}

func TestResolveReturnTargetsRejectsBadID(t *testing.T) {
	_, err := resolveReturnTargets(models.Order{}, returnActionRequest{ItemID: "not-an-id"})
	if err == nil {
		t.Fatal("expected error for malformed item id")
	}
}

func TestPendingReturnTargetsSkipsSettledLines(t *testing.T) {
	awaiting := primitive.NewObjectID()
	returned := primitive.NewObjectID()
	delivered := primitive.NewObjectID()
	order := models.Order{Items: []models.OrderItem{
		{ID: awaiting, Status: models.StatusReturnRequest},
		{ID: returned, Status: models.StatusReturned, RefundProcessed: true},
		{ID: delivered, Status: models.StatusDelivered},
	}}

	pending := pendingReturnTargets(order, []primitive.ObjectID{awaiting, returned, delivered})
	if len(pending) != 1 || pending[0] != awaiting {
		t.Fatalf("pending = %v, want only %s", pending, awaiting.Hex())
	}

	// replaying the action against an already-returned line leaves nothing to do
	if pending := pendingReturnTargets(order, []primitive.ObjectID{returned}); len(pending) != 0 {
		t.Fatalf("pending = %v, want empty for a settled line", pending)
	}

	// unknown ids resolve to nothing rather than panicking
	if pending := pendingReturnTargets(order, []primitive.ObjectID{primitive.NewObjectID()}); len(pending) != 0 {
		t.Fatalf("pending = %v, want empty for an unknown id", pending)
	}
}

func TestPaymentSummaryCardOrder(t *testing.T) {
	order := models.Order{
		PaymentMethod:  models.PaymentMethodCard,
		CouponDiscount: 100,
		FinalAmount:    900,
		Status:         models.StatusDelivered,
		Items: []models.OrderItem{
			{ID: primitive.NewObjectID(), TotalPrice: 540, Status: models.StatusReturned, RefundProcessed: true},
			{ID: primitive.NewObjectID(), TotalPrice: 360, Status: models.StatusDelivered},
		},
	}

	summary := paymentSummary(order)
	if summary["paid"] != 900.0 {
		t.Errorf("paid = %v, want 900", summary["paid"])
	}
	if summary["refunded"] != 480.0 {
		t.Errorf("refunded = %v, want 480", summary["refunded"])
	}
}

func TestPaymentSummaryCODNotYetDelivered(t *testing.T) {
	order := models.Order{
		PaymentMethod: models.PaymentMethodCOD,
		FinalAmount:   500,
		Status:        models.StatusShipped,
	}

	summary := paymentSummary(order)
	if summary["paid"] != 0.0 {
		t.Errorf("paid = %v, want 0 before COD delivery", summary["paid"])
	}
}
