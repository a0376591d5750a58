package pricing

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// OrderSubtotal sums the frozen post-offer, pre-coupon line totals. It is
// the base against which the coupon's proportional allocation is reversed.
func OrderSubtotal(items []models.OrderItem) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.TotalPrice
	}
	return sum
}

// RefundForItem computes the refund owed for one cancelled or returned
// line: the frozen line total minus the line's proportional share of the
// order's coupon discount. This is the amount the customer actually paid
// for the line, never the raw pre-discount price. Always in
// [0, item.TotalPrice].
func RefundForItem(item models.OrderItem, subtotal, couponDiscount float64) float64 {
	share := 0.0
	if couponDiscount > 0 && subtotal > 0 {
		share = (item.TotalPrice / subtotal) * couponDiscount
	}
	refund := Round2(item.TotalPrice - share)
	if refund < 0 {
		return 0
	}
	return refund
}

// RefundDescription builds the deterministic wallet idempotency key for a
// line refund. Identical inputs always yield the identical key, so a
// retried cancel or a duplicate admin accept cannot credit twice.
func RefundDescription(orderRef string, itemID primitive.ObjectID, status string) string {
	return fmt.Sprintf("Refund for %s order %s item:%s", status, orderRef, itemID.Hex())
}

// RemainingActiveTotal sums frozen line totals over lines that are not
// cancelled or returned, excluding the given line. Used by the
// coupon-minimum guard when cancelling a single line.
func RemainingActiveTotal(items []models.OrderItem, exclude primitive.ObjectID) float64 {
	sum := 0.0
	for _, it := range items {
		if it.ID == exclude {
			continue
		}
		if it.Status == models.StatusCancelled || it.Status == models.StatusReturned {
			continue
		}
		sum += it.TotalPrice
	}
	return sum
}

// DeriveOrderStatus reduces the per-line statuses to the aggregate order
// status. It is invoked after every line mutation instead of ad hoc checks
// at each call site:
//
//   - every line cancelled             -> cancelled
//   - every line cancelled or returned -> returned
//   - any line awaiting a return       -> returnrequest
//   - every line otherwise terminal    -> delivered
//
// When lines are still in flight (pending, confirmed, shipped) the current
// order status is kept.
func DeriveOrderStatus(items []models.OrderItem, current string) string {
	if len(items) == 0 {
		return current
	}

	allCancelled := true
	allClosed := true // cancelled or returned
	allTerminal := true
	anyReturnRequest := false

	for _, it := range items {
		switch it.Status {
		case models.StatusCancelled:
		case models.StatusReturned:
			allCancelled = false
		case models.StatusReturnRequest:
			anyReturnRequest = true
			allCancelled = false
			allClosed = false
			allTerminal = false
		case models.StatusDelivered:
			allCancelled = false
			allClosed = false
		default:
			allCancelled = false
			allClosed = false
			allTerminal = false
		}
	}

	switch {
	case allCancelled:
		return models.StatusCancelled
	case allClosed:
		return models.StatusReturned
	case anyReturnRequest:
		return models.StatusReturnRequest
	case allTerminal:
		return models.StatusDelivered
	}
	return current
}
