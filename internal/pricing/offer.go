package pricing

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Offers carries the active offer entries a pricing pass evaluates against.
// Callers load them with the active-window query and the resolver re-checks
// each entry's window so stale reads cannot apply an expired discount.
type Offers struct {
	Product  []models.ProductOffer
	Category []models.CategoryOffer
}

// Round2 rounds to two decimal places. All monetary amounts are rounded at
// the point of persistence or display so proportional splits cannot
// accumulate floating-point drift.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ResolveOffer picks the single best applicable discount for a product.
// Product-level entries are scanned first; a category-level entry replaces
// the running selection only on a strictly greater discount, so ties go to
// the product offer. Returns a nil snapshot and the base price when no
// active entry applies.
func ResolveOffer(productID, categoryID primitive.ObjectID, basePrice float64, offers Offers, now time.Time) (*models.OfferSnapshot, float64) {
	var selected *models.OfferSnapshot
	maxDiscount := 0.0
	discountedPrice := basePrice

	for _, po := range offers.Product {
		if po.ProductID != productID || !po.ActiveAt(now) {
			continue
		}
		if po.Discount > maxDiscount {
			maxDiscount = po.Discount
			selected = &models.OfferSnapshot{
				OfferName: po.OfferName,
				Discount:  po.Discount,
				Type:      models.OfferTypeProduct,
			}
			discountedPrice = basePrice * (1 - po.Discount/100)
		}
	}

	for _, co := range offers.Category {
		if co.CategoryID != categoryID || !co.ActiveAt(now) {
			continue
		}
		if co.Discount > maxDiscount {
			maxDiscount = co.Discount
			selected = &models.OfferSnapshot{
				OfferName: co.OfferName,
				Discount:  co.Discount,
				Type:      models.OfferTypeCategory,
			}
			discountedPrice = basePrice * (1 - co.Discount/100)
		}
	}

	if selected == nil {
		return nil, basePrice
	}
	return selected, Round2(discountedPrice)
}
