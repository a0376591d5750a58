package pricing

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Line is one cart line as input to a pricing pass. Price is the sale-price
// snapshot taken at add-to-cart time.
type Line struct {
	ProductID  primitive.ObjectID
	CategoryID primitive.ObjectID
	Price      float64
	Quantity   int
}

// PricedLine is the result of pricing one line.
type PricedLine struct {
	Line
	DiscountedPrice float64
	TotalPrice      float64
	Offer           *models.OfferSnapshot
	CouponDiscount  float64
}

// Result is the outcome of one full cart pricing pass. The totals satisfy
// FinalTotal == OriginalTotal - OfferDiscount - CouponDiscount within
// two-decimal rounding tolerance.
type Result struct {
	Lines            []PricedLine
	OriginalTotal    float64
	OfferDiscount    float64
	CouponDiscount   float64
	FinalTotal       float64
	HasOfferProducts bool
	CouponApplied    bool
}

// PriceCart applies the offer resolver to every line and then, if a coupon
// is attached, distributes its flat discount proportionally across lines by
// each line's share of the post-offer subtotal.
//
// Offer and coupon discounts are mutually exclusive: when any line carries
// an active offer the coupon is ignored for this pass. A coupon that is
// unlisted, expired, or below its minimum-purchase threshold is likewise
// ignored. Callers that hold a session-attached coupon should clear it
// whenever coupon != nil and CouponApplied is false.
func PriceCart(lines []Line, offers Offers, coupon *models.Coupon, now time.Time) Result {
	res := Result{Lines: make([]PricedLine, 0, len(lines))}

	for _, line := range lines {
		offer, discountedPrice := ResolveOffer(line.ProductID, line.CategoryID, line.Price, offers, now)
		priced := PricedLine{
			Line:            line,
			DiscountedPrice: discountedPrice,
			TotalPrice:      Round2(discountedPrice * float64(line.Quantity)),
			Offer:           offer,
		}
		if offer != nil {
			res.HasOfferProducts = true
			res.OfferDiscount += (line.Price - discountedPrice) * float64(line.Quantity)
		}
		res.OriginalTotal += line.Price * float64(line.Quantity)
		res.Lines = append(res.Lines, priced)
	}

	totalAfterOffers := 0.0
	for _, l := range res.Lines {
		totalAfterOffers += l.TotalPrice
	}

	if coupon != nil && !res.HasOfferProducts && couponCovers(*coupon, totalAfterOffers, now) {
		res.CouponDiscount = coupon.OfferPrice
		res.CouponApplied = true
		distributeCoupon(res.Lines, coupon.OfferPrice, totalAfterOffers)
	}

	for _, l := range res.Lines {
		res.FinalTotal += l.TotalPrice
	}
	res.OriginalTotal = Round2(res.OriginalTotal)
	res.OfferDiscount = Round2(res.OfferDiscount)
	res.FinalTotal = Round2(res.FinalTotal)
	return res
}

// couponCovers checks listing, expiry and the minimum-purchase threshold
// against the post-offer subtotal. An empty subtotal never qualifies, even
// when the coupon carries no minimum.
func couponCovers(cp models.Coupon, totalAfterOffers float64, now time.Time) bool {
	if !cp.IsList || cp.ExpireOn.Before(now) {
		return false
	}
	if totalAfterOffers <= 0 {
		return false
	}
	return totalAfterOffers >= cp.MinimumPrice
}

// distributeCoupon splits a flat discount across lines proportionally to
// each line's share of the subtotal. Each line's unit price absorbs its
// share so that lineTotal drops by exactly that share.
func distributeCoupon(lines []PricedLine, discount, subtotal float64) {
	if subtotal <= 0 {
		return
	}
	for i := range lines {
		share := discount * (lines[i].TotalPrice / subtotal)
		lines[i].CouponDiscount = Round2(share)
		lines[i].DiscountedPrice = Round2(lines[i].DiscountedPrice - share/float64(lines[i].Quantity))
		lines[i].TotalPrice = Round2(lines[i].DiscountedPrice * float64(lines[i].Quantity))
	}
}
