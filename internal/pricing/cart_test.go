package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func testCoupon(offerPrice, minimumPrice float64) *models.Coupon {
	return &models.Coupon{
		ID:           primitive.NewObjectID(),
		Name:         "SAVE100",
		OfferPrice:   offerPrice,
		MinimumPrice: minimumPrice,
		ExpireOn:     testNow.AddDate(0, 1, 0),
		IsList:       true,
	}
}

func TestPriceCartOfferOnly(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product: []models.ProductOffer{productOffer(productID, 10, weekAgo, &weekFromNow)},
	}
	lines := []Line{{ProductID: productID, CategoryID: categoryID, Price: 1000, Quantity: 1}}

	res := PriceCart(lines, offers, nil, testNow)

	assert.Equal(t, 1000.0, res.OriginalTotal)
	assert.Equal(t, 100.0, res.OfferDiscount)
	assert.Equal(t, 0.0, res.CouponDiscount)
	assert.Equal(t, 900.0, res.FinalTotal)
	assert.True(t, res.HasOfferProducts)
	assert.False(t, res.CouponApplied)
	assert.Equal(t, 900.0, res.Lines[0].DiscountedPrice)
	assert.Equal(t, 900.0, res.Lines[0].TotalPrice)
	assert.NotNil(t, res.Lines[0].Offer)
}

func TestPriceCartCouponRejectedWhenOffersPresent(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product: []models.ProductOffer{productOffer(productID, 10, weekAgo, &weekFromNow)},
	}
	lines := []Line{{ProductID: productID, CategoryID: categoryID, Price: 1000, Quantity: 1}}

	res := PriceCart(lines, offers, testCoupon(100, 500), testNow)

	assert.False(t, res.CouponApplied)
	assert.Equal(t, 0.0, res.CouponDiscount)
	assert.Equal(t, 900.0, res.FinalTotal)
}

func TestPriceCartCouponSplitProportionally(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	lines := []Line{
		{ProductID: first, CategoryID: categoryID, Price: 600, Quantity: 1},
		{ProductID: second, CategoryID: categoryID, Price: 400, Quantity: 1},
	}

	res := PriceCart(lines, Offers{}, testCoupon(100, 500), testNow)

	assert.True(t, res.CouponApplied)
	assert.Equal(t, 100.0, res.CouponDiscount)
	assert.Equal(t, 900.0, res.FinalTotal)
	assert.Equal(t, 60.0, res.Lines[0].CouponDiscount)
	assert.Equal(t, 40.0, res.Lines[1].CouponDiscount)
	assert.Equal(t, 540.0, res.Lines[0].TotalPrice)
	assert.Equal(t, 360.0, res.Lines[1].TotalPrice)
}

func TestPriceCartCouponBelowMinimum(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	lines := []Line{{ProductID: productID, CategoryID: categoryID, Price: 300, Quantity: 1}}

	res := PriceCart(lines, Offers{}, testCoupon(100, 500), testNow)

	assert.False(t, res.CouponApplied)
	assert.Equal(t, 300.0, res.FinalTotal)
}

func TestPriceCartCouponExpiredOrUnlisted(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()
	lines := []Line{{ProductID: productID, CategoryID: categoryID, Price: 1000, Quantity: 1}}

	expired := testCoupon(100, 500)
	expired.ExpireOn = testNow.AddDate(0, 0, -1)
	res := PriceCart(lines, Offers{}, expired, testNow)
	assert.False(t, res.CouponApplied)

	unlisted := testCoupon(100, 500)
	unlisted.IsList = false
	res = PriceCart(lines, Offers{}, unlisted, testNow)
	assert.False(t, res.CouponApplied)
}

func TestPriceCartCouponSharesSumToDiscount(t *testing.T) {
	categoryID := primitive.NewObjectID()
	lines := []Line{
		{ProductID: primitive.NewObjectID(), CategoryID: categoryID, Price: 333, Quantity: 1},
		{ProductID: primitive.NewObjectID(), CategoryID: categoryID, Price: 219, Quantity: 2},
		{ProductID: primitive.NewObjectID(), CategoryID: categoryID, Price: 149.5, Quantity: 3},
	}

	res := PriceCart(lines, Offers{}, testCoupon(75, 500), testNow)

	assert.True(t, res.CouponApplied)
	var shares float64
	for _, l := range res.Lines {
		shares += l.CouponDiscount
		assert.GreaterOrEqual(t, l.CouponDiscount, 0.0)
	}
	assert.InDelta(t, 75.0, shares, 0.02)
}

func TestPriceCartMultiQuantityLine(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Category: []models.CategoryOffer{categoryOffer(categoryID, 20, weekAgo, &weekFromNow)},
	}
	lines := []Line{{ProductID: productID, CategoryID: categoryID, Price: 250, Quantity: 4}}

	res := PriceCart(lines, offers, nil, testNow)

	assert.Equal(t, 1000.0, res.OriginalTotal)
	assert.Equal(t, 200.0, res.Lines[0].DiscountedPrice)
	assert.Equal(t, 800.0, res.Lines[0].TotalPrice)
	assert.Equal(t, 800.0, res.FinalTotal)
}

func TestPriceCartDiscountIdentity(t *testing.T) {
	categoryID := primitive.NewObjectID()
	lines := []Line{
		{ProductID: primitive.NewObjectID(), CategoryID: categoryID, Price: 499.99, Quantity: 2},
		{ProductID: primitive.NewObjectID(), CategoryID: categoryID, Price: 89.5, Quantity: 1},
	}

	res := PriceCart(lines, Offers{}, testCoupon(50, 500), testNow)

	got := res.OriginalTotal - res.OfferDiscount - res.CouponDiscount
	assert.True(t, math.Abs(got-res.FinalTotal) < 0.02,
		"final %.2f should equal original-offers-coupon %.2f", res.FinalTotal, got)
}

func TestPriceCartEmpty(t *testing.T) {
	res := PriceCart(nil, Offers{}, testCoupon(100, 0), testNow)
	assert.Empty(t, res.Lines)
	assert.False(t, res.CouponApplied)
	assert.Equal(t, 0.0, res.FinalTotal)
}

func TestPriceCartZeroMinimumCouponNeedsNonEmptySubtotal(t *testing.T) {
	// a no-minimum coupon must still not attach to an empty subtotal
	for _, lines := range [][]Line{nil, {}} {
		res := PriceCart(lines, Offers{}, testCoupon(100, 0), testNow)
		assert.False(t, res.CouponApplied)
		assert.Equal(t, 0.0, res.CouponDiscount)
		assert.Equal(t, res.FinalTotal, res.OriginalTotal-res.OfferDiscount-res.CouponDiscount)
	}

	// and still applies as soon as there is something to discount
	categoryID := primitive.NewObjectID()
	res := PriceCart([]Line{{ProductID: primitive.NewObjectID(), CategoryID: categoryID, Price: 150, Quantity: 1}},
		Offers{}, testCoupon(100, 0), testNow)
	assert.True(t, res.CouponApplied)
	assert.Equal(t, 50.0, res.FinalTotal)
}
