package pricing

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

var (
	testNow      = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	weekAgo      = testNow.AddDate(0, 0, -7)
	weekFromNow  = testNow.AddDate(0, 0, 7)
	monthFromNow = testNow.AddDate(0, 1, 0)
)

func productOffer(productID primitive.ObjectID, discount float64, start time.Time, end *time.Time) models.ProductOffer {
	return models.ProductOffer{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		OfferName: "Test Product Offer",
		Discount:  discount,
		StartDate: start,
		EndDate:   end,
	}
}

func categoryOffer(categoryID primitive.ObjectID, discount float64, start time.Time, end *time.Time) models.CategoryOffer {
	return models.CategoryOffer{
		ID:         primitive.NewObjectID(),
		CategoryID: categoryID,
		OfferName:  "Test Category Offer",
		Discount:   discount,
		StartDate:  start,
		EndDate:    end,
	}
}

func TestResolveOfferNoApplicableOffers(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offer, price := ResolveOffer(productID, categoryID, 1000, Offers{}, testNow)
	if offer != nil {
		t.Fatalf("expected nil offer, got %+v", offer)
	}
	if price != 1000 {
		t.Fatalf("expected base price 1000, got %v", price)
	}
}

func TestResolveOfferProductDiscount(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product: []models.ProductOffer{productOffer(productID, 10, weekAgo, &weekFromNow)},
	}

	offer, price := ResolveOffer(productID, categoryID, 1000, offers, testNow)
	if offer == nil {
		t.Fatal("expected a product offer to apply")
	}
	if offer.Type != models.OfferTypeProduct {
		t.Fatalf("expected product offer type, got %q", offer.Type)
	}
	if price != 900 {
		t.Fatalf("expected discounted price 900, got %v", price)
	}
}

func TestResolveOfferPicksMaximumDiscount(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product: []models.ProductOffer{
			productOffer(productID, 5, weekAgo, &weekFromNow),
			productOffer(productID, 25, weekAgo, &monthFromNow),
			productOffer(productID, 15, weekAgo, &weekFromNow),
		},
	}

	offer, price := ResolveOffer(productID, categoryID, 200, offers, testNow)
	if offer == nil || offer.Discount != 25 {
		t.Fatalf("expected the 25%% offer to win, got %+v", offer)
	}
	if price != 150 {
		t.Fatalf("expected discounted price 150, got %v", price)
	}
}

func TestResolveOfferCategoryOverridesOnStrictlyGreaterDiscount(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product:  []models.ProductOffer{productOffer(productID, 10, weekAgo, &weekFromNow)},
		Category: []models.CategoryOffer{categoryOffer(categoryID, 20, weekAgo, &weekFromNow)},
	}

	offer, price := ResolveOffer(productID, categoryID, 500, offers, testNow)
	if offer == nil || offer.Type != models.OfferTypeCategory {
		t.Fatalf("expected category offer to override, got %+v", offer)
	}
	if price != 400 {
		t.Fatalf("expected discounted price 400, got %v", price)
	}
}

func TestResolveOfferTieGoesToProductOffer(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product:  []models.ProductOffer{productOffer(productID, 15, weekAgo, &weekFromNow)},
		Category: []models.CategoryOffer{categoryOffer(categoryID, 15, weekAgo, &weekFromNow)},
	}

	offer, _ := ResolveOffer(productID, categoryID, 500, offers, testNow)
	if offer == nil || offer.Type != models.OfferTypeProduct {
		t.Fatalf("expected product offer to win the tie, got %+v", offer)
	}
}

func TestResolveOfferIgnoresInactiveWindows(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	past := testNow.AddDate(0, 0, -1)
	future := testNow.AddDate(0, 0, 1)

	offers := Offers{
		Product: []models.ProductOffer{
			productOffer(productID, 50, future, &monthFromNow), // not started
			productOffer(productID, 40, weekAgo, &past),        // expired
		},
	}

	offer, price := ResolveOffer(productID, categoryID, 1000, offers, testNow)
	if offer != nil {
		t.Fatalf("expected no active offer, got %+v", offer)
	}
	if price != 1000 {
		t.Fatalf("expected base price, got %v", price)
	}
}

func TestResolveOfferOpenEndedWindowIsActive(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product: []models.ProductOffer{productOffer(productID, 30, weekAgo, nil)},
	}

	offer, price := ResolveOffer(productID, categoryID, 100, offers, testNow)
	if offer == nil || offer.Discount != 30 {
		t.Fatalf("expected open-ended offer to apply, got %+v", offer)
	}
	if price != 70 {
		t.Fatalf("expected discounted price 70, got %v", price)
	}
}

func TestResolveOfferRoundsToTwoDecimals(t *testing.T) {
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	offers := Offers{
		Product: []models.ProductOffer{productOffer(productID, 33, weekAgo, &weekFromNow)},
	}

	_, price := ResolveOffer(productID, categoryID, 99.99, offers, testNow)
	// 99.99 * 0.67 = 66.9933
	if price != 66.99 {
		t.Fatalf("expected 66.99, got %v", price)
	}
}
