package handlers

import (
	"testing"
	"time"
)

func TestOfferWindowDefaultsStartToNow(t *testing.T) {
	before := time.Now()
	start, end, ok := offerWindow("", "")
	if !ok {
		t.Fatal("empty window rejected")
	}
	if start.Before(before) || start.After(time.Now().Add(time.Second)) {
		t.Errorf("start = %v, want roughly now", start)
	}
	if end != nil {
		t.Errorf("end = %v, want open-ended", end)
	}
}

func TestOfferWindowParsesBothFormats(t *testing.T) {
	start, end, ok := offerWindow("2026-09-01", "2026-10-01T12:00:00Z")
	if !ok {
		t.Fatal("valid window rejected")
	}
	if start != time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %v", start)
	}
	if end == nil || *end != time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) {
		t.Errorf("end = %v", end)
	}
}

func TestOfferWindowRejectsEndBeforeStart(t *testing.T) {
	if _, _, ok := offerWindow("2026-10-01", "2026-09-01"); ok {
		t.Error("end before start should be rejected")
	}
}

func TestOfferWindowRejectsGarbage(t *testing.T) {
	if _, _, ok := offerWindow("soon", ""); ok {
		t.Error("unparseable start should be rejected")
	}
	if _, _, ok := offerWindow("", "later"); ok {
		t.Error("unparseable end should be rejected")
	}
}

func TestOfferCollection(t *testing.T) {
	if got := offerCollection("category"); got != "category_offers" {
		t.Errorf("offerCollection(category) = %q", got)
	}
	if got := offerCollection("product"); got != "product_offers" {
		t.Errorf("offerCollection(product) = %q", got)
	}
}
