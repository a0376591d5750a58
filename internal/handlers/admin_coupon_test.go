package handlers

import (
	"testing"
	"time"
)

func TestParseCouponExpiry(t *testing.T) {
	future := time.Now().AddDate(0, 1, 0)

	expiry, ok := parseCouponExpiry(future.Format(time.RFC3339))
	if !ok {
		t.Fatal("future RFC3339 expiry rejected")
	}
	if expiry.Before(time.Now()) {
		t.Errorf("expiry = %v, want future", expiry)
	}

	if _, ok := parseCouponExpiry(future.Format("2006-01-02")); !ok {
		t.Error("future date-only expiry rejected")
	}
}

func TestParseCouponExpiryRejectsPastAndGarbage(t *testing.T) {
	for _, raw := range []string{"2020-01-01", "next week", ""} {
		if _, ok := parseCouponExpiry(raw); ok {
			t.Errorf("parseCouponExpiry(%q) should be rejected", raw)
		}
	}
}
