package handlers

import (
	"testing"
	"time"
)

func TestReportRangeDaily(t *testing.T) {
	for _, name := range []string{"daily", ""} {
		start, end, ok := reportRange(name, "", "")
		if !ok {
			t.Fatalf("reportRange(%q) not ok", name)
		}
		if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
			t.Errorf("daily start = %v, want midnight", start)
		}
		if !end.After(start) {
			t.Errorf("daily end %v not after start %v", end, start)
		}
	}
}

func TestReportRangeRelativeWindows(t *testing.T) {
	cases := []struct {
		name string
		days float64
	}{
		{"weekly", 7},
		{"monthly", 28},
		{"yearly", 365},
	}
	for _, tc := range cases {
		start, end, ok := reportRange(tc.name, "", "")
		if !ok {
			t.Fatalf("reportRange(%q) not ok", tc.name)
		}
		if got := end.Sub(start).Hours() / 24; got < tc.days-3 {
			t.Errorf("%s window = %.1f days, want at least %.0f", tc.name, got, tc.days-3)
		}
	}
}

func TestReportRangeCustom(t *testing.T) {
	start, end, ok := reportRange("custom", "2026-01-01", "2026-01-31")
	if !ok {
		t.Fatal("valid custom range rejected")
	}
	if start != time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %v", start)
	}
	// the end date is inclusive
	if end != time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("end = %v", end)
	}
}

func TestReportRangeCustomSingleDay(t *testing.T) {
	if _, _, ok := reportRange("custom", "2026-01-15", "2026-01-15"); !ok {
		t.Error("same-day custom range should be accepted")
	}
}

func TestReportRangeInvalid(t *testing.T) {
	cases := []struct{ name, from, to string }{
		{"custom", "not-a-date", "2026-01-31"},
		{"custom", "2026-01-01", "junk"},
		{"custom", "2026-02-01", "2026-01-01"},
		{"quarterly", "", ""},
	}
	for _, tc := range cases {
		if _, _, ok := reportRange(tc.name, tc.from, tc.to); ok {
			t.Errorf("reportRange(%q, %q, %q) should be rejected", tc.name, tc.from, tc.to)
		}
	}
}
