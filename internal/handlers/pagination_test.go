package handlers

import "testing"

func TestParsePaginationParams(t *testing.T) {
	cases := []struct {
		page, limit string
		wantPage    int64
		wantLimit   int64
		wantErr     bool
	}{
		{"", "", 1, 20, false},
		{"3", "50", 3, 50, false},
		{"1", "500", 1, 100, false},
		{"0", "10", 0, 0, true},
		{"-1", "10", 0, 0, true},
		{"abc", "10", 0, 0, true},
		{"1", "0", 0, 0, true},
		{"1", "xyz", 0, 0, true},
	}
	for _, tc := range cases {
		page, limit, err := parsePaginationParams(tc.page, tc.limit)
		if (err != nil) != tc.wantErr {
			t.Errorf("parsePaginationParams(%q, %q) err = %v, wantErr %v", tc.page, tc.limit, err, tc.wantErr)
			continue
		}
		if err == nil && (page != tc.wantPage || limit != tc.wantLimit) {
			t.Errorf("parsePaginationParams(%q, %q) = (%d, %d), want (%d, %d)",
				tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}
