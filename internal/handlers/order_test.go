package handlers

import (
	"testing"

	"storefront/internal/models"
)

func TestCancellable(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{models.StatusPending, true},
		{models.StatusConfirmed, true},
		{models.StatusShipped, false},
		{models.StatusDelivered, false},
		{models.StatusCancelled, false},
		{models.StatusReturned, false},
	}
	for _, tc := range cases {
		if got := cancellable(tc.status); got != tc.want {
			t.Errorf("cancellable(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
