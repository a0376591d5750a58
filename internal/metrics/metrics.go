package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders placed",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of fully cancelled orders",
	})

	OrderLinesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_lines_cancelled_total",
		Help: "Total number of individually cancelled order lines",
	})

	ReturnsRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "returns_requested_total",
		Help: "Total number of return requests received",
	})

	ReturnsResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_resolved_total",
		Help: "Total number of return requests resolved by an admin",
	}, []string{"action"})

	CouponsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupons_applied_total",
		Help: "Total number of coupons applied to carts",
	})

	CouponsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupons_rejected_total",
		Help: "Total number of coupon applications rejected",
	}, []string{"reason"})

	WalletCreditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_credits_total",
		Help: "Total number of wallet refund credits written",
	})

	WalletCreditsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_credits_suppressed_total",
		Help: "Total number of duplicate wallet credits suppressed",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkout attempts",
	}, []string{"reason"})
)
