package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// reportRange resolves the requested reporting window. Supported ranges:
// daily, weekly, monthly, yearly, or custom with from/to (YYYY-MM-DD).
func reportRange(rangeName, fromRaw, toRaw string) (time.Time, time.Time, bool) {
	now := time.Now()

	switch strings.ToLower(strings.TrimSpace(rangeName)) {
	case "daily", "":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, now, true
	case "weekly":
		return now.AddDate(0, 0, -7), now, true
	case "monthly":
		return now.AddDate(0, -1, 0), now, true
	case "yearly":
		return now.AddDate(-1, 0, 0), now, true
	case "custom":
		from, err := time.Parse("2006-01-02", strings.TrimSpace(fromRaw))
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to, err := time.Parse("2006-01-02", strings.TrimSpace(toRaw))
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		// make the end date inclusive
		to = to.AddDate(0, 0, 1)
		if !to.After(from) {
			return time.Time{}, time.Time{}, false
		}
		return from, to, true
	}
	return time.Time{}, time.Time{}, false
}

// AdminSalesReport aggregates delivered revenue over the window. Cancelled
// orders are excluded; discounts are reported separately so gross and net
// can both be read off.
func AdminSalesReport(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/sales/report"
		defer handlePanic(c, route)

		from, to, ok := reportRange(c.Query("range"), c.Query("from"), c.Query("to"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid report range")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"createOn": bson.M{"$gte": from, "$lt": to},
				"status":   bson.M{"$ne": models.StatusCancelled},
			}}},
			{{Key: "$group", Value: bson.M{
				"_id":            nil,
				"orderCount":     bson.M{"$sum": 1},
				"grossAmount":    bson.M{"$sum": "$totalPrice"},
				"offerDiscount":  bson.M{"$sum": "$offerDiscount"},
				"couponDiscount": bson.M{"$sum": "$couponDiscount"},
				"netAmount":      bson.M{"$sum": "$finalAmount"},
			}}},
		}

		cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		summary := gin.H{
			"orderCount":     0,
			"grossAmount":    0.0,
			"offerDiscount":  0.0,
			"couponDiscount": 0.0,
			"netAmount":      0.0,
		}
		if cursor.Next(ctx) {
			var row struct {
				OrderCount     int     `bson:"orderCount"`
				GrossAmount    float64 `bson:"grossAmount"`
				OfferDiscount  float64 `bson:"offerDiscount"`
				CouponDiscount float64 `bson:"couponDiscount"`
				NetAmount      float64 `bson:"netAmount"`
			}
			if err := cursor.Decode(&row); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "decode error")
				return
			}
			summary = gin.H{
				"orderCount":     row.OrderCount,
				"grossAmount":    row.GrossAmount,
				"offerDiscount":  row.OfferDiscount,
				"couponDiscount": row.CouponDiscount,
				"netAmount":      row.NetAmount,
			}
		}

		// daily breakdown for charting
		breakdownPipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"createOn": bson.M{"$gte": from, "$lt": to},
				"status":   bson.M{"$ne": models.StatusCancelled},
			}}},
			{{Key: "$group", Value: bson.M{
				"_id": bson.M{"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$createOn",
				}},
				"orderCount": bson.M{"$sum": 1},
				"netAmount":  bson.M{"$sum": "$finalAmount"},
			}}},
			{{Key: "$sort", Value: bson.M{"_id": 1}}},
		}

		cursor, err = db.Collection("orders").Aggregate(ctx, breakdownPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		type dayRow struct {
			Date       string  `bson:"_id" json:"date"`
			OrderCount int     `bson:"orderCount" json:"orderCount"`
			NetAmount  float64 `bson:"netAmount" json:"netAmount"`
		}
		days := make([]dayRow, 0)
		if err := cursor.All(ctx, &days); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"from":    from,
			"to":      to,
			"summary": summary,
			"days":    days,
		})
	}
}
