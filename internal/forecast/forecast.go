// Package forecast turns recent sales into restock recommendations.
package forecast

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

const (
	// WindowDays is both the trailing history window and the horizon the
	// demand is projected over.
	WindowDays = 3
	// SafetyStockPercent of forecast demand is added as buffer.
	SafetyStockPercent = 20
)

type UseCase interface {
	RecommendRestock(ctx context.Context, productID string, asOf time.Time) (*model.Recommendation, error)
	RestockReport(ctx context.Context, asOf time.Time) ([]model.Recommendation, error)
	LowStockAlerts(ctx context.Context) ([]model.StockAlert, error)
}

// Recommend applies the moving-average policy to a dense daily series.
// A series without a single sale yields NoHistory and no recommendation.
func Recommend(stock int64, dailyUnits []int64) model.Recommendation {
	rec := model.Recommendation{
		CurrentStock: stock,
		WindowDays:   WindowDays,
		AlertLevel:   model.AlertLevelFor(stock),
	}
	days := int64(len(dailyUnits))

	var sum int64
	for _, u := range dailyUnits {
		sum += u
	}
	if sum == 0 {
		rec.NoHistory = true
		return rec
	}

	// forecast = sum/days*W kept as the fraction projected/days so the
	// ceilings below are exact
	projected := sum * WindowDays
	rec.AverageDailyDemand = float64(sum) / float64(days)
	rec.ForecastDemand = float64(projected) / float64(days)
	rec.SafetyStock = ceilDiv(projected*SafetyStockPercent, days*100)

	need := ceilDiv(projected, days) + rec.SafetyStock - stock
	if need > 0 {
		rec.RecommendedRestockQuantity = need
	}
	return rec
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
