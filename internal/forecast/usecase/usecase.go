package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/forecast"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	productDTO "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"go.uber.org/zap"
)

type forecastUseCase struct {
	products product.Repository
	ledger   inventory.Repository
	reports  report.UseCase
	loc      *time.Location
	logger   logger.ZapLogger
}

func NewForecastUseCase(products product.Repository, ledger inventory.Repository, reports report.UseCase, loc *time.Location, log logger.ZapLogger) forecast.UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &forecastUseCase{
		products: products,
		ledger:   ledger,
		reports:  reports,
		loc:      loc,
		logger:   log,
	}
}

func (uc *forecastUseCase) RecommendRestock(ctx context.Context, productID string, asOf time.Time) (*model.Recommendation, error) {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}
	return uc.recommend(ctx, p, asOf)
}

func (uc *forecastUseCase) RestockReport(ctx context.Context, asOf time.Time) ([]model.Recommendation, error) {
	products, _, err := uc.products.FindAll(ctx, &productDTO.ProductFilters{})
	if err != nil {
		return nil, err
	}

	out := make([]model.Recommendation, 0, len(products))
	for i := range products {
		rec, err := uc.recommend(ctx, &products[i], asOf)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageDailyDemand != out[j].AverageDailyDemand {
			return out[i].AverageDailyDemand > out[j].AverageDailyDemand
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (uc *forecastUseCase) LowStockAlerts(ctx context.Context) ([]model.StockAlert, error) {
	products, _, err := uc.products.FindAll(ctx, &productDTO.ProductFilters{})
	if err != nil {
		return nil, err
	}

	alerts := []model.StockAlert{}
	for _, p := range products {
		level := p.AlertLevel()
		if level == model.AlertSafe {
			continue
		}
		alerts = append(alerts, model.StockAlert{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			Stock:       p.Stock(),
			AlertLevel:  level,
		})
	}
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.AlertLevel.Severity() != b.AlertLevel.Severity() {
			return a.AlertLevel.Severity() < b.AlertLevel.Severity()
		}
		if a.Stock != b.Stock {
			return a.Stock < b.Stock
		}
		return a.ProductID < b.ProductID
	})
	return alerts, nil
}

func (uc *forecastUseCase) recommend(ctx context.Context, p *model.Product, asOf time.Time) (*model.Recommendation, error) {
	asOfDay := model.BucketDay.Start(asOf.In(uc.loc))
	endOfDay := model.BucketDay.Next(asOfDay).Add(-time.Microsecond)

	// the window only shrinks for days before the product existed
	start := asOfDay.AddDate(0, 0, -(forecast.WindowDays - 1))
	born := model.BucketDay.Start(p.CreatedAt.In(uc.loc))
	firstSale, ok, err := uc.ledger.FirstSaleDate(ctx, p.ID, endOfDay)
	if err != nil {
		return nil, err
	}
	if ok {
		if day := model.BucketDay.Start(firstSale.In(uc.loc)); day.Before(born) {
			born = day
		}
	}
	if born.After(start) {
		start = born
	}

	var series []int64
	if !start.After(asOfDay) {
		daily, err := uc.reports.ProductDailyUnits(ctx, p.ID, start, asOfDay)
		if err != nil {
			return nil, err
		}
		series = make([]int64, len(daily))
		for i, d := range daily {
			series[i] = d.Units
		}
	}

	rec := forecast.Recommend(p.Stock(), series)
	rec.ProductID = p.ID
	rec.ProductName = p.Name

	uc.logger.Debug("restock recommendation",
		zap.String("product_id", p.ID),
		zap.Int("history_days", len(series)),
		zap.Float64("average_daily_demand", rec.AverageDailyDemand),
		zap.Int64("recommended", rec.RecommendedRestockQuantity),
	)
	return &rec, nil
}
