package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	inventoryDTO "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
	"github.com/shopspring/decimal"
)

type reportUseCase struct {
	ledger   inventory.Repository
	products product.Repository
	loc      *time.Location
	logger   logger.ZapLogger
}

// NewReportUseCase aggregates the ledger into calendar buckets of loc.
func NewReportUseCase(ledger inventory.Repository, products product.Repository, loc *time.Location, log logger.ZapLogger) report.UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &reportUseCase{
		ledger:   ledger,
		products: products,
		loc:      loc,
		logger:   log,
	}
}

func (uc *reportUseCase) Summarize(ctx context.Context, input *dto.SummaryInput) ([]model.SummaryBucket, error) {
	bucket := input.Bucket
	if bucket == "" {
		bucket = model.BucketDay
	}
	if _, err := model.ParseBucket(string(bucket)); err != nil {
		return nil, err
	}
	first, last, err := uc.dayRange(input.From, input.To)
	if err != nil {
		return nil, err
	}

	sales, err := uc.sales(ctx, first, last, input.ProductID, input.Category)
	if err != nil {
		return nil, err
	}

	var out []model.SummaryBucket
	index := make(map[int64]int)
	for start := bucket.Start(first); !start.After(last); start = bucket.Next(start) {
		index[start.Unix()] = len(out)
		out = append(out, model.SummaryBucket{
			BucketStart: start,
			Revenue:     decimal.Zero,
			Profit:      decimal.Zero,
		})
	}

	for _, tx := range sales {
		i, ok := index[bucket.Start(tx.TransactionDate.In(uc.loc)).Unix()]
		if !ok {
			continue
		}
		b := &out[i]
		b.Revenue = b.Revenue.Add(tx.TotalPrice)
		b.Profit = b.Profit.Add(tx.TotalProfit)
		b.UnitsSold += tx.Quantity
		b.TransactionCount++
	}
	return out, nil
}

func (uc *reportUseCase) TopProducts(ctx context.Context, input *dto.TopProductsInput) ([]model.ProductSales, error) {
	first, last, err := uc.dayRange(input.From, input.To)
	if err != nil {
		return nil, err
	}
	sales, err := uc.sales(ctx, first, last, "", "")
	if err != nil {
		return nil, err
	}

	type totals struct {
		units   int64
		revenue decimal.Decimal
	}
	byProduct := make(map[string]*totals)
	ids := []string{}
	for _, tx := range sales {
		t, ok := byProduct[tx.ProductID]
		if !ok {
			t = &totals{revenue: decimal.Zero}
			byProduct[tx.ProductID] = t
			ids = append(ids, tx.ProductID)
		}
		t.units += tx.Quantity
		t.revenue = t.revenue.Add(tx.TotalPrice)
	}

	products, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	ranked := make([]model.ProductSales, 0, len(products))
	for _, p := range products {
		t := byProduct[p.ID]
		ranked = append(ranked, model.ProductSales{Product: p, UnitsSold: t.units, Revenue: t.revenue})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].UnitsSold != ranked[j].UnitsSold {
			return ranked[i].UnitsSold > ranked[j].UnitsSold
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})

	if input.Limit > 0 && len(ranked) > input.Limit {
		ranked = ranked[:input.Limit]
	}
	return ranked, nil
}

func (uc *reportUseCase) ProductDailyUnits(ctx context.Context, productID string, from, to time.Time) ([]model.DailyUnits, error) {
	buckets, err := uc.Summarize(ctx, &dto.SummaryInput{
		From:      from,
		To:        to,
		Bucket:    model.BucketDay,
		ProductID: productID,
	})
	if err != nil {
		return nil, err
	}
	series := make([]model.DailyUnits, len(buckets))
	for i, b := range buckets {
		series[i] = model.DailyUnits{Day: b.BucketStart, Units: b.UnitsSold}
	}
	return series, nil
}

func (uc *reportUseCase) Today(ctx context.Context, now time.Time) (*model.SummaryBucket, error) {
	buckets, err := uc.Summarize(ctx, &dto.SummaryInput{From: now, To: now, Bucket: model.BucketDay})
	if err != nil {
		return nil, err
	}
	return &buckets[0], nil
}

// dayRange converts inclusive bounds to the first and last calendar day in
// the reporting location.
func (uc *reportUseCase) dayRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("date range needs both bounds: %w", model.ErrConstraintViolation)
	}
	first := model.BucketDay.Start(from.In(uc.loc))
	last := model.BucketDay.Start(to.In(uc.loc))
	if last.Before(first) {
		return time.Time{}, time.Time{}, fmt.Errorf("range ends before it starts: %w", model.ErrConstraintViolation)
	}
	return first, last, nil
}

// sales reads every sale from the start of first through the end of last.
func (uc *reportUseCase) sales(ctx context.Context, first, last time.Time, productID, category string) ([]model.TransactionView, error) {
	end := model.BucketDay.Next(last).Add(-time.Microsecond)
	rows, _, err := uc.ledger.ListTransactions(ctx, &inventoryDTO.TransactionFilters{
		ProductID: productID,
		Category:  category,
		Type:      model.TransactionSale,
		From:      first,
		To:        end,
	})
	return rows, err
}
