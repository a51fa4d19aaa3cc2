package report

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
)

type UseCase interface {
	// Summarize returns one bucket per interval in the range, empty ones
	// included.
	Summarize(ctx context.Context, input *dto.SummaryInput) ([]model.SummaryBucket, error)
	TopProducts(ctx context.Context, input *dto.TopProductsInput) ([]model.ProductSales, error)
	ProductDailyUnits(ctx context.Context, productID string, from, to time.Time) ([]model.DailyUnits, error)
	Today(ctx context.Context, now time.Time) (*model.SummaryBucket, error)
}
