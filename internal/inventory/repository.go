package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// ApplyTransaction commits the stock change and the ledger row as one
	// unit and returns the product as stored afterwards. A sale that would
	// take stock below zero fails with model.ErrInsufficientStock and
	// writes nothing.
	ApplyTransaction(ctx context.Context, tx *model.Transaction) (*model.Product, error)

	// ListTransactions returns ledger rows ascending by transaction date.
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.TransactionView, int, error)

	// SumQuantities totals restocked and sold units for a product.
	SumQuantities(ctx context.Context, productID string) (restocked, sold int64, err error)

	// FirstSaleDate is the date of the product's earliest sale at or
	// before until; ok is false when there is none.
	FirstSaleDate(ctx context.Context, productID string, until time.Time) (first time.Time, ok bool, err error)
}
