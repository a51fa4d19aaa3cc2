package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	RecordTransaction(ctx context.Context, input *dto.RecordTransactionInput) (*dto.RecordTransactionResult, error)
	AdministrativeRestock(ctx context.Context, input *dto.AdministrativeRestockInput) (*dto.RecordTransactionResult, error)
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.TransactionView, int, error)
	VerifyLedger(ctx context.Context, productID string) (*model.LedgerCheck, error)
}

// AlertPublisher is notified when a sale leaves a product at LOW or
// CRITICAL stock.
type AlertPublisher interface {
	PublishStockAlert(ctx context.Context, event *model.StockAlertEvent) error
}
