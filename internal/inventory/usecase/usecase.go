package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/lock"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stockAlertEventType = "StockAlertRaised"

type inventoryUseCase struct {
	repo      inventory.Repository
	products  product.Repository
	locker    lock.Locker
	policy    lock.RetryPolicy
	publisher inventory.AlertPublisher
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewInventoryUseCase builds the stock mutator. publisher may be nil.
func NewInventoryUseCase(
	repo inventory.Repository,
	products product.Repository,
	locker lock.Locker,
	policy lock.RetryPolicy,
	publisher inventory.AlertPublisher,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		products:  products,
		locker:    locker,
		policy:    policy,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *inventoryUseCase) RecordTransaction(ctx context.Context, input *dto.RecordTransactionInput) (*dto.RecordTransactionResult, error) {
	if err := input.Type.Validate(); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", input.Quantity, model.ErrConstraintViolation)
	}

	// 0. Serialize writers of this product
	release, err := lock.Acquire(ctx, uc.locker, lock.ProductKey(input.ProductID), uuid.New().String(), uc.policy)
	if err != nil {
		uc.logger.Warn("product lock not acquired", zap.String("product_id", input.ProductID), zap.Error(err))
		return nil, err
	}
	defer release()

	// 1. Current product state
	p, err := uc.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", input.ProductID, model.ErrNotFound)
	}

	date := input.Date
	if date.IsZero() {
		date = uc.now()
	}

	// 2. Ledger entry with price snapshot
	tx, err := model.NewTransaction(uuid.New().String(), *p, input.Type, input.Quantity, date)
	if err != nil {
		return nil, err
	}
	if tx.Type == model.TransactionSale && tx.Quantity > p.Stock() {
		return nil, fmt.Errorf("product %s has %d in stock, sale needs %d: %w", p.ID, p.Stock(), tx.Quantity, model.ErrInsufficientStock)
	}

	// 3. Stock and ledger commit together
	updated, err := uc.repo.ApplyTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("transaction recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("product_id", tx.ProductID),
		zap.String("type", string(tx.Type)),
		zap.Int64("quantity", tx.Quantity),
		zap.Int64("stock_after", updated.Stock()),
	)

	if tx.Type == model.TransactionSale {
		uc.raiseAlert(ctx, updated, tx)
	}

	return &dto.RecordTransactionResult{Transaction: *tx, Product: *updated}, nil
}

func (uc *inventoryUseCase) AdministrativeRestock(ctx context.Context, input *dto.AdministrativeRestockInput) (*dto.RecordTransactionResult, error) {
	return uc.RecordTransaction(ctx, &dto.RecordTransactionInput{
		ProductID: input.ProductID,
		Type:      model.TransactionRestock,
		Quantity:  input.Quantity,
		Date:      input.Date,
	})
}

func (uc *inventoryUseCase) ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.TransactionView, int, error) {
	if filters == nil {
		filters = &dto.TransactionFilters{}
	}
	if filters.Type != "" {
		if err := filters.Type.Validate(); err != nil {
			return nil, 0, err
		}
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return nil, 0, fmt.Errorf("range ends before it starts: %w", model.ErrConstraintViolation)
	}
	return uc.repo.ListTransactions(ctx, filters)
}

func (uc *inventoryUseCase) VerifyLedger(ctx context.Context, productID string) (*model.LedgerCheck, error) {
	// hold the writer lock so stock and ledger sums come from the same state
	release, err := lock.Acquire(ctx, uc.locker, lock.ProductKey(productID), uuid.New().String(), uc.policy)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
	}

	restocked, sold, err := uc.repo.SumQuantities(ctx, productID)
	if err != nil {
		return nil, err
	}

	check := &model.LedgerCheck{
		ProductID:    p.ID,
		InitialStock: p.InitialStock,
		Restocked:    restocked,
		Sold:         sold,
		Expected:     p.InitialStock + restocked - sold,
		Stored:       p.Stock(),
	}
	check.Consistent = check.Expected == check.Stored
	if !check.Consistent {
		uc.logger.Error("ledger drift detected",
			zap.String("product_id", p.ID),
			zap.Int64("expected", check.Expected),
			zap.Int64("stored", check.Stored),
		)
	}
	return check, nil
}

func (uc *inventoryUseCase) raiseAlert(ctx context.Context, p *model.Product, tx *model.Transaction) {
	level := p.AlertLevel()
	if uc.publisher == nil || level == model.AlertSafe {
		return
	}
	event := &model.StockAlertEvent{
		EventID:       uuid.New().String(),
		EventType:     stockAlertEventType,
		ProductID:     p.ID,
		ProductName:   p.Name,
		Stock:         p.Stock(),
		AlertLevel:    level,
		TransactionID: tx.ID,
		Timestamp:     uc.now().UTC(),
	}
	if err := uc.publisher.PublishStockAlert(ctx, event); err != nil {
		uc.logger.Error("failed to publish stock alert",
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
	}
}
