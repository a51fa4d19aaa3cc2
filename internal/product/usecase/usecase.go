package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// searchLimit caps index hits per query; a query that fills it is served
// by the database instead so no match is dropped.
const searchLimit = 500

type productUseCase struct {
	repo   product.Repository
	search product.SearchIndex
	logger logger.ZapLogger
	now    func() time.Time
}

// NewProductUseCase wires product CRUD. search may be nil.
func NewProductUseCase(repo product.Repository, search product.SearchIndex, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		search: search,
		logger: log,
		now:    time.Now,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.New().String()
	} else {
		existing, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("product %s already exists: %w", id, model.ErrConstraintViolation)
		}
	}

	p, err := model.NewProduct(id, input.Name, input.Category, input.UnitPrice, input.UnitCost, input.InitialStock, model.NormalizeTime(uc.now()))
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("category", p.Category),
		zap.Int64("initial_stock", p.InitialStock),
	)
	uc.syncToSearch(p)
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters == nil {
		filters = &dto.ProductFilters{}
	}

	if filters.SearchQuery != "" && uc.search != nil {
		ids, err := uc.search.SearchProductIDs(ctx, filters.SearchQuery, searchLimit)
		switch {
		case err != nil:
			uc.logger.Error("product search failed, falling back to DB", zap.Error(err))
		case len(ids) >= searchLimit:
			uc.logger.Warn("product search hit result cap, falling back to DB",
				zap.String("query", filters.SearchQuery),
				zap.Int("limit", searchLimit),
			)
		default:
			// the index only narrows the id set; stock and status come from
			// the ledger store
			if ids == nil {
				ids = []string{}
			}
			narrowed := *filters
			narrowed.SearchQuery = ""
			narrowed.IDs = ids
			return uc.repo.FindAll(ctx, &narrowed)
		}
	}

	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", input.ID, model.ErrNotFound)
	}

	p.Name = strings.TrimSpace(input.Name)
	p.Category = strings.TrimSpace(input.Category)
	p.UnitPrice = input.UnitPrice
	p.UnitCost = input.UnitCost
	p.UpdatedAt = model.NormalizeTime(uc.now())
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if p.UnitPrice.LessThan(p.UnitCost) {
		uc.logger.Warn("product priced below cost", zap.String("product_id", p.ID))
	}

	// re-read so the returned stock is the committed value
	fresh, err := uc.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, fmt.Errorf("product %s: %w", p.ID, model.ErrNotFound)
	}
	uc.syncToSearch(fresh)
	return fresh, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) (bool, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}

	hasHistory, err := uc.repo.HasTransactions(ctx, id)
	if err != nil {
		return false, err
	}

	hardDeleted := !hasHistory
	if hasHistory {
		err = uc.repo.Deactivate(ctx, id)
	} else {
		err = uc.repo.Delete(ctx, id)
	}
	if err != nil {
		return false, err
	}

	uc.logger.Info("product deleted", zap.String("product_id", id), zap.Bool("hard_delete", hardDeleted))
	if uc.search != nil {
		go func() {
			if err := uc.search.DeleteProduct(context.Background(), id); err != nil {
				uc.logger.Error("failed to delete product from search index", zap.Error(err))
			}
		}()
	}
	return hardDeleted, nil
}

func (uc *productUseCase) syncToSearch(p *model.Product) {
	if uc.search == nil {
		return
	}
	snapshot := *p
	go func() {
		if err := uc.search.IndexProduct(context.Background(), &snapshot); err != nil {
			uc.logger.Error("failed to index product", zap.Error(err))
		}
	}()
}
