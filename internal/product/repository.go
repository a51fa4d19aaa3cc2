package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)

	// Update writes name, category, price and cost. Stock is never touched.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product with no ledger history; Deactivate hides one
	// that has history.
	Delete(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	HasTransactions(ctx context.Context, id string) (bool, error)
}
