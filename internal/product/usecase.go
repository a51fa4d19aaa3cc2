package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	// DeleteProduct reports whether the product was removed outright (true)
	// or only deactivated because transactions reference it (false).
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// SearchIndex is an optional full-text index over products. Listing falls
// back to the repository when it is absent or failing.
type SearchIndex interface {
	IndexProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProductIDs(ctx context.Context, query string, limit int) ([]string, error)
}
