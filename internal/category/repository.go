package category

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// ListCategories groups products by category name, ordered by name.
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.CategorySummary, error)
}
