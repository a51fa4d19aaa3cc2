package repository

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) ListCategories(ctx context.Context, f *dto.CategoryFilters) ([]model.CategorySummary, error) {
	conditions := []string{}
	args := []interface{}{}

	if !f.IncludeInactive {
		conditions = append(conditions, "is_active = ?")
		args = append(args, true)
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "LOWER(category) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(f.SearchQuery))+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT category AS name, count(*) AS product_count, COALESCE(SUM(stock), 0) AS stock_units
        FROM products` + whereClause + `
        GROUP BY category
        ORDER BY ` + database.IDOrder(r.DB, "category")

	var items []model.CategorySummary
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return items, nil
}
