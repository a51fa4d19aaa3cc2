package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, category, unit_price, unit_cost, stock, initial_stock, is_active, created_at, updated_at`

// ProductRow mirrors the products table.
type ProductRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Category     string          `db:"category"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	UnitCost     decimal.Decimal `db:"unit_cost"`
	Stock        int64           `db:"stock"`
	InitialStock int64           `db:"initial_stock"`
	IsActive     bool            `db:"is_active"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r ProductRow) ToModel() model.Product {
	return model.RestoreProduct(
		model.BaseModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		r.Name, r.Category, r.UnitPrice, r.UnitCost, r.InitialStock, r.Stock, r.IsActive,
	)
}

func NewProductRow(p *model.Product) ProductRow {
	return ProductRow{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		UnitPrice:    p.UnitPrice,
		UnitCost:     p.UnitCost,
		Stock:        p.Stock(),
		InitialStock: p.InitialStock,
		IsActive:     p.IsActive,
		CreatedAt:    model.NormalizeTime(p.CreatedAt),
		UpdatedAt:    model.NormalizeTime(p.UpdatedAt),
	}
}

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, p *model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	query := `
        INSERT INTO products (` + productColumns + `)
        VALUES (
            :id, :name, :category, :unit_price, :unit_cost, :stock,
            :initial_stock, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, NewProductRow(p))
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("product %s already exists: %w", p.ID, model.ErrConstraintViolation)
	}
	return errors.Wrap(err, "insert product")
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var row ProductRow
	query := r.DB.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?`)
	err := r.DB.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "select product")
	}
	p := row.ToModel()
	return &p, nil
}

func (r *SQLRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?) ORDER BY `+database.IDOrder(r.DB, "id"), ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var rows []ProductRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select products by id")
	}
	return toModels(rows), nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if !f.IncludeInactive {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = true
	}
	if f.Category != "" {
		conditions = append(conditions, "LOWER(category) = LOWER(:category)")
		args["category"] = f.Category
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(LOWER(name) LIKE :search OR LOWER(category) LIKE :search)")
		args["search"] = "%" + strings.ToLower(strings.TrimSpace(f.SearchQuery)) + "%"
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []model.Product{}, 0, nil
		}
		names := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			key := fmt.Sprintf("id%d", i)
			names[i] = ":" + key
			args[key] = id
		}
		conditions = append(conditions, "id IN ("+strings.Join(names, ", ")+")")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := r.DB.BindNamed("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	query := "SELECT " + productColumns + " FROM products" + whereClause + " ORDER BY " + database.IDOrder(r.DB, "id")
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var rows []ProductRow
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, 0, errors.Wrap(err, "select products")
	}
	return toModels(rows), count, nil
}

func (r *SQLRepository) Update(ctx context.Context, p *model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	query := `
        UPDATE products
        SET name = :name,
            category = :category,
            unit_price = :unit_price,
            unit_cost = :unit_cost,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, NewProductRow(p))
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	return requireRow(res, p.ID)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
        DELETE FROM products
        WHERE id = ? AND NOT EXISTS (SELECT 1 FROM transactions WHERE product_id = ?)
    `), id, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	return fmt.Errorf("product %s has ledger history: %w", id, model.ErrConstraintViolation)
}

func (r *SQLRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE products SET is_active = ?, updated_at = ? WHERE id = ?`),
		false, model.NormalizeTime(time.Now()), id)
	if err != nil {
		return errors.Wrap(err, "deactivate product")
	}
	return requireRow(res, id)
}

func (r *SQLRepository) HasTransactions(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, r.DB.Rebind(`SELECT count(*) FROM transactions WHERE product_id = ?`), id)
	if err != nil {
		return false, errors.Wrap(err, "count product transactions")
	}
	return count > 0, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func toModels(rows []ProductRow) []model.Product {
	out := make([]model.Product, len(rows))
	for i, row := range rows {
		out[i] = row.ToModel()
	}
	return out
}
