package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productRepo "github.com/fekuna/omnipos-inventory-service/internal/product/repository"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const transactionColumns = `t.id, t.product_id, t.type, t.quantity, t.unit_price_at_time, t.unit_cost_at_time, t.total_price, t.total_profit, t.transaction_date`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) ApplyTransaction(ctx context.Context, t *model.Transaction) (*model.Product, error) {
	delta, err := t.StockDelta()
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin ledger transaction")
	}
	defer tx.Rollback()

	// 1. Move stock; the guard keeps a sale from overdrawing even when two
	// writers race past the application lock, and keeps a product
	// deactivated mid-flight from taking new rows.
	res, err := tx.ExecContext(ctx, tx.Rebind(`
        UPDATE products
        SET stock = stock + ?, updated_at = ?
        WHERE id = ? AND is_active = ? AND stock + ? >= 0
    `), delta, model.NormalizeTime(time.Now()), t.ProductID, true, delta)
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, fmt.Errorf("product %s: %w", t.ProductID, model.ErrInsufficientStock)
		}
		return nil, errors.Wrap(err, "update stock")
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		var cur struct {
			Stock    int64 `db:"stock"`
			IsActive bool  `db:"is_active"`
		}
		err := tx.GetContext(ctx, &cur, tx.Rebind(`SELECT stock, is_active FROM products WHERE id = ?`), t.ProductID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !cur.IsActive) {
			return nil, fmt.Errorf("product %s: %w", t.ProductID, model.ErrNotFound)
		}
		if err != nil {
			return nil, errors.Wrap(err, "read stock")
		}
		return nil, fmt.Errorf("product %s has %d in stock, sale needs %d: %w", t.ProductID, cur.Stock, t.Quantity, model.ErrInsufficientStock)
	}

	// 2. Append to the ledger
	insertQuery := `
        INSERT INTO transactions (
            id, product_id, type, quantity, unit_price_at_time, unit_cost_at_time,
            total_price, total_profit, transaction_date
        )
        VALUES (
            :id, :product_id, :type, :quantity, :unit_price_at_time, :unit_cost_at_time,
            :total_price, :total_profit, :transaction_date
        )
    `
	row := *t
	row.TransactionDate = model.NormalizeTime(t.TransactionDate)
	if _, err := tx.NamedExecContext(ctx, insertQuery, row); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("transaction %s already exists: %w", t.ID, model.ErrConstraintViolation)
		}
		return nil, errors.Wrap(err, "insert transaction")
	}

	var updated productRepo.ProductRow
	err = tx.GetContext(ctx, &updated, tx.Rebind(`
        SELECT id, name, category, unit_price, unit_cost, stock, initial_stock, is_active, created_at, updated_at
        FROM products WHERE id = ?
    `), t.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "reload product")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit ledger transaction")
	}
	p := updated.ToModel()
	return &p, nil
}

func (r *SQLRepository) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.TransactionView, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "t.product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.Category != "" {
		conditions = append(conditions, "LOWER(p.category) = LOWER(?)")
		args = append(args, f.Category)
	}
	if f.Type != "" {
		conditions = append(conditions, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		conditions = append(conditions, "t.transaction_date >= ?")
		args = append(args, model.NormalizeTime(f.From))
	}
	if !f.To.IsZero() {
		conditions = append(conditions, "t.transaction_date <= ?")
		args = append(args, model.NormalizeTime(f.To))
	}

	from := " FROM transactions t JOIN products p ON p.id = t.product_id"
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind("SELECT count(*)"+from+whereClause), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count transactions")
	}

	query := "SELECT " + transactionColumns + ", p.name AS product_name, p.category AS product_category" +
		from + whereClause + " ORDER BY t.transaction_date ASC, " + database.IDOrder(r.DB, "t.id") + " ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	var items []model.TransactionView
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, errors.Wrap(err, "select transactions")
	}
	return items, count, nil
}

func (r *SQLRepository) SumQuantities(ctx context.Context, productID string) (int64, int64, error) {
	var sums struct {
		Restocked int64 `db:"restocked"`
		Sold      int64 `db:"sold"`
	}
	err := r.DB.GetContext(ctx, &sums, r.DB.Rebind(`
        SELECT
            COALESCE(SUM(CASE WHEN type = 'RESTOCK' THEN quantity ELSE 0 END), 0) AS restocked,
            COALESCE(SUM(CASE WHEN type = 'SALE' THEN quantity ELSE 0 END), 0) AS sold
        FROM transactions
        WHERE product_id = ?
    `), productID)
	if err != nil {
		return 0, 0, errors.Wrap(err, "sum ledger quantities")
	}
	return sums.Restocked, sums.Sold, nil
}

func (r *SQLRepository) FirstSaleDate(ctx context.Context, productID string, until time.Time) (time.Time, bool, error) {
	var first time.Time
	err := r.DB.GetContext(ctx, &first, r.DB.Rebind(`
        SELECT transaction_date FROM transactions
        WHERE product_id = ? AND type = 'SALE' AND transaction_date <= ?
        ORDER BY transaction_date ASC
        LIMIT 1
    `), productID, model.NormalizeTime(until))
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "first sale date")
	}
	return first, true, nil
}
