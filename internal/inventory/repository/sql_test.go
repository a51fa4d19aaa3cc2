package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productRepo "github.com/fekuna/omnipos-inventory-service/internal/product/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(context.Background(), &database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *sqlx.DB, id, category string, stock int64) model.Product {
	t.Helper()
	p, err := model.NewProduct(id, "Item "+id, category, decimal.RequireFromString("12.50"), decimal.RequireFromString("7.25"), stock, day)
	require.NoError(t, err)
	require.NoError(t, productRepo.NewSQLRepository(db).Create(context.Background(), p))
	return *p
}

func newTx(t *testing.T, p model.Product, id string, typ model.TransactionType, qty int64, at time.Time) *model.Transaction {
	t.Helper()
	tx, err := model.NewTransaction(id, p, typ, qty, at)
	require.NoError(t, err)
	return tx
}

func TestApplyTransaction(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewSQLRepository(db)
	p := seed(t, db, "P001", "Food", 5)

	updated, err := repo.ApplyTransaction(ctx, newTx(t, p, "t1", model.TransactionSale, 2, day.Add(9*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Stock())
	assert.Equal(t, int64(5), updated.InitialStock)

	_, err = repo.ApplyTransaction(ctx, newTx(t, *updated, "t2", model.TransactionSale, 4, day.Add(10*time.Hour)))
	assert.ErrorIs(t, err, model.ErrInsufficientStock)

	_, err = repo.ApplyTransaction(ctx, newTx(t, *updated, "t1", model.TransactionRestock, 4, day.Add(10*time.Hour)))
	assert.ErrorIs(t, err, model.ErrConstraintViolation)

	stored, err := productRepo.NewSQLRepository(db).FindByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Stock(), "failed writes leave stock untouched")

	rows, total, err := repo.ListTransactions(ctx, &dto.TransactionFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "t1", rows[0].ID)
	assert.True(t, rows[0].TotalPrice.Equal(decimal.RequireFromString("25")))
	assert.True(t, rows[0].TotalProfit.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, rows[0].TransactionDate.Equal(day.Add(9*time.Hour)))
	assert.Equal(t, "Item P001", rows[0].ProductName)
}

func TestApplyTransactionUnknownProduct(t *testing.T) {
	db := openDB(t)
	ghost := model.RestoreProduct(model.BaseModel{ID: "GHOST"}, "Ghost", "", decimal.Zero, decimal.Zero, 0, 0, true)

	_, err := NewSQLRepository(db).ApplyTransaction(context.Background(), newTx(t, ghost, "t1", model.TransactionRestock, 1, day))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApplyTransactionDeactivatedProduct(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewSQLRepository(db)
	p := seed(t, db, "P001", "Food", 5)

	// loaded while active, deactivated before the write lands
	require.NoError(t, productRepo.NewSQLRepository(db).Deactivate(ctx, p.ID))
	_, err := repo.ApplyTransaction(ctx, newTx(t, p, "t1", model.TransactionSale, 1, day))
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = repo.ApplyTransaction(ctx, newTx(t, p, "t2", model.TransactionRestock, 1, day))
	assert.ErrorIs(t, err, model.ErrNotFound)

	stored, err := productRepo.NewSQLRepository(db).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Stock())
	_, total, err := repo.ListTransactions(ctx, &dto.TransactionFilters{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConcurrentSalesStopAtZero(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewSQLRepository(db)
	p := seed(t, db, "P001", "Food", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.ApplyTransaction(ctx, newTx(t, p, fmt.Sprintf("t%02d", i), model.TransactionSale, 1, day))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	stored, err := productRepo.NewSQLRepository(db).FindByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Stock())
}

func TestListTransactionsFilters(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewSQLRepository(db)
	a := seed(t, db, "A", "Food", 100)
	b := seed(t, db, "B", "Drink", 100)

	inputs := []*model.Transaction{
		newTx(t, a, "t3", model.TransactionSale, 1, day.Add(30*time.Hour)),
		newTx(t, b, "t1", model.TransactionSale, 2, day.Add(9*time.Hour)),
		newTx(t, a, "t2", model.TransactionRestock, 3, day.Add(9*time.Hour)),
		newTx(t, a, "t4", model.TransactionSale, 4, day.Add(9*time.Hour+500*time.Millisecond)),
	}
	for _, tx := range inputs {
		_, err := repo.ApplyTransaction(ctx, tx)
		require.NoError(t, err)
	}

	rows, _, err := repo.ListTransactions(ctx, &dto.TransactionFilters{})
	require.NoError(t, err)
	ids := []string{}
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"t1", "t2", "t4", "t3"}, ids)

	rows, total, err := repo.ListTransactions(ctx, &dto.TransactionFilters{
		Category: "FOOD",
		Type:     model.TransactionSale,
		From:     day,
		To:       day.Add(24*time.Hour - time.Microsecond),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "t4", rows[0].ID)

	rows, total, err = repo.ListTransactions(ctx, &dto.TransactionFilters{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "t3", rows[0].ID)
}

func TestSumQuantitiesAndFirstSaleDate(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewSQLRepository(db)
	p := seed(t, db, "A", "Food", 10)

	for _, tx := range []*model.Transaction{
		newTx(t, p, "t1", model.TransactionRestock, 6, day),
		newTx(t, p, "t2", model.TransactionSale, 2, day.Add(50*time.Hour)),
		newTx(t, p, "t3", model.TransactionSale, 3, day.Add(26*time.Hour)),
	} {
		_, err := repo.ApplyTransaction(ctx, tx)
		require.NoError(t, err)
	}

	restocked, sold, err := repo.SumQuantities(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(6), restocked)
	assert.Equal(t, int64(5), sold)

	first, ok, err := repo.FirstSaleDate(ctx, "A", day.Add(72*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, first.Equal(day.Add(26*time.Hour)))

	_, ok, err = repo.FirstSaleDate(ctx, "A", day.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	restocked, sold, err = repo.SumQuantities(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, restocked)
	assert.Zero(t, sold)
}
