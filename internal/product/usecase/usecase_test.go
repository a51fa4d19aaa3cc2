package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	inventoryDTO "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]string
	deleted []string
	hits    []string
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: make(map[string]string)}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchProductIDs(context.Context, string, int) ([]string, error) {
	return f.hits, f.err
}

func (f *fakeIndex) name(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexed[id]
}

func (f *fakeIndex) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func newUseCase(t *testing.T, search product.SearchIndex) (product.UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewProductUseCase(store, search, logger.NewNop()), store
}

func create(t *testing.T, uc product.UseCase, id, name, category string, stock int64) *model.Product {
	t.Helper()
	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		ID:           id,
		Name:         name,
		Category:     category,
		UnitPrice:    decimal.NewFromInt(15),
		UnitCost:     decimal.NewFromInt(9),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	ctx := context.Background()

	p := create(t, uc, "", "Roti", "Bakery", 7)
	assert.NotEmpty(t, p.ID, "id generated")
	assert.Equal(t, int64(7), p.Stock())

	_, err := uc.CreateProduct(ctx, &dto.CreateProductInput{ID: p.ID, Name: "Again"})
	assert.ErrorIs(t, err, model.ErrConstraintViolation)

	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{ID: "X", Name: "Bad", InitialStock: -1})
	assert.ErrorIs(t, err, model.ErrConstraintViolation)
}

func TestGetProductMissing(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	_, err := uc.GetProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateProductKeepsStock(t *testing.T) {
	uc, _ := newUseCase(t, nil)
	create(t, uc, "P1", "Roti", "Bakery", 7)

	p, err := uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:        "P1",
		Name:      " Roti Bakar ",
		Category:  "Bakery",
		UnitPrice: decimal.NewFromInt(20),
		UnitCost:  decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.Equal(t, "Roti Bakar", p.Name)
	assert.Equal(t, int64(7), p.Stock())
	assert.True(t, p.Margin().IsNegative())

	_, err = uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: "P1", Name: ""})
	assert.ErrorIs(t, err, model.ErrConstraintViolation)
}

func TestDeleteProduct(t *testing.T) {
	uc, store := newUseCase(t, nil)
	ctx := context.Background()
	create(t, uc, "FRESH", "Roti", "Bakery", 1)
	used := create(t, uc, "USED", "Teh", "Drink", 5)

	tx, err := model.NewTransaction("t1", *used, model.TransactionSale, 2, time.Now())
	require.NoError(t, err)
	_, err = store.ApplyTransaction(ctx, tx)
	require.NoError(t, err)

	hard, err := uc.DeleteProduct(ctx, "FRESH")
	require.NoError(t, err)
	assert.True(t, hard)
	_, err = uc.GetProduct(ctx, "FRESH")
	assert.ErrorIs(t, err, model.ErrNotFound)

	hard, err = uc.DeleteProduct(ctx, "USED")
	require.NoError(t, err)
	assert.False(t, hard)

	// deactivated: still readable, hidden from listings, not editable
	p, err := uc.GetProduct(ctx, "USED")
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	list, total, err := uc.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	_, err = uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: "USED", Name: "Teh Manis"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	rows, _, err := store.ListTransactions(ctx, &inventoryDTO.TransactionFilters{ProductID: "USED"})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "history kept")

	_, err = uc.DeleteProduct(ctx, "NOPE")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListProductsUsesSearchIndex(t *testing.T) {
	idx := newFakeIndex()
	uc, _ := newUseCase(t, idx)
	ctx := context.Background()
	create(t, uc, "A", "Kopi Hitam", "Drink", 1)
	create(t, uc, "B", "Kopi Susu", "Drink", 1)
	create(t, uc, "C", "Roti", "Bakery", 1)

	idx.hits = []string{"B", "GONE"}
	list, total, err := uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "kopi"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "B", list[0].ID)

	idx.hits = nil
	list, _, err = uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, list, "no hits must not widen to every product")

	idx.err = errors.New("cluster red")
	list, total, err = uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "kopi"})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "database fallback")
	assert.Len(t, list, 2)
}

type warnRecorder struct {
	logger.ZapLogger
	mu    sync.Mutex
	warns []string
}

func (w *warnRecorder) Warn(msg string, _ ...zap.Field) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, msg)
}

func TestListProductsSearchCapFallsBackToDB(t *testing.T) {
	idx := newFakeIndex()
	log := &warnRecorder{ZapLogger: logger.NewNop()}
	store := memory.New()
	uc := NewProductUseCase(store, idx, log)
	ctx := context.Background()
	create(t, uc, "K0001", "Kopi 1", "Drink", 1)
	create(t, uc, "K0002", "Kopi 2", "Drink", 1)
	create(t, uc, "ZZZ", "Kopi Luwak", "Drink", 1)

	// a full page of hits that happens to miss ZZZ
	for i := 1; i <= searchLimit; i++ {
		idx.hits = append(idx.hits, fmt.Sprintf("K%04d", i))
	}
	list, total, err := uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "kopi"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	assert.Contains(t, ids, "ZZZ")
	assert.Len(t, log.warns, 1)

	idx.hits = idx.hits[:searchLimit-1]
	_, total, err = uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "kopi"})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "under the cap the index decides")
	assert.Len(t, log.warns, 1)
}

func TestSearchIndexFollowsWrites(t *testing.T) {
	idx := newFakeIndex()
	uc, _ := newUseCase(t, idx)
	ctx := context.Background()
	create(t, uc, "A", "Kopi", "Drink", 1)

	assert.Eventually(t, func() bool { return idx.name("A") == "Kopi" }, time.Second, 5*time.Millisecond)

	_, err := uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: "A", Name: "Kopi Tubruk", Category: "Drink"})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return idx.name("A") == "Kopi Tubruk" }, time.Second, 5*time.Millisecond)

	_, err = uc.DeleteProduct(ctx, "A")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return idx.deletedCount() == 1 }, time.Second, 5*time.Millisecond)
}
