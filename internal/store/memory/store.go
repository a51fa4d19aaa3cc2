// Package memory is an in-process ledger store. Every read takes the shared
// lock and copies what it returns, so callers always see whole transactions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	categoryDTO "github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	inventoryDTO "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productDTO "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]model.Product
	txIDs    map[string]struct{}
	ledger   []model.Transaction
}

func New() *Store {
	return &Store{
		products: make(map[string]model.Product),
		txIDs:    make(map[string]struct{}),
	}
}

// products

func (s *Store) Create(_ context.Context, p *model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("product %s already exists: %w", p.ID, model.ErrConstraintViolation)
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) FindByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (s *Store) FindAll(_ context.Context, f *productDTO.ProductFilters) ([]model.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var idSet map[string]struct{}
	if f.IDs != nil {
		idSet = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			idSet[id] = struct{}{}
		}
	}
	search := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	var matched []model.Product
	for _, p := range s.products {
		if !p.IsActive && !f.IncludeInactive {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if idSet != nil {
			if _, ok := idSet[p.ID]; !ok {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		matched = append(matched, p)
	}
	sortProducts(matched)
	return paginate(matched, f.Page, f.PageSize), len(matched), nil
}

func (s *Store) Update(_ context.Context, p *model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID, model.ErrNotFound)
	}
	cur.Name = p.Name
	cur.Category = p.Category
	cur.UnitPrice = p.UnitPrice
	cur.UnitCost = p.UnitCost
	cur.UpdatedAt = p.UpdatedAt
	s.products[p.ID] = cur
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	if s.hasTransactionsLocked(id) {
		return fmt.Errorf("product %s has ledger history: %w", id, model.ErrConstraintViolation)
	}
	delete(s.products, id)
	return nil
}

func (s *Store) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return nil
}

func (s *Store) HasTransactions(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasTransactionsLocked(id), nil
}

func (s *Store) hasTransactionsLocked(id string) bool {
	for _, tx := range s.ledger {
		if tx.ProductID == id {
			return true
		}
	}
	return false
}

// ledger

func (s *Store) ApplyTransaction(_ context.Context, tx *model.Transaction) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[tx.ProductID]
	if !ok || !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", tx.ProductID, model.ErrNotFound)
	}
	if _, dup := s.txIDs[tx.ID]; dup {
		return nil, fmt.Errorf("transaction %s already exists: %w", tx.ID, model.ErrConstraintViolation)
	}
	if err := p.Apply(*tx); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	s.products[p.ID] = p
	s.txIDs[tx.ID] = struct{}{}
	s.ledger = append(s.ledger, *tx)
	return &p, nil
}

func (s *Store) ListTransactions(_ context.Context, f *inventoryDTO.TransactionFilters) ([]model.TransactionView, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []model.TransactionView
	for _, tx := range s.ledger {
		p := s.products[tx.ProductID]
		if f.ProductID != "" && tx.ProductID != f.ProductID {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && tx.TransactionDate.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.TransactionDate.After(f.To) {
			continue
		}
		rows = append(rows, model.TransactionView{
			Transaction:     tx,
			ProductName:     p.Name,
			ProductCategory: p.Category,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].TransactionDate, rows[j].TransactionDate
		if !a.Equal(b) {
			return a.Before(b)
		}
		return rows[i].ID < rows[j].ID
	})
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (s *Store) SumQuantities(_ context.Context, productID string) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var restocked, sold int64
	for _, tx := range s.ledger {
		if tx.ProductID != productID {
			continue
		}
		switch tx.Type {
		case model.TransactionRestock:
			restocked += tx.Quantity
		case model.TransactionSale:
			sold += tx.Quantity
		}
	}
	return restocked, sold, nil
}

func (s *Store) FirstSaleDate(_ context.Context, productID string, until time.Time) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var first time.Time
	found := false
	for _, tx := range s.ledger {
		if tx.ProductID != productID || tx.Type != model.TransactionSale || tx.TransactionDate.After(until) {
			continue
		}
		if !found || tx.TransactionDate.Before(first) {
			first = tx.TransactionDate
			found = true
		}
	}
	return first, found, nil
}

// categories

func (s *Store) ListCategories(_ context.Context, f *categoryDTO.CategoryFilters) ([]model.CategorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.SearchQuery))
	byName := make(map[string]*model.CategorySummary)
	for _, p := range s.products {
		if !p.IsActive && !f.IncludeInactive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		c, ok := byName[p.Category]
		if !ok {
			c = &model.CategorySummary{Name: p.Category}
			byName[p.Category] = c
		}
		c.ProductCount++
		c.StockUnits += p.Stock()
	}

	out := make([]model.CategorySummary, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sortProducts(ps []model.Product) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
