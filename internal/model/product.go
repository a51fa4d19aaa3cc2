package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item. Stock is only changed by applying a ledger
// transaction, so it is kept unexported and read through Stock.
type Product struct {
	BaseModel
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	InitialStock int64           `json:"initial_stock"`
	IsActive     bool            `json:"is_active"`
	stock        int64
}

func NewProduct(id, name, category string, price, cost decimal.Decimal, initialStock int64, now time.Time) (*Product, error) {
	p := &Product{
		BaseModel:    BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:         strings.TrimSpace(name),
		Category:     strings.TrimSpace(category),
		UnitPrice:    price,
		UnitCost:     cost,
		InitialStock: initialStock,
		IsActive:     true,
		stock:        initialStock,
	}
	if initialStock < 0 {
		return nil, fmt.Errorf("initial stock must not be negative: %w", ErrConstraintViolation)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// RestoreProduct rebuilds a product read back from storage.
func RestoreProduct(base BaseModel, name, category string, price, cost decimal.Decimal, initialStock, stock int64, active bool) Product {
	return Product{
		BaseModel:    base,
		Name:         name,
		Category:     category,
		UnitPrice:    price,
		UnitCost:     cost,
		InitialStock: initialStock,
		IsActive:     active,
		stock:        stock,
	}
}

func (p Product) Stock() int64 {
	return p.stock
}

func (p Product) AlertLevel() AlertLevel {
	return AlertLevelFor(p.stock)
}

// Margin is price minus cost; it may be negative.
func (p Product) Margin() decimal.Decimal {
	return p.UnitPrice.Sub(p.UnitCost)
}

func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is required: %w", ErrConstraintViolation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required: %w", ErrConstraintViolation)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative: %w", ErrConstraintViolation)
	}
	if p.UnitCost.IsNegative() {
		return fmt.Errorf("unit cost must not be negative: %w", ErrConstraintViolation)
	}
	return nil
}

// Apply moves stock by the transaction's effect. A sale larger than the
// current stock leaves the product untouched.
func (p *Product) Apply(tx Transaction) error {
	if tx.ProductID != p.ID {
		return fmt.Errorf("transaction %s belongs to product %s, not %s: %w", tx.ID, tx.ProductID, p.ID, ErrConstraintViolation)
	}
	delta, err := tx.StockDelta()
	if err != nil {
		return err
	}
	if p.stock+delta < 0 {
		return fmt.Errorf("product %s has %d in stock, sale needs %d: %w", p.ID, p.stock, tx.Quantity, ErrInsufficientStock)
	}
	p.stock += delta
	return nil
}
