package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionSale    TransactionType = "SALE"
	TransactionRestock TransactionType = "RESTOCK"
)

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case TransactionSale, TransactionRestock:
		return nil
	}
	return fmt.Errorf("unknown transaction type %q: %w", string(t), ErrConstraintViolation)
}

// Transaction is an immutable ledger entry. Prices are captured when the
// transaction is recorded so later product edits do not rewrite history.
type Transaction struct {
	ID              string          `db:"id" json:"id"`
	ProductID       string          `db:"product_id" json:"product_id"`
	Type            TransactionType `db:"type" json:"type"`
	Quantity        int64           `db:"quantity" json:"quantity"`
	UnitPriceAtTime decimal.Decimal `db:"unit_price_at_time" json:"unit_price_at_time"`
	UnitCostAtTime  decimal.Decimal `db:"unit_cost_at_time" json:"unit_cost_at_time"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
	TotalProfit     decimal.Decimal `db:"total_profit" json:"total_profit"`
	TransactionDate time.Time       `db:"transaction_date" json:"transaction_date"`
}

// NewTransaction snapshots the product's price and cost and derives totals.
func NewTransaction(id string, p Product, typ TransactionType, quantity int64, date time.Time) (*Transaction, error) {
	if err := typ.Validate(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", quantity, ErrConstraintViolation)
	}

	qty := decimal.NewFromInt(quantity)
	tx := &Transaction{
		ID:              id,
		ProductID:       p.ID,
		Type:            typ,
		Quantity:        quantity,
		UnitPriceAtTime: p.UnitPrice,
		UnitCostAtTime:  p.UnitCost,
		TransactionDate: NormalizeTime(date),
	}
	switch typ {
	case TransactionSale:
		tx.TotalPrice = p.UnitPrice.Mul(qty)
		tx.TotalProfit = p.Margin().Mul(qty)
	case TransactionRestock:
		tx.TotalPrice = p.UnitCost.Mul(qty)
		tx.TotalProfit = decimal.Zero
	}
	return tx, nil
}

// StockDelta is the signed change the transaction makes to stock.
func (t Transaction) StockDelta() (int64, error) {
	if t.Quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %d: %w", t.Quantity, ErrConstraintViolation)
	}
	switch t.Type {
	case TransactionSale:
		return -t.Quantity, nil
	case TransactionRestock:
		return t.Quantity, nil
	}
	return 0, t.Type.Validate()
}

// NormalizeTime stores every ledger timestamp in UTC at microsecond
// precision, the finest resolution both SQL backends keep.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// TransactionView is a ledger row joined with its product's name and category.
type TransactionView struct {
	Transaction
	ProductName     string `db:"product_name" json:"product_name"`
	ProductCategory string `db:"product_category" json:"product_category"`
}
