package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	ID           string // optional, generated when empty
	Name         string
	Category     string
	UnitPrice    decimal.Decimal
	UnitCost     decimal.Decimal
	InitialStock int64
}

// UpdateProductInput is an administrative edit; it has no stock field.
type UpdateProductInput struct {
	ID        string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
}
