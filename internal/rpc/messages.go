package rpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

const ServicePrefix = "omnipos.inventory.v1."

type Product struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	Stock        int64            `json:"stock"`
	InitialStock int64            `json:"initial_stock"`
	IsActive     bool             `json:"is_active"`
	AlertLevel   model.AlertLevel `json:"alert_level"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func MapProduct(p *model.Product) *Product {
	if p == nil {
		return nil
	}
	return &Product{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		UnitPrice:    p.UnitPrice,
		UnitCost:     p.UnitCost,
		Stock:        p.Stock(),
		InitialStock: p.InitialStock,
		IsActive:     p.IsActive,
		AlertLevel:   p.AlertLevel(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func MapProducts(ps []model.Product) []*Product {
	out := make([]*Product, len(ps))
	for i := range ps {
		out[i] = MapProduct(&ps[i])
	}
	return out
}

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar day (2006-01-02, read in loc) or an RFC 3339
// timestamp. An empty string yields the zero time.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, model.ErrConstraintViolation)
	}
	return t, nil
}
