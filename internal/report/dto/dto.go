package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// SummaryInput covers the calendar days From..To inclusive.
type SummaryInput struct {
	From      time.Time
	To        time.Time
	Bucket    model.Bucket
	ProductID string
	Category  string
}

type TopProductsInput struct {
	From  time.Time
	To    time.Time
	Limit int // <= 0 returns every product with sales
}
