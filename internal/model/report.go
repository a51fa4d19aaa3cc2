package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Bucket string

const (
	BucketDay   Bucket = "DAY"
	BucketWeek  Bucket = "WEEK"
	BucketMonth Bucket = "MONTH"
)

func ParseBucket(s string) (Bucket, error) {
	if strings.TrimSpace(s) == "" {
		return BucketDay, nil
	}
	b := Bucket(strings.ToUpper(strings.TrimSpace(s)))
	switch b {
	case BucketDay, BucketWeek, BucketMonth:
		return b, nil
	}
	return "", fmt.Errorf("unknown bucket %q: %w", s, ErrConstraintViolation)
}

// Start returns the beginning of the bucket containing t, in t's location.
// Weeks start on Monday.
func (b Bucket) Start(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	switch b {
	case BucketWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case BucketMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// Next returns the start of the bucket following the one starting at start.
func (b Bucket) Next(start time.Time) time.Time {
	switch b {
	case BucketWeek:
		return start.AddDate(0, 0, 7)
	case BucketMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

type SummaryBucket struct {
	BucketStart      time.Time       `json:"bucket_start"`
	Revenue          decimal.Decimal `json:"total_sales_revenue"`
	Profit           decimal.Decimal `json:"total_profit"`
	UnitsSold        int64           `json:"total_units_sold"`
	TransactionCount int64           `json:"transaction_count"`
}

type ProductSales struct {
	Product   Product         `json:"product"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type DailyUnits struct {
	Day   time.Time `json:"day"`
	Units int64     `json:"units"`
}

type Recommendation struct {
	ProductID                  string     `json:"product_id"`
	ProductName                string     `json:"product_name"`
	CurrentStock               int64      `json:"current_stock"`
	WindowDays                 int        `json:"window_days"`
	AverageDailyDemand         float64    `json:"average_daily_demand"`
	ForecastDemand             float64    `json:"forecast_demand"`
	SafetyStock                int64      `json:"safety_stock"`
	RecommendedRestockQuantity int64      `json:"recommended_restock_quantity"`
	AlertLevel                 AlertLevel `json:"alert_level"`
	NoHistory                  bool       `json:"no_history"`
}

type CategorySummary struct {
	Name         string `db:"name" json:"name"`
	ProductCount int64  `db:"product_count" json:"product_count"`
	StockUnits   int64  `db:"stock_units" json:"stock_units"`
}

// LedgerCheck compares a product's stored stock against a replay of its ledger.
type LedgerCheck struct {
	ProductID    string `json:"product_id"`
	InitialStock int64  `json:"initial_stock"`
	Restocked    int64  `json:"restocked"`
	Sold         int64  `json:"sold"`
	Expected     int64  `json:"expected"`
	Stored       int64  `json:"stored"`
	Consistent   bool   `json:"consistent"`
}
