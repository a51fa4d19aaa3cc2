package model

import "time"

type AlertLevel string

const (
	AlertCritical AlertLevel = "CRITICAL"
	AlertLow      AlertLevel = "LOW"
	AlertSafe     AlertLevel = "SAFE"
)

const (
	CriticalStockThreshold int64 = 2
	LowStockThreshold      int64 = 5
)

// AlertLevelFor classifies stock against the fixed thresholds: 2 and below
// is critical, 3 to 5 is low.
func AlertLevelFor(stock int64) AlertLevel {
	switch {
	case stock <= CriticalStockThreshold:
		return AlertCritical
	case stock <= LowStockThreshold:
		return AlertLow
	default:
		return AlertSafe
	}
}

// Severity orders alert levels, most urgent first.
func (a AlertLevel) Severity() int {
	switch a {
	case AlertCritical:
		return 0
	case AlertLow:
		return 1
	default:
		return 2
	}
}

type StockAlertEvent struct {
	EventID       string     `json:"event_id"`
	EventType     string     `json:"event_type"`
	ProductID     string     `json:"product_id"`
	ProductName   string     `json:"product_name"`
	Stock         int64      `json:"stock"`
	AlertLevel    AlertLevel `json:"alert_level"`
	TransactionID string     `json:"transaction_id"`
	Timestamp     time.Time  `json:"timestamp"`
}

type StockAlert struct {
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Category    string     `json:"category"`
	Stock       int64      `json:"stock"`
	AlertLevel  AlertLevel `json:"alert_level"`
}
