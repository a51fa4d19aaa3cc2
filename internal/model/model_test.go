package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, stock int64) *Product {
	t.Helper()
	p, err := NewProduct("P001", "Kopi Susu", "Beverage",
		decimal.RequireFromString("18000"), decimal.RequireFromString("11000"),
		stock, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}

func TestNewProduct_Validation(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		id    string
		pname string
		price string
		cost  string
		stock int64
	}{
		{"missing id", "", "x", "1", "1", 0},
		{"blank name", "P1", "   ", "1", "1", 0},
		{"negative price", "P1", "x", "-1", "1", 0},
		{"negative cost", "P1", "x", "1", "-0.01", 0},
		{"negative stock", "P1", "x", "1", "1", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct(tc.id, tc.pname, "", decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.cost), tc.stock, now)
			assert.ErrorIs(t, err, ErrConstraintViolation)
		})
	}
}

func TestNewProduct_StartsAtInitialStock(t *testing.T) {
	p := newTestProduct(t, 12)
	assert.Equal(t, int64(12), p.Stock())
	assert.Equal(t, int64(12), p.InitialStock)
	assert.True(t, p.IsActive)
}

func TestApply(t *testing.T) {
	p := newTestProduct(t, 5)

	restock, err := NewTransaction("t1", *p, TransactionRestock, 10, time.Now())
	require.NoError(t, err)
	require.NoError(t, p.Apply(*restock))
	assert.Equal(t, int64(15), p.Stock())

	sale, err := NewTransaction("t2", *p, TransactionSale, 15, time.Now())
	require.NoError(t, err)
	require.NoError(t, p.Apply(*sale))
	assert.Equal(t, int64(0), p.Stock())
}

func TestApply_InsufficientStockLeavesStock(t *testing.T) {
	p := newTestProduct(t, 3)

	sale, err := NewTransaction("t1", *p, TransactionSale, 4, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, p.Apply(*sale), ErrInsufficientStock)
	assert.Equal(t, int64(3), p.Stock())
}

func TestApply_OtherProduct(t *testing.T) {
	p := newTestProduct(t, 3)
	tx := Transaction{ID: "t1", ProductID: "P999", Type: TransactionRestock, Quantity: 1}
	assert.ErrorIs(t, p.Apply(tx), ErrConstraintViolation)
}

func TestNewTransaction_Totals(t *testing.T) {
	p := newTestProduct(t, 10)
	at := time.Date(2024, 3, 5, 9, 30, 0, 123456789, time.FixedZone("WIB", 7*3600))

	sale, err := NewTransaction("t1", *p, TransactionSale, 3, at)
	require.NoError(t, err)
	assert.True(t, sale.TotalPrice.Equal(decimal.RequireFromString("54000")))
	assert.True(t, sale.TotalProfit.Equal(decimal.RequireFromString("21000")))
	assert.Equal(t, time.UTC, sale.TransactionDate.Location())
	assert.Equal(t, 123456000, sale.TransactionDate.Nanosecond())

	restock, err := NewTransaction("t2", *p, TransactionRestock, 4, at)
	require.NoError(t, err)
	assert.True(t, restock.TotalPrice.Equal(decimal.RequireFromString("44000")))
	assert.True(t, restock.TotalProfit.IsZero())
}

func TestNewTransaction_PricesAreSnapshots(t *testing.T) {
	p := newTestProduct(t, 10)
	sale, err := NewTransaction("t1", *p, TransactionSale, 1, time.Now())
	require.NoError(t, err)

	p.UnitPrice = decimal.RequireFromString("99999")
	assert.True(t, sale.UnitPriceAtTime.Equal(decimal.RequireFromString("18000")))
}

func TestNewTransaction_Rejects(t *testing.T) {
	p := newTestProduct(t, 10)

	_, err := NewTransaction("t1", *p, TransactionSale, 0, time.Now())
	assert.ErrorIs(t, err, ErrConstraintViolation)

	_, err = NewTransaction("t1", *p, TransactionType("RETURN"), 1, time.Now())
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestParseTransactionType(t *testing.T) {
	typ, err := ParseTransactionType(" sale ")
	require.NoError(t, err)
	assert.Equal(t, TransactionSale, typ)

	_, err = ParseTransactionType("adjust")
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestAlertLevelFor(t *testing.T) {
	cases := map[int64]AlertLevel{
		0: AlertCritical,
		2: AlertCritical,
		3: AlertLow,
		5: AlertLow,
		6: AlertSafe,
	}
	for stock, want := range cases {
		assert.Equal(t, want, AlertLevelFor(stock), "stock %d", stock)
	}
	assert.Less(t, AlertCritical.Severity(), AlertLow.Severity())
	assert.Less(t, AlertLow.Severity(), AlertSafe.Severity())
}

func TestBucket(t *testing.T) {
	// Wednesday
	at := time.Date(2024, 3, 6, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), BucketDay.Start(at))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), BucketWeek.Start(at))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), BucketMonth.Start(at))

	sunday := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), BucketWeek.Start(sunday))

	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), BucketMonth.Next(BucketMonth.Start(at)))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), BucketWeek.Next(BucketWeek.Start(at)))
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("")
	require.NoError(t, err)
	assert.Equal(t, BucketDay, b)

	b, err = ParseBucket("week")
	require.NoError(t, err)
	assert.Equal(t, BucketWeek, b)

	_, err = ParseBucket("year")
	assert.ErrorIs(t, err, ErrConstraintViolation)
}
