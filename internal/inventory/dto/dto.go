package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// TransactionFilters select ledger rows. From and To are inclusive; zero
// values leave that side open.
type TransactionFilters struct {
	ProductID string
	Category  string
	Type      model.TransactionType
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}
