package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type RecordTransactionInput struct {
	ProductID string
	Type      model.TransactionType
	Quantity  int64
	Date      time.Time // zero means now
}

type AdministrativeRestockInput struct {
	ProductID string
	Quantity  int64
	Date      time.Time
}

type RecordTransactionResult struct {
	Transaction model.Transaction
	Product     model.Product
}
