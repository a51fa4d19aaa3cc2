package handler

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const ServiceName = rpc.ServicePrefix + "InventoryService"

type RecordTransactionRequest struct {
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Date      time.Time `json:"date"`
}

type AdministrativeRestockRequest struct {
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Date      time.Time `json:"date"`
}

type TransactionResponse struct {
	Transaction model.Transaction `json:"transaction"`
	Product     *rpc.Product      `json:"product"`
}

type ListTransactionsRequest struct {
	ProductID string `json:"product_id"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	From      string `json:"from"`
	To        string `json:"to"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

type ListTransactionsResponse struct {
	Transactions []model.TransactionView `json:"transactions"`
	Total        int                     `json:"total"`
}

type VerifyLedgerRequest struct {
	ProductID string `json:"product_id"`
}

type InventoryServer interface {
	RecordTransaction(context.Context, *RecordTransactionRequest) (*TransactionResponse, error)
	AdministrativeRestock(context.Context, *AdministrativeRestockRequest) (*TransactionResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	VerifyLedger(context.Context, *VerifyLedgerRequest) (*model.LedgerCheck, error)
}

var _ InventoryServer = (*InventoryHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "RecordTransaction", InventoryServer.RecordTransaction),
		rpc.Unary(ServiceName, "AdministrativeRestock", InventoryServer.AdministrativeRestock),
		rpc.Unary(ServiceName, "ListTransactions", InventoryServer.ListTransactions),
		rpc.Unary(ServiceName, "VerifyLedger", InventoryServer.VerifyLedger),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/inventory.json",
}

type InventoryHandler struct {
	uc     inventory.UseCase
	loc    *time.Location
	logger logger.ZapLogger
}

// NewInventoryHandler serves the stock mutator. loc resolves date-only
// filter bounds.
func NewInventoryHandler(uc inventory.UseCase, loc *time.Location, log logger.ZapLogger) *InventoryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryHandler{
		uc:     uc,
		loc:    loc,
		logger: log,
	}
}

func Register(s grpc.ServiceRegistrar, h InventoryServer) {
	s.RegisterService(&ServiceDesc, h)
}

func (h *InventoryHandler) RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*TransactionResponse, error) {
	typ, err := model.ParseTransactionType(req.Type)
	if err != nil {
		return nil, rpc.Status(err)
	}

	res, err := h.uc.RecordTransaction(ctx, &dto.RecordTransactionInput{
		ProductID: req.ProductID,
		Type:      typ,
		Quantity:  req.Quantity,
		Date:      req.Date,
	})
	if err != nil {
		h.logger.Warn("transaction rejected",
			zap.String("product_id", req.ProductID),
			zap.String("type", req.Type),
			zap.Int64("quantity", req.Quantity),
			zap.Error(err),
		)
		return nil, rpc.Status(err)
	}
	return mapResult(res), nil
}

func (h *InventoryHandler) AdministrativeRestock(ctx context.Context, req *AdministrativeRestockRequest) (*TransactionResponse, error) {
	res, err := h.uc.AdministrativeRestock(ctx, &dto.AdministrativeRestockInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Date:      req.Date,
	})
	if err != nil {
		return nil, rpc.Status(err)
	}
	h.logger.Info("administrative restock",
		zap.String("product_id", req.ProductID),
		zap.Int64("quantity", req.Quantity),
		zap.String("actor", rpc.ActorID(ctx)),
	)
	return mapResult(res), nil
}

func (h *InventoryHandler) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	filters := &dto.TransactionFilters{
		ProductID: req.ProductID,
		Category:  req.Category,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Type != "" {
		typ, err := model.ParseTransactionType(req.Type)
		if err != nil {
			return nil, rpc.Status(err)
		}
		filters.Type = typ
	}

	from, err := rpc.ParseDate(req.From, h.loc)
	if err != nil {
		return nil, rpc.Status(err)
	}
	to, err := rpc.ParseDate(req.To, h.loc)
	if err != nil {
		return nil, rpc.Status(err)
	}
	filters.From = from
	if !to.IsZero() && len(strings.TrimSpace(req.To)) == len("2006-01-02") {
		// a bare day includes everything up to its last microsecond
		to = to.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	filters.To = to

	items, total, err := h.uc.ListTransactions(ctx, filters)
	if err != nil {
		return nil, rpc.Status(err)
	}
	if items == nil {
		items = []model.TransactionView{}
	}
	return &ListTransactionsResponse{Transactions: items, Total: total}, nil
}

func (h *InventoryHandler) VerifyLedger(ctx context.Context, req *VerifyLedgerRequest) (*model.LedgerCheck, error) {
	check, err := h.uc.VerifyLedger(ctx, req.ProductID)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return check, nil
}

func mapResult(res *dto.RecordTransactionResult) *TransactionResponse {
	return &TransactionResponse{
		Transaction: res.Transaction,
		Product:     rpc.MapProduct(&res.Product),
	}
}
