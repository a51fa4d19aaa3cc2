package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/forecast"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const ServiceName = rpc.ServicePrefix + "ForecastService"

type RecommendRestockRequest struct {
	ProductID string `json:"product_id"`
	AsOf      string `json:"as_of"`
}

type RestockReportRequest struct {
	AsOf string `json:"as_of"`
}

type RestockReportResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

type LowStockAlertsRequest struct{}

type LowStockAlertsResponse struct {
	Alerts []model.StockAlert `json:"alerts"`
}

type ForecastServer interface {
	RecommendRestock(context.Context, *RecommendRestockRequest) (*model.Recommendation, error)
	RestockReport(context.Context, *RestockReportRequest) (*RestockReportResponse, error)
	LowStockAlerts(context.Context, *LowStockAlertsRequest) (*LowStockAlertsResponse, error)
}

var _ ForecastServer = (*ForecastHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ForecastServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "RecommendRestock", ForecastServer.RecommendRestock),
		rpc.Unary(ServiceName, "RestockReport", ForecastServer.RestockReport),
		rpc.Unary(ServiceName, "LowStockAlerts", ForecastServer.LowStockAlerts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/forecast.json",
}

type ForecastHandler struct {
	uc     forecast.UseCase
	loc    *time.Location
	now    func() time.Time
	logger logger.ZapLogger
}

func NewForecastHandler(uc forecast.UseCase, loc *time.Location, log logger.ZapLogger) *ForecastHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ForecastHandler{
		uc:     uc,
		loc:    loc,
		now:    time.Now,
		logger: log,
	}
}

func Register(s grpc.ServiceRegistrar, h ForecastServer) {
	s.RegisterService(&ServiceDesc, h)
}

func (h *ForecastHandler) RecommendRestock(ctx context.Context, req *RecommendRestockRequest) (*model.Recommendation, error) {
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return nil, rpc.Status(err)
	}
	rec, err := h.uc.RecommendRestock(ctx, req.ProductID, asOf)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return rec, nil
}

func (h *ForecastHandler) RestockReport(ctx context.Context, req *RestockReportRequest) (*RestockReportResponse, error) {
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return nil, rpc.Status(err)
	}
	recs, err := h.uc.RestockReport(ctx, asOf)
	if err != nil {
		h.logger.Error("failed to build restock report", zap.Error(err))
		return nil, rpc.Status(err)
	}
	return &RestockReportResponse{Recommendations: recs}, nil
}

func (h *ForecastHandler) LowStockAlerts(ctx context.Context, _ *LowStockAlertsRequest) (*LowStockAlertsResponse, error) {
	alerts, err := h.uc.LowStockAlerts(ctx)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return &LowStockAlertsResponse{Alerts: alerts}, nil
}

func (h *ForecastHandler) asOf(s string) (time.Time, error) {
	t, err := rpc.ParseDate(s, h.loc)
	if err != nil {
		return time.Time{}, err
	}
	if t.IsZero() {
		return h.now(), nil
	}
	return t, nil
}
