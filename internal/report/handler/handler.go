package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

const ServiceName = rpc.ServicePrefix + "ReportService"

type SummarizeRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Bucket    string `json:"bucket"`
	ProductID string `json:"product_id"`
	Category  string `json:"category"`
}

type SummarizeResponse struct {
	Buckets []model.SummaryBucket `json:"buckets"`
}

type TopProductsRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Limit int    `json:"limit"`
}

type ProductSales struct {
	Product   *rpc.Product    `json:"product"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type TopProductsResponse struct {
	Products []ProductSales `json:"products"`
}

type TodayRequest struct{}

type ReportServer interface {
	Summarize(context.Context, *SummarizeRequest) (*SummarizeResponse, error)
	TopProducts(context.Context, *TopProductsRequest) (*TopProductsResponse, error)
	Today(context.Context, *TodayRequest) (*model.SummaryBucket, error)
}

var _ ReportServer = (*ReportHandler)(nil)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReportServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "Summarize", ReportServer.Summarize),
		rpc.Unary(ServiceName, "TopProducts", ReportServer.TopProducts),
		rpc.Unary(ServiceName, "Today", ReportServer.Today),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/report.json",
}

type ReportHandler struct {
	uc     report.UseCase
	loc    *time.Location
	now    func() time.Time
	logger logger.ZapLogger
}

func NewReportHandler(uc report.UseCase, loc *time.Location, log logger.ZapLogger) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{
		uc:     uc,
		loc:    loc,
		now:    time.Now,
		logger: log,
	}
}

func Register(s grpc.ServiceRegistrar, h ReportServer) {
	s.RegisterService(&ServiceDesc, h)
}

func (h *ReportHandler) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error) {
	bucket, err := model.ParseBucket(req.Bucket)
	if err != nil {
		return nil, rpc.Status(err)
	}
	from, to, err := h.parseRange(req.From, req.To)
	if err != nil {
		return nil, rpc.Status(err)
	}

	buckets, err := h.uc.Summarize(ctx, &dto.SummaryInput{
		From:      from,
		To:        to,
		Bucket:    bucket,
		ProductID: req.ProductID,
		Category:  req.Category,
	})
	if err != nil {
		return nil, rpc.Status(err)
	}
	if buckets == nil {
		buckets = []model.SummaryBucket{}
	}
	return &SummarizeResponse{Buckets: buckets}, nil
}

func (h *ReportHandler) TopProducts(ctx context.Context, req *TopProductsRequest) (*TopProductsResponse, error) {
	from, to, err := h.parseRange(req.From, req.To)
	if err != nil {
		return nil, rpc.Status(err)
	}

	ranked, err := h.uc.TopProducts(ctx, &dto.TopProductsInput{From: from, To: to, Limit: req.Limit})
	if err != nil {
		return nil, rpc.Status(err)
	}

	out := make([]ProductSales, len(ranked))
	for i := range ranked {
		out[i] = ProductSales{
			Product:   rpc.MapProduct(&ranked[i].Product),
			UnitsSold: ranked[i].UnitsSold,
			Revenue:   ranked[i].Revenue,
		}
	}
	return &TopProductsResponse{Products: out}, nil
}

func (h *ReportHandler) Today(ctx context.Context, _ *TodayRequest) (*model.SummaryBucket, error) {
	b, err := h.uc.Today(ctx, h.now())
	if err != nil {
		return nil, rpc.Status(err)
	}
	return b, nil
}

// parseRange defaults an open end to today in the reporting zone.
func (h *ReportHandler) parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	today := h.now().In(h.loc)
	from, err := rpc.ParseDate(fromStr, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := rpc.ParseDate(toStr, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = to
	}
	return from, to, nil
}
