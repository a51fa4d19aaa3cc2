package server

import (
	"context"
	"net"
	"testing"
	"time"

	catUC "github.com/fekuna/omnipos-inventory-service/internal/category/usecase"
	forecastH "github.com/fekuna/omnipos-inventory-service/internal/forecast/handler"
	fcUC "github.com/fekuna/omnipos-inventory-service/internal/forecast/usecase"
	inventoryH "github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	invUC "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/lock"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productH "github.com/fekuna/omnipos-inventory-service/internal/product/handler"
	prodUC "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	reportH "github.com/fekuna/omnipos-inventory-service/internal/report/handler"
	reportUC "github.com/fekuna/omnipos-inventory-service/internal/report/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	log := logger.NewNop()
	store := memory.New()
	reports := reportUC.NewReportUseCase(store, store, time.UTC, log)
	srv, _ := New(&UseCases{
		Products:   prodUC.NewProductUseCase(store, nil, log),
		Categories: catUC.NewCategoryUseCase(store, log),
		Inventory:  invUC.NewInventoryUseCase(store, store, lock.NewLocalLocker(), lock.DefaultRetryPolicy(), nil, log),
		Reports:    reports,
		Forecast:   fcUC.NewForecastUseCase(store, store, reports, time.UTC, log),
	}, time.UTC, log)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRoundTrip(t *testing.T) {
	conn := dial(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	added, err := rpc.Invoke[productH.ProductResponse](ctx, conn, productH.ServiceName, "AddProduct", &productH.AddProductRequest{
		ID:           "P001",
		Name:         "Kopi",
		Category:     "Drink",
		UnitPrice:    decimal.RequireFromString("18000"),
		UnitCost:     decimal.RequireFromString("11000"),
		InitialStock: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), added.Product.Stock)
	assert.Equal(t, model.AlertSafe, added.Product.AlertLevel)

	saleAt := time.Now().UTC().Add(-time.Minute)
	sold, err := rpc.Invoke[inventoryH.TransactionResponse](ctx, conn, inventoryH.ServiceName, "RecordTransaction", &inventoryH.RecordTransactionRequest{
		ProductID: "P001",
		Type:      "sale",
		Quantity:  6,
		Date:      saleAt,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), sold.Product.Stock)
	assert.True(t, sold.Transaction.TotalPrice.Equal(decimal.RequireFromString("108000")))

	_, err = rpc.Invoke[inventoryH.TransactionResponse](ctx, conn, inventoryH.ServiceName, "RecordTransaction", &inventoryH.RecordTransactionRequest{
		ProductID: "P001",
		Type:      "SALE",
		Quantity:  5,
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = rpc.Invoke[inventoryH.TransactionResponse](ctx, conn, inventoryH.ServiceName, "RecordTransaction", &inventoryH.RecordTransactionRequest{
		ProductID: "P001",
		Type:      "REFUND",
		Quantity:  1,
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = rpc.Invoke[productH.ProductResponse](ctx, conn, productH.ServiceName, "GetProduct", &productH.ProductIDRequest{ID: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	today := saleAt.Format("2006-01-02")
	summary, err := rpc.Invoke[reportH.SummarizeResponse](ctx, conn, reportH.ServiceName, "Summarize", &reportH.SummarizeRequest{From: today, To: today})
	require.NoError(t, err)
	require.Len(t, summary.Buckets, 1)
	assert.Equal(t, int64(6), summary.Buckets[0].UnitsSold)

	rec, err := rpc.Invoke[model.Recommendation](ctx, conn, forecastH.ServiceName, "RecommendRestock", &forecastH.RecommendRestockRequest{ProductID: "P001", AsOf: today})
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.CurrentStock)
	assert.Equal(t, model.AlertLow, rec.AlertLevel)
	// 6 sold on one day: forecast 18, safety 4, need 22 - 4
	assert.Equal(t, int64(18), rec.RecommendedRestockQuantity)

	check, err := rpc.Invoke[model.LedgerCheck](ctx, conn, inventoryH.ServiceName, "VerifyLedger", &inventoryH.VerifyLedgerRequest{ProductID: "P001"})
	require.NoError(t, err)
	assert.True(t, check.Consistent)

	deleted, err := rpc.Invoke[productH.DeleteProductResponse](ctx, conn, productH.ServiceName, "DeleteProduct", &productH.ProductIDRequest{ID: "P001"})
	require.NoError(t, err)
	assert.False(t, deleted.HardDeleted)

	alerts, err := rpc.Invoke[forecastH.LowStockAlertsResponse](ctx, conn, forecastH.ServiceName, "LowStockAlerts", &forecastH.LowStockAlertsRequest{})
	require.NoError(t, err)
	assert.Empty(t, alerts.Alerts, "deactivated products do not alert")
}

func TestHealth(t *testing.T) {
	conn := dial(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: inventoryH.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
