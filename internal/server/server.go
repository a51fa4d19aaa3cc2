// Package server assembles the gRPC surface over the engine use cases.
package server

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/category"
	"github.com/fekuna/omnipos-inventory-service/internal/forecast"
	forecastH "github.com/fekuna/omnipos-inventory-service/internal/forecast/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	inventoryH "github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	productH "github.com/fekuna/omnipos-inventory-service/internal/product/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	reportH "github.com/fekuna/omnipos-inventory-service/internal/report/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type UseCases struct {
	Products   product.UseCase
	Categories category.UseCase
	Inventory  inventory.UseCase
	Reports    report.UseCase
	Forecast   forecast.UseCase
}

// New registers every service plus health and reflection. loc is the
// reporting time zone used to read calendar-day arguments.
func New(uc *UseCases, loc *time.Location, log logger.ZapLogger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{
		grpc.UnaryInterceptor(rpc.LoggingInterceptor(log)),
	}, opts...)
	srv := grpc.NewServer(opts...)

	productH.Register(srv, productH.NewProductHandler(uc.Products, uc.Categories, log))
	inventoryH.Register(srv, inventoryH.NewInventoryHandler(uc.Inventory, loc, log))
	reportH.Register(srv, reportH.NewReportHandler(uc.Reports, loc, log))
	forecastH.Register(srv, forecastH.NewForecastHandler(uc.Forecast, loc, log))

	hs := health.NewServer()
	for _, name := range []string{
		productH.ServiceName,
		inventoryH.ServiceName,
		reportH.ServiceName,
		forecastH.ServiceName,
	} {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv, hs
}
