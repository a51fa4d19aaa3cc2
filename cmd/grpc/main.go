package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/lock"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/search"
	"github.com/fekuna/omnipos-inventory-service/internal/server"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"

	"github.com/fekuna/omnipos-inventory-service/internal/category"
	catRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-inventory-service/internal/category/usecase"

	fcUCPkg "github.com/fekuna/omnipos-inventory-service/internal/forecast/usecase"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invListenerPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/listener"
	invPublisherPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/publisher"
	invRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"

	"github.com/fekuna/omnipos-inventory-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"

	reportUCPkg "github.com/fekuna/omnipos-inventory-service/internal/report/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Report.Location()
	if loc.String() != cfg.Report.TimeZone {
		appLogger.Warn("Unknown report time zone, using UTC", zap.String("tz", cfg.Report.TimeZone))
	}

	// 3. Initialize Repositories
	var (
		prodRepo product.Repository
		invRepo  inventory.Repository
		catRepo  category.Repository
	)
	switch cfg.Database.Driver {
	case "memory":
		store := memory.New()
		prodRepo, invRepo, catRepo = store, store, store
		appLogger.Warn("Using in-memory store, data is lost on exit")
	default:
		db, err := database.Open(ctx, &database.Config{
			Driver:          cfg.Database.Driver,
			SQLitePath:      cfg.Database.SQLitePath,
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		prodRepo = prodRepoPkg.NewSQLRepository(db)
		invRepo = invRepoPkg.NewSQLRepository(db)
		catRepo = catRepoPkg.NewSQLRepository(db)
	}

	// 4. Initialize Lock
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Lock.Backend == "redis" {
		redisClient, err := lock.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}
	policy := lock.RetryPolicy{
		Attempts: cfg.Lock.Attempts,
		Interval: cfg.Lock.Interval,
		TTL:      cfg.Lock.TTL,
	}

	// 5. Initialize Elasticsearch
	var searchIndex product.SearchIndex
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
			Index:     cfg.Elastic.Index,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, searching the database instead", zap.Error(err))
		} else {
			searchIndex = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Initialize Kafka producer
	var alerts inventory.AlertPublisher
	if cfg.Kafka.Enabled {
		writer := invPublisherPkg.NewWriter(&invPublisherPkg.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.AlertTopic,
		})
		defer writer.Close()
		alerts = invPublisherPkg.NewAlertPublisher(writer)
	}

	// 7. Initialize UseCases
	reportUC := reportUCPkg.NewReportUseCase(invRepo, prodRepo, loc, appLogger)
	useCases := &server.UseCases{
		Products:   prodUCPkg.NewProductUseCase(prodRepo, searchIndex, appLogger),
		Categories: catUCPkg.NewCategoryUseCase(catRepo, appLogger),
		Inventory:  invUCPkg.NewInventoryUseCase(invRepo, prodRepo, locker, policy, alerts, appLogger),
		Reports:    reportUC,
		Forecast:   fcUCPkg.NewForecastUseCase(prodRepo, invRepo, reportUC, loc, appLogger),
	}

	// 8. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer, healthServer := server.New(useCases, loc, appLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		return grpcServer.Serve(lis)
	})

	if cfg.Kafka.Enabled {
		reader := invListenerPkg.NewReader(&invListenerPkg.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.SalesTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer reader.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.SalesTopic))

		salesListener := invListenerPkg.NewSalesListener(reader, useCases.Inventory, appLogger)
		g.Go(func() error {
			return salesListener.Start(gctx)
		})
	}

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server exited with error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
