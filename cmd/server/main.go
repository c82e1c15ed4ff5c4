package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/storefront/internal/adapter/handler/http"
	"github.com/wekeepgrowing/storefront/internal/config"
	"github.com/wekeepgrowing/storefront/internal/infrastructure/database"
	grpcServer "github.com/wekeepgrowing/storefront/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/storefront/internal/infrastructure/http"
	"github.com/wekeepgrowing/storefront/internal/infrastructure/provider"
	"github.com/wekeepgrowing/storefront/internal/middleware/auth"
	"github.com/wekeepgrowing/storefront/internal/usecase"
	"github.com/wekeepgrowing/storefront/internal/usecase/reconcile"
	"github.com/wekeepgrowing/storefront/pkg/logger"
)

func main() {
	// Prices are sent to the storefront as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zlog = zlog.With(zap.String("service", cfg.Service.Name), zap.String("env", cfg.Service.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zlog); err != nil {
			zlog.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, zlog); err != nil {
			zlog.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}

	rdb, err := database.ConnectRedis(ctx, &cfg.Redis, cfg.Database.ConnectTimeout, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	repos := database.NewRepositories(db, rdb, &cfg.Redis, zlog)

	gateway, err := provider.NewGateway(&cfg.Vipps, zlog.Named("vipps"))
	if err != nil {
		zlog.Fatal("Failed to create payment gateway", zap.Error(err))
	}

	paymentUC := usecase.NewPaymentUsecase(gateway, repos.Payment, repos.Session, cfg.Vipps.Currency, zlog)
	webhookSvc := usecase.NewWebhookService(repos.Payment, repos.Webhook, repos.Messages, zlog)
	sessionSvc := usecase.NewSessionService(repos.Session, zlog)
	reconciler := reconcile.NewService(repos.Session, gateway, repos.Order, repos.User, reconcile.Config{
		SettleDelay:      cfg.Reconcile.SettleDelay,
		RefreshAggregate: cfg.Reconcile.RefreshAggregate,
	}, zlog)
	refundSvc := usecase.NewRefundService(gateway, repos.Order, repos.Ledger, repos.Payment, zlog)
	adminSvc := usecase.NewAdminService(repos.Admin, repos.User, refundSvc,
		auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer), cfg.JWT.AdminTTL, zlog)

	httpSrv := httpServer.NewServer(cfg, zlog, httpServer.Handlers{
		Payment:  handlers.NewPaymentHandler(paymentUC, zlog),
		Webhook:  handlers.NewWebhookHandler(webhookSvc, zlog),
		Checkout: handlers.NewCheckoutHandler(sessionSvc, reconciler, zlog),
		Admin:    handlers.NewAdminHandler(adminSvc, refundSvc, repos.Messages, zlog),
	})

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Port > 0 {
		grpcSrv = grpcServer.NewServer(cfg, zlog)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zlog.Fatal("Failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	zlog.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zlog.Info("Servers shut down successfully")
}
