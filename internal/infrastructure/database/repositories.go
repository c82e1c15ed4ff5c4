package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/storefront/internal/adapter/repository"
	"github.com/wekeepgrowing/storefront/internal/config"
	domainRepo "github.com/wekeepgrowing/storefront/internal/domain/repository"
	"github.com/wekeepgrowing/storefront/pkg/messaging"
)

// Repositories holds all repository instances
type Repositories struct {
	Payment  domainRepo.PaymentRepository
	Webhook  domainRepo.WebhookEventRepository
	Order    domainRepo.OrderRepository
	User     domainRepo.UserRepository
	Admin    domainRepo.AdminUserRepository
	Session  domainRepo.SessionRepository
	Ledger   domainRepo.RefundLedgerRepository
	Messages messaging.RedisClient
}

// NewRepositories wires the Postgres repositories and the key-value stores.
// Without a Redis client sessions and ledgers live in process and no status
// messages are published.
func NewRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.RedisConfig, logger *zap.Logger) *Repositories {
	repos := &Repositories{
		Payment: repository.NewPaymentRepository(db, logger),
		Webhook: repository.NewWebhookRepository(db, logger),
		Order:   repository.NewOrderRepository(db, logger),
		User:    repository.NewUserRepository(db, logger),
		Admin:   repository.NewAdminUserRepository(db),
	}

	if rdb == nil {
		logger.Warn("Redis not configured; checkout sessions and refund ledgers are kept in memory")
		repos.Session = repository.NewMemorySessionRepository(cfg.SessionTTL)
		repos.Ledger = repository.NewMemoryRefundLedgerRepository()
		return repos
	}

	repos.Session = repository.NewRedisSessionRepository(rdb, cfg.SessionTTL, logger)
	repos.Ledger = repository.NewRedisRefundLedgerRepository(rdb)
	repos.Messages = messaging.NewRedisClient(rdb)
	return repos
}

// ConnectRedis dials Redis with the same startup retry policy as the database.
// It returns nil, nil when Redis is not configured.
func ConnectRedis(ctx context.Context, cfg *config.RedisConfig, maxElapsed time.Duration, log *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var client *redis.Client
	connect := func() error {
		c, err := messaging.Connect(ctx, cfg.Addr, cfg.Password, cfg.DB)
		if err != nil {
			return err
		}
		client = c
		return nil
	}

	err := backoff.RetryNotify(connect, retryPolicy(ctx, maxElapsed), func(err error, wait time.Duration) {
		log.Warn("Redis not ready, retrying", zap.Error(err), zap.Duration("retry_in", wait))
	})
	if err != nil {
		return nil, err
	}

	log.Info("Redis connection established", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}
