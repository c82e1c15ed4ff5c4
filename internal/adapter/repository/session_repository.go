package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
)

const (
	sessionKeyPrefix = "storefront:checkout:"
	ledgerKeyPrefix  = "storefront:refund-ledger:"
)

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionRepository stores checkout sessions as JSON with a sliding TTL.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) repository.SessionRepository {
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *redisSessionRepository) Load(ctx context.Context, id string) (*entity.CheckoutSession, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session entity.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		r.logger.Warn("Discarding unreadable checkout session",
			zap.String("session_id", id),
			zap.Error(err))
		return nil, nil
	}
	return &session, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, session *entity.CheckoutSession) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

type redisRefundLedgerRepository struct {
	client *redis.Client
}

// NewRedisRefundLedgerRepository stores one ledger document per owner without expiry.
func NewRedisRefundLedgerRepository(client *redis.Client) repository.RefundLedgerRepository {
	return &redisRefundLedgerRepository{client: client}
}

func (r *redisRefundLedgerRepository) Load(ctx context.Context, owner string) (*entity.RefundLedger, error) {
	raw, err := r.client.Get(ctx, ledgerKeyPrefix+owner).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.NewRefundLedger(), nil
		}
		return nil, fmt.Errorf("failed to load refund ledger: %w", err)
	}

	ledger := entity.NewRefundLedger()
	if err := json.Unmarshal(raw, ledger); err != nil {
		return nil, fmt.Errorf("failed to decode refund ledger: %w", err)
	}
	return ledger, nil
}

func (r *redisRefundLedgerRepository) Save(ctx context.Context, owner string, ledger *entity.RefundLedger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode refund ledger: %w", err)
	}
	if err := r.client.Set(ctx, ledgerKeyPrefix+owner, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save refund ledger: %w", err)
	}
	return nil
}
