package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
)

// MemorySessionRepository keeps checkout sessions in process. Used when Redis
// is not configured and in tests.
type MemorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string][]byte
	expires  map[string]time.Time
}

var _ repository.SessionRepository = (*MemorySessionRepository)(nil)

// NewMemorySessionRepository creates an in-process store. A zero ttl never expires.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string][]byte{},
		expires:  map[string]time.Time{},
	}
}

// Load returns a copy so callers cannot mutate stored state without Save.
func (m *MemorySessionRepository) Load(_ context.Context, id string) (*entity.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if exp, ok := m.expires[id]; ok && m.now().After(exp) {
		delete(m.sessions, id)
		delete(m.expires, id)
		return nil, nil
	}

	var session entity.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (m *MemorySessionRepository) Save(_ context.Context, session *entity.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.UpdatedAt = m.now()
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.sessions[session.ID] = raw
	if m.ttl > 0 {
		m.expires[session.ID] = m.now().Add(m.ttl)
	}
	return nil
}

// MemoryRefundLedgerRepository keeps refund ledgers in process.
type MemoryRefundLedgerRepository struct {
	mu      sync.Mutex
	ledgers map[string][]byte
}

var _ repository.RefundLedgerRepository = (*MemoryRefundLedgerRepository)(nil)

func NewMemoryRefundLedgerRepository() *MemoryRefundLedgerRepository {
	return &MemoryRefundLedgerRepository{ledgers: map[string][]byte{}}
}

func (m *MemoryRefundLedgerRepository) Load(_ context.Context, owner string) (*entity.RefundLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger := entity.NewRefundLedger()
	raw, ok := m.ledgers[owner]
	if !ok {
		return ledger, nil
	}
	if err := json.Unmarshal(raw, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (m *MemoryRefundLedgerRepository) Save(_ context.Context, owner string, ledger *entity.RefundLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	m.ledgers[owner] = raw
	return nil
}
