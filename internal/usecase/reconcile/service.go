package reconcile

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

const DefaultSettleDelay = 2 * time.Second

type Config struct {
	// SettleDelay is the wait before a manual capture is issued.
	SettleDelay time.Duration
	// RefreshAggregate asks the provider for the aggregate when the session has none.
	RefreshAggregate bool
}

type Service struct {
	sessions repository.SessionRepository
	gateway  provider.PaymentGateway
	orders   repository.OrderRepository
	users    repository.UserRepository
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	sessions repository.SessionRepository,
	gateway provider.PaymentGateway,
	orders repository.OrderRepository,
	users repository.UserRepository,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		gateway:  gateway,
		orders:   orders,
		users:    users,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("reconcile"),
	}
}

// Mount loads the checkout session and starts the payment-return flow. The
// flow lives until ctx is cancelled or Unmount is called; a pending capture is
// abandoned at that point.
func (s *Service) Mount(ctx context.Context, sessionID string) (*Mount, error) {
	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("checkout session not found")
	}

	s.refreshAggregate(ctx, session)

	now := s.now()
	session.CartItems = StampTickets(session.CartItems, session.OrderReference, now)
	if session.OrderReference != "" && !session.HasOrder(session.OrderReference) {
		session.Orders = append([]entity.Order{buildOrder(session, now)}, session.Orders...)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		apperrors.LogError(s.logger, err, "Failed to save stamped session", zap.String("session_id", session.ID))
	}

	mountCtx, cancel := context.WithCancel(ctx)
	m := &Mount{
		svc:     s,
		session: session,
		status:  DeriveStatus(session.VippsAggregate),
		total:   entity.CartTotal(session.CartItems),
		cancel:  cancel,
		settled: make(chan struct{}),
	}

	if NeedsManualCapture(session.VippsAggregate, session.OrderReference, m.total) {
		delay := s.cfg.SettleDelay
		if delay <= 0 {
			delay = DefaultSettleDelay
		}
		go m.captureAfter(mountCtx, delay)
	} else {
		close(m.settled)
	}

	s.logger.Info("Payment return mounted",
		zap.String("session_id", session.ID),
		zap.String("order_reference", session.OrderReference),
		zap.String("status", string(m.status)))
	return m, nil
}

func (s *Service) refreshAggregate(ctx context.Context, session *entity.CheckoutSession) {
	if !s.cfg.RefreshAggregate || session.VippsAggregate != nil || session.OrderReference == "" {
		return
	}

	details, err := s.gateway.GetPayment(ctx, session.OrderReference)
	if err != nil {
		s.logger.Warn("Failed to refresh payment aggregate",
			zap.String("order_reference", session.OrderReference),
			zap.Error(err))
		return
	}
	session.VippsAggregate = details.Aggregate
	if session.PSPReference == "" {
		session.PSPReference = details.PSPReference
	}
}

// PersistResult describes what PersistOrder did.
type PersistResult string

const (
	PersistSkippedNoIdentity     PersistResult = "skipped_no_identity"
	PersistSkippedNoPSPReference PersistResult = "skipped_no_psp_reference"
	PersistAlreadyExists         PersistResult = "already_exists"
	PersistCreated               PersistResult = "created"
)

// PersistOrder stores the mounted order under the buyer's account. It needs a
// signed-in buyer and a known pspReference. The existence check and insert are
// not atomic; two concurrent calls may both insert.
func (s *Service) PersistOrder(ctx context.Context, identity *entity.Identity, m *Mount) (PersistResult, error) {
	if identity == nil || identity.Email == "" {
		return PersistSkippedNoIdentity, nil
	}

	session := m.Session()
	if session.PSPReference == "" {
		return PersistSkippedNoPSPReference, nil
	}

	userID := strings.ToLower(identity.Email)
	if err := s.users.Ensure(ctx, &entity.User{ID: userID, Email: identity.Email, Name: identity.Name}); err != nil {
		return "", err
	}

	exists, err := s.orders.ExistsByReference(ctx, userID, session.OrderReference)
	if err != nil {
		return "", err
	}
	if exists {
		return PersistAlreadyExists, nil
	}

	order := buildOrder(session, s.now())
	order.UserID = userID
	if err := s.orders.Create(ctx, &order); err != nil {
		return "", err
	}

	s.logger.Info("Order saved",
		zap.String("user_id", userID),
		zap.String("order_reference", order.OrderReference))
	return PersistCreated, nil
}

func buildOrder(session *entity.CheckoutSession, at time.Time) entity.Order {
	items := make([]entity.CartItem, len(session.CartItems))
	copy(items, session.CartItems)

	return entity.Order{
		OrderReference: session.OrderReference,
		BuyerName:      session.BuyerName,
		PhoneNumber:    session.PhoneNumber,
		Email:          session.Email,
		DatePurchased:  at,
		Items:          items,
		TotalPrice:     entity.CartTotal(items),
		PSPReference:   session.PSPReference,
		VippsAggregate: session.VippsAggregate,
	}
}
