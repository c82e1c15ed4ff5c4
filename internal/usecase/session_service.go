package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

// CheckoutInput is what the storefront stores before redirecting to Vipps.
type CheckoutInput struct {
	OrderReference string            `json:"orderReference" validate:"required"`
	PhoneNumber    string            `json:"phoneNumber" validate:"required"`
	BuyerName      string            `json:"buyerName"`
	Email          string            `json:"email" validate:"omitempty,email"`
	CartItems      []entity.CartItem `json:"cartItems" validate:"required,min=1,dive"`
}

type SessionService struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
}

func NewSessionService(sessions repository.SessionRepository, logger *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, logger: logger}
}

// Put stores the pre-payment state. An empty id starts a new session. Order
// history and provider fields of an existing session are kept.
func (s *SessionService) Put(ctx context.Context, id string, in CheckoutInput) (*entity.CheckoutSession, error) {
	var session *entity.CheckoutSession
	if id != "" {
		existing, err := s.sessions.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		session = existing
	} else {
		id = uuid.NewString()
	}
	if session == nil {
		session = &entity.CheckoutSession{ID: id}
	}

	// A new order reference means a new payment; drop the previous provider state.
	if session.OrderReference != in.OrderReference {
		session.PSPReference = ""
		session.VippsAggregate = nil
	}

	session.OrderReference = in.OrderReference
	session.PhoneNumber = in.PhoneNumber
	session.BuyerName = in.BuyerName
	session.Email = in.Email
	session.CartItems = in.CartItems

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("Checkout session stored",
		zap.String("session_id", session.ID),
		zap.String("order_reference", session.OrderReference),
		zap.Int("items", len(session.CartItems)))
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*entity.CheckoutSession, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("session id is required", nil)
	}
	session, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("checkout session not found")
	}
	return session, nil
}
