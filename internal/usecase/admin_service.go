package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(identity entity.Identity, ttl time.Duration) (string, time.Time, error)
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminService backs the admin console: login, customer listing and deletion,
// and per-customer order views.
type AdminService struct {
	admins   repository.AdminUserRepository
	users    repository.UserRepository
	refunds  *RefundService
	issuer   TokenIssuer
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAdminService(
	admins repository.AdminUserRepository,
	users repository.UserRepository,
	refunds *RefundService,
	issuer TokenIssuer,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		admins:   admins,
		users:    users,
		refunds:  refunds,
		issuer:   issuer,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Login checks the admin credentials and issues an admin token. Unknown users
// and wrong passwords produce the same error.
func (s *AdminService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		s.logger.Warn("Admin login with unknown username", zap.String("username", username))
		return nil, apperrors.Unauthenticated("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Admin login with wrong password", zap.String("username", username))
		return nil, apperrors.Unauthenticated("invalid username or password")
	}

	token, expiresAt, err := s.issuer.Issue(entity.Identity{Subject: admin.Username, Role: entity.RoleAdmin}, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin logged in", zap.String("username", username))
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("user not found")
	}
	s.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

// ListUserOrders returns the customer's refundable orders with ledger state.
func (s *AdminService) ListUserOrders(ctx context.Context, userID string) ([]OrderRefundView, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return s.refunds.OrderViews(ctx, userID)
}
