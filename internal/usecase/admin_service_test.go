package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wekeepgrowing/storefront/internal/adapter/repository"
	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/usecase"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

func newAdminService(t *testing.T) (*usecase.AdminService, *fakeIssuer, *fakeUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	admins := &fakeAdmins{admins: map[string]*entity.AdminUser{
		"kari": {ID: 1, Username: "kari", PasswordHash: string(hash)},
	}}
	users := newFakeUsers(&entity.User{ID: "ola@example.com", Email: "ola@example.com"})
	orders := &fakeOrders{orders: []*entity.Order{{
		UserID:         "ola@example.com",
		OrderReference: "ord-1",
		TotalPrice:     decimal.RequireFromString("150"),
		Items:          []entity.CartItem{{Name: "Ticket", Price: decimal.RequireFromString("150"), Quantity: 1}},
	}}}
	refunds := usecase.NewRefundService(&MockGateway{}, orders, repository.NewMemoryRefundLedgerRepository(), nil, zap.NewNop())
	issuer := &fakeIssuer{}
	return usecase.NewAdminService(admins, users, refunds, issuer, 8*time.Hour, zap.NewNop()), issuer, users
}

func TestAdminService_Login(t *testing.T) {
	svc, issuer, _ := newAdminService(t)

	res, err := svc.Login(context.Background(), "kari", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", res.Token)
	assert.Equal(t, time.Unix(0, 0).Add(8*time.Hour), res.ExpiresAt)
	require.Len(t, issuer.issued, 1)
	assert.Equal(t, entity.RoleAdmin, issuer.issued[0].Role)
	assert.Equal(t, "kari", issuer.issued[0].Subject)
}

func TestAdminService_LoginRejected(t *testing.T) {
	svc, issuer, _ := newAdminService(t)

	_, err := svc.Login(context.Background(), "kari", "wrong")
	assert.Equal(t, apperrors.ErrUnauthenticated, apperrors.CodeOf(err))

	_, err = svc.Login(context.Background(), "nobody", "s3cret")
	assert.Equal(t, apperrors.ErrUnauthenticated, apperrors.CodeOf(err))
	assert.Empty(t, issuer.issued)
}

func TestAdminService_Users(t *testing.T) {
	svc, _, users := newAdminService(t)
	ctx := context.Background()

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	views, err := svc.ListUserOrders(ctx, "ola@example.com")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Items[0].Remaining)

	require.NoError(t, svc.DeleteUser(ctx, "ola@example.com"))
	assert.Empty(t, users.users)

	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(svc.DeleteUser(ctx, "ola@example.com")))
	_, err = svc.ListUserOrders(ctx, "ola@example.com")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}
