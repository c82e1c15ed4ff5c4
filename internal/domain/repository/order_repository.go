package repository

import (
	"context"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

type OrderRepository interface {
	ExistsByReference(ctx context.Context, userID, orderReference string) (bool, error)
	Create(ctx context.Context, order *entity.Order) error
	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
	// GetByReference returns nil when the order does not exist.
	GetByReference(ctx context.Context, userID, orderReference string) (*entity.Order, error)
}

type UserRepository interface {
	// Ensure creates the user if it does not exist yet.
	Ensure(ctx context.Context, user *entity.User) error
	Get(ctx context.Context, id string) (*entity.User, error)
	// List returns all users with their order counts.
	List(ctx context.Context) ([]*entity.User, error)
	// Delete removes the user and its orders. It reports false when the user did not exist.
	Delete(ctx context.Context, id string) (bool, error)
}

type AdminUserRepository interface {
	GetByUsername(ctx context.Context, username string) (*entity.AdminUser, error)
	Upsert(ctx context.Context, username, passwordHash string) error
}
