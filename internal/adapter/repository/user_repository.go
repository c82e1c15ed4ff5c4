package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/model"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
)

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a new storefront user repository
func NewUserRepository(db *gorm.DB, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) Ensure(ctx context.Context, user *entity.User) error {
	now := time.Now()
	row := &model.StorefrontUser{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*entity.User, error) {
	var row userWithCount
	err := r.withOrderCounts(ctx).
		Where("u.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toEntity(), nil
}

func (r *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	var rows []userWithCount
	err := r.withOrderCounts(ctx).
		Order("u.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*entity.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toEntity())
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.StorefrontOrder{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.StorefrontUser{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return deleted, nil
}

type userWithCount struct {
	ID         string
	Email      string
	Name       string
	CreatedAt  time.Time
	OrderCount int64
}

func (u *userWithCount) toEntity() *entity.User {
	return &entity.User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		OrderCount: u.OrderCount,
		CreatedAt:  u.CreatedAt,
	}
}

func (r *userRepository) withOrderCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("storefront_users AS u").
		Select("u.id, u.email, u.name, u.created_at, COUNT(o.id) AS order_count").
		Joins("LEFT JOIN storefront_orders AS o ON o.user_id = u.id").
		Group("u.id, u.email, u.name, u.created_at")
}

type adminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository creates a new admin account repository
func NewAdminUserRepository(db *gorm.DB) repository.AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) GetByUsername(ctx context.Context, username string) (*entity.AdminUser, error) {
	var row model.AdminUser
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &entity.AdminUser{ID: row.ID, Username: row.Username, PasswordHash: row.PasswordHash}, nil
}

func (r *adminUserRepository) Upsert(ctx context.Context, username, passwordHash string) error {
	now := time.Now()
	row := &model.AdminUser{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert admin user: %w", err)
	}
	return nil
}
