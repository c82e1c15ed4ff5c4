package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/model"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
)

type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) repository.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) ExistsByReference(ctx context.Context, userID, orderReference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.StorefrontOrder{}).
		Where("user_id = ? AND order_reference = ?", userID, orderReference).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return count > 0, nil
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	row := &model.StorefrontOrder{
		UserID:         order.UserID,
		OrderReference: order.OrderReference,
		BuyerName:      order.BuyerName,
		PhoneNumber:    order.PhoneNumber,
		Email:          order.Email,
		DatePurchased:  order.DatePurchased,
		Items:          datatypes.NewJSONType(order.Items),
		TotalPrice:     order.TotalPrice,
		PSPReference:   order.PSPReference,
		VippsAggregate: datatypes.NewJSONType(order.VippsAggregate),
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error("Failed to create order",
			zap.String("user_id", order.UserID),
			zap.String("order_reference", order.OrderReference),
			zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = row.ID
	return nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	var rows []model.StorefrontOrder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_purchased DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*entity.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, toOrderEntity(&rows[i]))
	}
	return orders, nil
}

func (r *orderRepository) GetByReference(ctx context.Context, userID, orderReference string) (*entity.Order, error) {
	var row model.StorefrontOrder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND order_reference = ?", userID, orderReference).
		Order("id ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toOrderEntity(&row), nil
}

func toOrderEntity(m *model.StorefrontOrder) *entity.Order {
	return &entity.Order{
		ID:             m.ID,
		UserID:         m.UserID,
		OrderReference: m.OrderReference,
		BuyerName:      m.BuyerName,
		PhoneNumber:    m.PhoneNumber,
		Email:          m.Email,
		DatePurchased:  m.DatePurchased,
		Items:          m.Items.Data(),
		TotalPrice:     m.TotalPrice,
		PSPReference:   m.PSPReference,
		VippsAggregate: m.VippsAggregate.Data(),
	}
}
