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

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment status repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Upsert(ctx context.Context, payment *entity.Payment) error {
	row := toPaymentModel(payment)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reference"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"psp_reference", "amount_value", "currency", "status", "description", "phone_number", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		r.logger.Error("Failed to upsert payment",
			zap.String("reference", payment.Reference),
			zap.Error(err))
		return fmt.Errorf("failed to upsert payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, reference, pspReference string, status entity.PaymentStatus) (bool, error) {
	now := time.Now()

	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": now,
	}
	if pspReference != "" {
		updates["psp_reference"] = pspReference
	}

	// Only rows whose status differs are touched, so a repeated status is a no-op.
	result := r.db.WithContext(ctx).
		Model(&model.VippsPayment{}).
		Where("reference = ? AND status <> ?", reference, string(status)).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Either the status is already current or the reference is unknown.
	row := &model.VippsPayment{
		Reference:    reference,
		PSPReference: pspReference,
		Currency:     "NOK",
		Status:       string(status),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	result = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert payment status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*entity.Payment, error) {
	var row model.VippsPayment

	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toPaymentEntity(&row), nil
}

func (r *paymentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.VippsPayment{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []model.VippsPayment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*entity.Payment, 0, len(rows))
	for i := range rows {
		payments = append(payments, toPaymentEntity(&rows[i]))
	}
	return payments, total, nil
}

func toPaymentModel(p *entity.Payment) *model.VippsPayment {
	now := time.Now()
	created := p.CreatedAt
	if created.IsZero() {
		created = now
	}
	return &model.VippsPayment{
		Reference:    p.Reference,
		PSPReference: p.PSPReference,
		AmountValue:  p.AmountValue,
		Currency:     p.Currency,
		Status:       string(p.Status),
		Description:  p.Description,
		PhoneNumber:  p.PhoneNumber,
		CreatedAt:    created,
		UpdatedAt:    now,
	}
}

func toPaymentEntity(m *model.VippsPayment) *entity.Payment {
	return &entity.Payment{
		Reference:    m.Reference,
		PSPReference: m.PSPReference,
		AmountValue:  m.AmountValue,
		Currency:     m.Currency,
		Status:       entity.PaymentStatus(m.Status),
		Description:  m.Description,
		PhoneNumber:  m.PhoneNumber,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
