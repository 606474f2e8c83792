package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/fortuna"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements fortuna.PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase by ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*fortuna.Purchase, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByMember finds the purchase owned by memberID
func (r *GormPurchaseRepository) FindByMember(ctx context.Context, memberID uuid.UUID) (*fortuna.Purchase, error) {
	return r.findOne(ctx, "member_id = ?", memberID)
}

func (r *GormPurchaseRepository) findOne(ctx context.Context, cond string, arg any) (*fortuna.Purchase, error) {
	var model models.FortunaPurchaseModel
	if err := conn(ctx, r.db).First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a purchase. A second purchase for the same member is a conflict.
func (r *GormPurchaseRepository) Create(ctx context.Context, p *fortuna.Purchase) error {
	err := conn(ctx, r.db).Create(models.FortunaPurchaseModelFromDomain(p)).Error
	return translateWriteError(err, "PURCHASE_EXISTS")
}

// Save overwrites a resubmitted purchase, checking the previous version
func (r *GormPurchaseRepository) Save(ctx context.Context, p *fortuna.Purchase) error {
	m := models.FortunaPurchaseModelFromDomain(p)
	result := conn(ctx, r.db).
		Model(&models.FortunaPurchaseModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(map[string]any{
			"plan":           m.Plan,
			"amount":         m.Amount,
			"deposit_date":   m.DepositDate,
			"receipt_ref":    m.ReceiptRef,
			"start_date":     m.StartDate,
			"end_date":       m.EndDate,
			"note":           m.Note,
			"status":         m.Status,
			"reviewed_by_id": m.ReviewedByID,
			"reviewed_at":    m.ReviewedAt,
			"version":        m.Version,
			"updated_at":     m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveDecision writes the decision only if the stored row is still pending
// at the version the reviewer loaded
func (r *GormPurchaseRepository) SaveDecision(ctx context.Context, p *fortuna.Purchase) (bool, error) {
	result := conn(ctx, r.db).
		Model(&models.FortunaPurchaseModel{}).
		Where("id = ? AND status = ? AND version = ?", p.ID, fortuna.StatusPending, p.Version-1).
		Updates(map[string]any{
			"status":         p.Status,
			"note":           p.Note,
			"reviewed_by_id": p.ReviewedByID,
			"reviewed_at":    p.ReviewedAt,
			"version":        p.Version,
			"updated_at":     p.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GormIssueRepository implements fortuna.IssueRepository using GORM
type GormIssueRepository struct {
	db *gorm.DB
}

// NewGormIssueRepository creates a new GormIssueRepository
func NewGormIssueRepository(db *gorm.DB) *GormIssueRepository {
	return &GormIssueRepository{db: db}
}

// Create inserts an issue
func (r *GormIssueRepository) Create(ctx context.Context, issue *fortuna.Issue) error {
	return conn(ctx, r.db).Create(models.FortunaIssueModelFromDomain(issue)).Error
}

// FindByID finds an issue by ID
func (r *GormIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*fortuna.Issue, error) {
	var model models.FortunaIssueModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
