package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/household"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const codeAlreadyInHousehold = "ALREADY_IN_HOUSEHOLD"

// GormHouseholdRepository implements household.Repository using GORM.
// Member rows are rewritten as a whole on every save.
type GormHouseholdRepository struct {
	db *gorm.DB
}

// NewGormHouseholdRepository creates a new GormHouseholdRepository
func NewGormHouseholdRepository(db *gorm.DB) *GormHouseholdRepository {
	return &GormHouseholdRepository{db: db}
}

// Create inserts the household and its members
func (r *GormHouseholdRepository) Create(ctx context.Context, h *household.Household) error {
	model := models.HouseholdModelFromDomain(h)
	return runInTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(model).Error; err != nil {
			return err
		}
		return r.insertMembers(tx, model.Members)
	})
}

// Save bumps the household version and replaces its member rows
func (r *GormHouseholdRepository) Save(ctx context.Context, h *household.Household) error {
	model := models.HouseholdModelFromDomain(h)
	return runInTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.HouseholdModel{}).
			Where("id = ? AND version = ?", h.ID, h.Version-1).
			Updates(map[string]any{
				"name":       model.Name,
				"version":    model.Version,
				"updated_at": model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		if err := tx.Where("household_id = ?", h.ID).Delete(&models.HouseholdMemberModel{}).Error; err != nil {
			return err
		}
		return r.insertMembers(tx, model.Members)
	})
}

// Delete removes the household and its member rows
func (r *GormHouseholdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return runInTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("household_id = ?", id).Delete(&models.HouseholdMemberModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.HouseholdModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a household with its members
func (r *GormHouseholdRepository) FindByID(ctx context.Context, id uuid.UUID) (*household.Household, error) {
	var model models.HouseholdModel
	if err := conn(ctx, r.db).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMember finds the household containing actorID
func (r *GormHouseholdRepository) FindByMember(ctx context.Context, actorID uuid.UUID) (*household.Household, error) {
	var link models.HouseholdMemberModel
	if err := conn(ctx, r.db).First(&link, "actor_id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, link.HouseholdID)
}

func (r *GormHouseholdRepository) insertMembers(tx *gorm.DB, members []models.HouseholdMemberModel) error {
	if len(members) == 0 {
		return nil
	}
	if err := tx.Create(&members).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewConflictError(codeAlreadyInHousehold, "Actor already belongs to a household")
		}
		return err
	}
	return nil
}
