package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActorRepository implements identity.ActorRepository using GORM
type GormActorRepository struct {
	db *gorm.DB
}

// NewGormActorRepository creates a new GormActorRepository
func NewGormActorRepository(db *gorm.DB) *GormActorRepository {
	return &GormActorRepository{db: db}
}

// Create inserts a new actor
func (r *GormActorRepository) Create(ctx context.Context, actor *identity.Actor) error {
	err := conn(ctx, r.db).Create(models.ActorModelFromDomain(actor)).Error
	return translateWriteError(err, "ACTOR_EXISTS")
}

// Update saves an actor using its version for optimistic locking
func (r *GormActorRepository) Update(ctx context.Context, actor *identity.Actor) error {
	model := models.ActorModelFromDomain(actor)
	result := conn(ctx, r.db).
		Model(&models.ActorModel{}).
		Where("id = ? AND version = ?", actor.ID, actor.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateWriteError(result.Error, "ACTOR_EXISTS")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds an actor by ID
func (r *GormActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	var model models.ActorModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUsername finds an actor by username, case-insensitively
func (r *GormActorRepository) FindByUsername(ctx context.Context, username string) (*identity.Actor, error) {
	var model models.ActorModel
	if err := conn(ctx, r.db).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the given actors; unknown ids are skipped
func (r *GormActorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Actor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ActorModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	actors := make([]*identity.Actor, len(rows))
	for i := range rows {
		actors[i] = rows[i].ToDomain()
	}
	return actors, nil
}

// ExistsByUsername checks whether a username is taken
func (r *GormActorRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ActorModel{}).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	return count > 0, err
}

// ExistsByRUT checks whether a normalized RUT is taken
func (r *GormActorRepository) ExistsByRUT(ctx context.Context, rut string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ActorModel{}).Where("rut = ?", rut).Count(&count).Error
	return count > 0, err
}
