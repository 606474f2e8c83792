package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrgRepository implements org.Repository using GORM
type GormOrgRepository struct {
	db *gorm.DB
}

// NewGormOrgRepository creates a new GormOrgRepository
func NewGormOrgRepository(db *gorm.DB) *GormOrgRepository {
	return &GormOrgRepository{db: db}
}

// CreateSector inserts a sector
func (r *GormOrgRepository) CreateSector(ctx context.Context, sector *org.Sector) error {
	return translateWriteError(conn(ctx, r.db).Create(models.SectorModelFromDomain(sector)).Error, "SECTOR_EXISTS")
}

// CreateZone inserts a zone
func (r *GormOrgRepository) CreateZone(ctx context.Context, zone *org.Zone) error {
	return translateWriteError(conn(ctx, r.db).Create(models.ZoneModelFromDomain(zone)).Error, "ZONE_EXISTS")
}

// CreateGroup inserts a group
func (r *GormOrgRepository) CreateGroup(ctx context.Context, group *org.Group) error {
	return translateWriteError(conn(ctx, r.db).Create(models.GroupModelFromDomain(group)).Error, "GROUP_EXISTS")
}

// FindSector finds a sector by ID
func (r *GormOrgRepository) FindSector(ctx context.Context, id uuid.UUID) (*org.Sector, error) {
	var m models.SectorModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindZone finds a zone by ID
func (r *GormOrgRepository) FindZone(ctx context.Context, id uuid.UUID) (*org.Zone, error) {
	var m models.ZoneModel
	if err := conn(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// ZoneNameExists checks name uniqueness inside a sector
func (r *GormOrgRepository) ZoneNameExists(ctx context.Context, sectorID uuid.UUID, name string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ZoneModel{}).
		Where("sector_id = ? AND LOWER(name) = ?", sectorID, strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}

// GroupNameExists checks name uniqueness inside a zone
func (r *GormOrgRepository) GroupNameExists(ctx context.Context, zoneID uuid.UUID, name string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.GroupModel{}).
		Where("zone_id = ? AND LOWER(name) = ?", zoneID, strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}

// LoadHierarchy reads all three levels into a snapshot
func (r *GormOrgRepository) LoadHierarchy(ctx context.Context) (*org.Hierarchy, error) {
	db := conn(ctx, r.db)

	var sectorModels []models.SectorModel
	if err := db.Order("name").Find(&sectorModels).Error; err != nil {
		return nil, err
	}
	var zoneModels []models.ZoneModel
	if err := db.Order("name").Find(&zoneModels).Error; err != nil {
		return nil, err
	}
	var groupModels []models.GroupModel
	if err := db.Order("name").Find(&groupModels).Error; err != nil {
		return nil, err
	}

	sectors := make([]org.Sector, len(sectorModels))
	for i := range sectorModels {
		sectors[i] = *sectorModels[i].ToDomain()
	}
	zones := make([]org.Zone, len(zoneModels))
	for i := range zoneModels {
		zones[i] = *zoneModels[i].ToDomain()
	}
	groups := make([]org.Group, len(groupModels))
	for i := range groupModels {
		groups[i] = *groupModels[i].ToDomain()
	}
	return org.NewHierarchy(sectors, zones, groups), nil
}
