package models

import (
	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/org"
)

// SectorModel is the persistence model for org.Sector
type SectorModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (SectorModel) TableName() string {
	return "org_sectors"
}

// ToDomain converts the model to a domain Sector
func (m *SectorModel) ToDomain() *org.Sector {
	return &org.Sector{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name}
}

// SectorModelFromDomain creates a model from a domain Sector
func SectorModelFromDomain(s *org.Sector) *SectorModel {
	m := &SectorModel{Name: s.Name}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// ZoneModel is the persistence model for org.Zone
type ZoneModel struct {
	BaseModel
	SectorID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_zone_sector_name"`
	Name     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_zone_sector_name"`
}

// TableName returns the table name for GORM
func (ZoneModel) TableName() string {
	return "org_zones"
}

// ToDomain converts the model to a domain Zone
func (m *ZoneModel) ToDomain() *org.Zone {
	return &org.Zone{BaseEntity: m.BaseModel.ToDomain(), SectorID: m.SectorID, Name: m.Name}
}

// ZoneModelFromDomain creates a model from a domain Zone
func ZoneModelFromDomain(z *org.Zone) *ZoneModel {
	m := &ZoneModel{SectorID: z.SectorID, Name: z.Name}
	m.FromDomainBaseEntity(z.BaseEntity)
	return m
}

// GroupModel is the persistence model for org.Group
type GroupModel struct {
	BaseModel
	ZoneID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_group_zone_name"`
	Name   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_group_zone_name"`
}

// TableName returns the table name for GORM
func (GroupModel) TableName() string {
	return "org_groups"
}

// ToDomain converts the model to a domain Group
func (m *GroupModel) ToDomain() *org.Group {
	return &org.Group{BaseEntity: m.BaseModel.ToDomain(), ZoneID: m.ZoneID, Name: m.Name}
}

// GroupModelFromDomain creates a model from a domain Group
func GroupModelFromDomain(g *org.Group) *GroupModel {
	m := &GroupModel{ZoneID: g.ZoneID, Name: g.Name}
	m.FromDomainBaseEntity(g.BaseEntity)
	return m
}
