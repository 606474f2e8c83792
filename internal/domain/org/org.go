package org

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

const maxNameLength = 100

// Sector is the root level of the organization
type Sector struct {
	shared.BaseEntity
	Name string
}

// Zone belongs to exactly one Sector. Names are unique within a sector.
type Zone struct {
	shared.BaseEntity
	SectorID uuid.UUID
	Name     string
}

// Group belongs to exactly one Zone. Names are unique within a zone.
type Group struct {
	shared.BaseEntity
	ZoneID uuid.UUID
	Name   string
}

// NewSector creates a sector
func NewSector(name string, now time.Time) (*Sector, error) {
	name, err := normalizeName("name", name)
	if err != nil {
		return nil, err
	}
	return &Sector{BaseEntity: shared.NewBaseEntity(now), Name: name}, nil
}

// NewZone creates a zone under sectorID
func NewZone(sectorID uuid.UUID, name string, now time.Time) (*Zone, error) {
	if sectorID == uuid.Nil {
		return nil, shared.NewValidationError("sector_id", "Zone must belong to a sector")
	}
	name, err := normalizeName("name", name)
	if err != nil {
		return nil, err
	}
	return &Zone{BaseEntity: shared.NewBaseEntity(now), SectorID: sectorID, Name: name}, nil
}

// NewGroup creates a group under zoneID
func NewGroup(zoneID uuid.UUID, name string, now time.Time) (*Group, error) {
	if zoneID == uuid.Nil {
		return nil, shared.NewValidationError("zone_id", "Group must belong to a zone")
	}
	name, err := normalizeName("name", name)
	if err != nil {
		return nil, err
	}
	return &Group{BaseEntity: shared.NewBaseEntity(now), ZoneID: zoneID, Name: name}, nil
}

func normalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewValidationError(field, "Name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", shared.NewValidationError(field, "Name cannot exceed 100 characters")
	}
	return name, nil
}
