package org

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the organization tree
type Repository interface {
	CreateSector(ctx context.Context, sector *Sector) error
	CreateZone(ctx context.Context, zone *Zone) error
	CreateGroup(ctx context.Context, group *Group) error

	FindSector(ctx context.Context, id uuid.UUID) (*Sector, error)
	FindZone(ctx context.Context, id uuid.UUID) (*Zone, error)

	// ZoneNameExists checks name uniqueness inside a sector (case-insensitive)
	ZoneNameExists(ctx context.Context, sectorID uuid.UUID, name string) (bool, error)
	// GroupNameExists checks name uniqueness inside a zone (case-insensitive)
	GroupNameExists(ctx context.Context, zoneID uuid.UUID, name string) (bool, error)

	// LoadHierarchy reads the whole tree into a snapshot
	LoadHierarchy(ctx context.Context) (*Hierarchy, error)
}
