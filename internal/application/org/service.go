package org

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
)

// Service administers the Sector → Zone → Group tree and answers the scope
// questions every other workflow asks before touching member data.
type Service struct {
	repo   org.Repository
	actors identity.ActorRepository
	clock  shared.Clock
}

// NewService creates a new org Service
func NewService(repo org.Repository, actors identity.ActorRepository, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Service{repo: repo, actors: actors, clock: clock}
}

// NodeResponse describes a created tree node
type NodeResponse struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

// Hierarchy loads the current tree
func (s *Service) Hierarchy(ctx context.Context) (*org.Hierarchy, error) {
	return s.repo.LoadHierarchy(ctx)
}

// Scope resolves the predicate for actor together with the hierarchy it was
// computed against.
func (s *Service) Scope(ctx context.Context, actor *identity.Actor) (scope.Predicate, *org.Hierarchy, error) {
	h, err := s.repo.LoadHierarchy(ctx)
	if err != nil {
		return scope.Predicate{}, nil, err
	}
	return scope.Resolve(actor, h), h, nil
}

// AuthorizeSubject loads subjectID and checks that actor may act on it. The
// actor itself is always reachable. Anyone outside the actor's scope,
// including members that no longer exist, is a PermissionError for
// scoped actors.
func (s *Service) AuthorizeSubject(ctx context.Context, actor *identity.Actor, subjectID uuid.UUID) (*identity.Actor, scope.Predicate, error) {
	p, h, err := s.Scope(ctx, actor)
	if err != nil {
		return nil, scope.Predicate{}, err
	}
	if subjectID == actor.ID {
		return actor, p, nil
	}

	subject, err := s.actors.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if p.IsUnrestricted() {
				return nil, p, shared.ErrNotFound
			}
			return nil, p, shared.NewPermissionError("Member is outside your scope")
		}
		return nil, p, err
	}
	if !p.Allows(subject, h) {
		return nil, p, shared.NewPermissionError("Member is outside your scope")
	}
	return subject, p, nil
}

// CreateSector adds a root node. Only unrestricted actors manage the tree.
func (s *Service) CreateSector(ctx context.Context, actor *identity.Actor, name string) (*NodeResponse, error) {
	if !actor.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can manage the organization")
	}
	sector, err := org.NewSector(name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSector(ctx, sector); err != nil {
		return nil, err
	}
	return &NodeResponse{ID: sector.ID, Name: sector.Name, CreatedAt: sector.CreatedAt}, nil
}

// CreateZone adds a zone under sectorID. Zone names are unique per sector.
func (s *Service) CreateZone(ctx context.Context, actor *identity.Actor, sectorID uuid.UUID, name string) (*NodeResponse, error) {
	if !actor.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can manage the organization")
	}
	zone, err := org.NewZone(sectorID, name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindSector(ctx, sectorID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("sector_id", "Sector does not exist")
		}
		return nil, err
	}
	exists, err := s.repo.ZoneNameExists(ctx, sectorID, zone.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("ZONE_NAME_TAKEN", "A zone with this name already exists in the sector")
	}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, err
	}
	return &NodeResponse{ID: zone.ID, ParentID: &zone.SectorID, Name: zone.Name, CreatedAt: zone.CreatedAt}, nil
}

// CreateGroup adds a group under zoneID. Group names are unique per zone.
func (s *Service) CreateGroup(ctx context.Context, actor *identity.Actor, zoneID uuid.UUID, name string) (*NodeResponse, error) {
	if !actor.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can manage the organization")
	}
	group, err := org.NewGroup(zoneID, name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindZone(ctx, zoneID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("zone_id", "Zone does not exist")
		}
		return nil, err
	}
	exists, err := s.repo.GroupNameExists(ctx, zoneID, group.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("GROUP_NAME_TAKEN", "A group with this name already exists in the zone")
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	return &NodeResponse{ID: group.ID, ParentID: &group.ZoneID, Name: group.Name, CreatedAt: group.CreatedAt}, nil
}

// GroupNode is a group in the tree listing
type GroupNode struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ZoneNode is a zone and its groups
type ZoneNode struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Groups []GroupNode `json:"groups"`
}

// SectorNode is a sector and its zones
type SectorNode struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Zones []ZoneNode `json:"zones"`
}

// Tree lists the whole organization, every level ordered by name.
// Groups whose zone is missing are not reachable and are left out.
func (s *Service) Tree(ctx context.Context) ([]SectorNode, error) {
	h, err := s.repo.LoadHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	sectors := h.Sectors()
	out := make([]SectorNode, 0, len(sectors))
	for _, sector := range sectors {
		node := SectorNode{ID: sector.ID, Name: sector.Name, Zones: []ZoneNode{}}
		for _, zone := range h.ZonesOf(sector.ID) {
			zn := ZoneNode{ID: zone.ID, Name: zone.Name, Groups: []GroupNode{}}
			for _, g := range h.GroupsOf(zone.ID) {
				zn.Groups = append(zn.Groups, GroupNode{ID: g.ID, Name: g.Name})
			}
			node.Zones = append(node.Zones, zn)
		}
		out = append(out, node)
	}
	return out, nil
}
