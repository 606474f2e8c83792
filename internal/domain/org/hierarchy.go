package org

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Hierarchy is a read-only snapshot of the Sector → Zone → Group graph.
// Lookups never fail: a missing node or a broken parent chain resolves to
// "absent", which is a normal state for unassigned members.
type Hierarchy struct {
	sectors map[uuid.UUID]Sector
	zones   map[uuid.UUID]Zone
	groups  map[uuid.UUID]Group
}

// NewHierarchy indexes the given nodes. Nodes are copied.
func NewHierarchy(sectors []Sector, zones []Zone, groups []Group) *Hierarchy {
	h := &Hierarchy{
		sectors: make(map[uuid.UUID]Sector, len(sectors)),
		zones:   make(map[uuid.UUID]Zone, len(zones)),
		groups:  make(map[uuid.UUID]Group, len(groups)),
	}
	for _, s := range sectors {
		h.sectors[s.ID] = s
	}
	for _, z := range zones {
		h.zones[z.ID] = z
	}
	for _, g := range groups {
		h.groups[g.ID] = g
	}
	return h
}

// Group returns the group with the given id
func (h *Hierarchy) Group(id uuid.UUID) (Group, bool) {
	g, ok := h.groups[id]
	return g, ok
}

// Zone returns the zone with the given id
func (h *Hierarchy) Zone(id uuid.UUID) (Zone, bool) {
	z, ok := h.zones[id]
	return z, ok
}

// Sector returns the sector with the given id
func (h *Hierarchy) Sector(id uuid.UUID) (Sector, bool) {
	s, ok := h.sectors[id]
	return s, ok
}

// ZoneOfGroup resolves the zone a group belongs to. A nil group id resolves
// to absent.
func (h *Hierarchy) ZoneOfGroup(groupID *uuid.UUID) (Zone, bool) {
	if groupID == nil {
		return Zone{}, false
	}
	g, ok := h.groups[*groupID]
	if !ok {
		return Zone{}, false
	}
	return h.Zone(g.ZoneID)
}

// SectorOfGroup resolves the sector through the group's zone.
func (h *Hierarchy) SectorOfGroup(groupID *uuid.UUID) (Sector, bool) {
	z, ok := h.ZoneOfGroup(groupID)
	if !ok {
		return Sector{}, false
	}
	return h.Sector(z.SectorID)
}

// ZoneUnderSector reports whether zoneID is a child of sectorID.
func (h *Hierarchy) ZoneUnderSector(zoneID, sectorID uuid.UUID) bool {
	z, ok := h.zones[zoneID]
	return ok && z.SectorID == sectorID
}

// GroupUnderZone reports whether groupID is a child of zoneID.
func (h *Hierarchy) GroupUnderZone(groupID, zoneID uuid.UUID) bool {
	g, ok := h.groups[groupID]
	return ok && g.ZoneID == zoneID
}

// GroupUnderSector reports whether groupID sits anywhere below sectorID.
func (h *Hierarchy) GroupUnderSector(groupID, sectorID uuid.UUID) bool {
	g, ok := h.groups[groupID]
	return ok && h.ZoneUnderSector(g.ZoneID, sectorID)
}

// Sectors lists every sector ordered by name
func (h *Hierarchy) Sectors() []Sector {
	out := make([]Sector, 0, len(h.sectors))
	for _, s := range h.sectors {
		out = append(out, s)
	}
	sortByName(out, func(s Sector) (string, uuid.UUID) { return s.Name, s.ID })
	return out
}

// ZonesOf lists the zones of sectorID ordered by name
func (h *Hierarchy) ZonesOf(sectorID uuid.UUID) []Zone {
	var out []Zone
	for _, z := range h.zones {
		if z.SectorID == sectorID {
			out = append(out, z)
		}
	}
	sortByName(out, func(z Zone) (string, uuid.UUID) { return z.Name, z.ID })
	return out
}

// GroupsOf lists the groups of zoneID ordered by name
func (h *Hierarchy) GroupsOf(zoneID uuid.UUID) []Group {
	var out []Group
	for _, g := range h.groups {
		if g.ZoneID == zoneID {
			out = append(out, g)
		}
	}
	sortByName(out, func(g Group) (string, uuid.UUID) { return g.Name, g.ID })
	return out
}

func sortByName[T any](nodes []T, key func(T) (string, uuid.UUID)) {
	slices.SortFunc(nodes, func(a, b T) int {
		an, aid := key(a)
		bn, bid := key(b)
		if c := strings.Compare(strings.ToLower(an), strings.ToLower(bn)); c != 0 {
			return c
		}
		return strings.Compare(aid.String(), bid.String())
	})
}
