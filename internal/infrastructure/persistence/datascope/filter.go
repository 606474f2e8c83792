// Package datascope renders scope predicates as GORM query scopes.
//
// Every member-owned table is filtered through the actor that owns the row,
// so zone and sector membership is always derived from actors.group_id and
// the org tables, never from denormalized columns.
//
// Usage:
//
//	db.Model(&models.ContributionModel{}).
//		Scopes(datascope.Members(p, "contributions.member_id")).
//		Find(&rows)
package datascope

import (
	"github.com/sgi/backend/internal/domain/scope"
	"gorm.io/gorm"
)

const (
	groupMembers  = "SELECT id FROM actors WHERE group_id = ?"
	zoneMembers   = "SELECT id FROM actors WHERE group_id IN (SELECT id FROM org_groups WHERE zone_id = ?)"
	sectorMembers = "SELECT id FROM actors WHERE group_id IN (SELECT g.id FROM org_groups g JOIN org_zones z ON z.id = g.zone_id WHERE z.sector_id = ?)"
)

// Members restricts a query to rows whose memberColumn names an actor
// inside p. An unknown predicate kind matches nothing.
func Members(p scope.Predicate, memberColumn string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch p.Kind {
		case scope.KindUnrestricted:
			return db
		case scope.KindSelfOnly:
			return db.Where(memberColumn+" = ?", p.ID)
		case scope.KindByGroup:
			return db.Where(memberColumn+" IN ("+groupMembers+")", p.ID)
		case scope.KindByZone:
			return db.Where(memberColumn+" IN ("+zoneMembers+")", p.ID)
		case scope.KindBySector:
			return db.Where(memberColumn+" IN ("+sectorMembers+")", p.ID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// Actors restricts a query on the actors table itself
func Actors(p scope.Predicate) func(*gorm.DB) *gorm.DB {
	return Members(p, "actors.id")
}
