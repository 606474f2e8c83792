package household

import (
	"slices"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CanonicalOrder sorts actors with the primary member first and the rest by
// first name, last name and id, using Spanish collation so accented names
// sort where a reader expects them. The input slice is not modified.
func CanonicalOrder(actors []*identity.Actor, primaryID uuid.UUID) []*identity.Actor {
	out := slices.Clone(actors)
	// A Collator is not safe for concurrent use, so each call builds its own.
	c := collate.New(language.Spanish, collate.IgnoreCase)

	slices.SortStableFunc(out, func(a, b *identity.Actor) int {
		ap, bp := a.ID == primaryID, b.ID == primaryID
		switch {
		case ap && !bp:
			return -1
		case bp && !ap:
			return 1
		}
		if r := c.CompareString(a.FirstName, b.FirstName); r != 0 {
			return r
		}
		if r := c.CompareString(a.LastName, b.LastName); r != 0 {
			return r
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out
}
