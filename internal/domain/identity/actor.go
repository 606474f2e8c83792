package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// Actor is any user of the system. Zone and sector are never stored here;
// they are always derived from GroupID through the org hierarchy.
type Actor struct {
	shared.BaseAggregateRoot
	Username         string
	FirstName        string
	LastName         string
	Email            string
	RUT              string
	PasswordHash     string
	Role             Role
	GroupID          *uuid.UUID
	IsSuperuser      bool
	IsActive         bool
	IsNationalLeader bool
	IsNationalVice   bool
	NationalDivision *string
}

// NewActor creates an active actor with the given role
func NewActor(username, firstName, lastName, email, rut string, role Role, now time.Time) (*Actor, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewValidationError("username", "Username cannot be empty")
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, shared.NewValidationError("first_name", "First name cannot be empty")
	}
	if lastName == "" {
		return nil, shared.NewValidationError("last_name", "Last name cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, shared.NewValidationError("email", "Invalid email address")
		}
	}
	normalizedRUT, err := ParseRUT(rut)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("role", "Unknown role")
	}

	return &Actor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Username:          username,
		FirstName:         firstName,
		LastName:          lastName,
		Email:             strings.ToLower(email),
		RUT:               normalizedRUT,
		Role:              role,
		IsActive:          true,
	}, nil
}

// FullName is "First Last", falling back to the username
func (a *Actor) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// DisplayName is the name shown in ledger notes: full name and @username
func (a *Actor) DisplayName() string {
	return a.FullName() + " (@" + a.Username + ")"
}

// IsUnrestricted reports organization-wide authority (board role or superuser)
func (a *Actor) IsUnrestricted() bool {
	return a.IsSuperuser || a.Role.IsBoard()
}

// CanActForOthers reports whether the actor may report or review on
// behalf of other members.
func (a *Actor) CanActForOthers() bool {
	return a.IsSuperuser || a.Role.IsResponsibleOrAbove()
}

// CanViewActiveMembers is granted from group responsible upward
func (a *Actor) CanViewActiveMembers() bool {
	return a.CanActForOthers()
}

// Leadership is an actor's national leadership. Leader and vice are
// mutually exclusive.
type Leadership struct {
	Leader   bool
	Vice     bool
	Division string
}

func (l Leadership) division() (*string, error) {
	if l.Leader && l.Vice {
		return nil, shared.NewValidationError("national_division", "An actor cannot be both national leader and vice")
	}
	if !l.Leader && !l.Vice {
		return nil, nil
	}
	division := strings.TrimSpace(l.Division)
	if division == "" {
		return nil, shared.NewValidationError("national_division", "A national division is required for national leadership")
	}
	return &division, nil
}

// SetNationalLeadership sets the leadership flags. The division is kept
// only while one of them is set.
func (a *Actor) SetNationalLeadership(l Leadership) error {
	division, err := l.division()
	if err != nil {
		return err
	}
	a.IsNationalLeader = l.Leader
	a.IsNationalVice = l.Vice
	a.NationalDivision = division
	return nil
}

// NormalizeNationalDivision applies the leadership invariant to loaded data,
// dropping a stray division when no leadership flag is set.
func (a *Actor) NormalizeNationalDivision() {
	if !a.IsNationalLeader && !a.IsNationalVice {
		a.NationalDivision = nil
	}
}

// ActorChanges is a partial update. Nil fields are left as they are.
type ActorChanges struct {
	GroupID    *uuid.UUID
	ClearGroup bool
	Role       *Role
	Active     *bool
	Leadership *Leadership
}

// Apply validates every change before touching the actor, then records
// them as a single new version.
func (a *Actor) Apply(c ActorChanges, now time.Time) error {
	if c.GroupID != nil && c.ClearGroup {
		return shared.NewValidationError("group_id", "A group cannot be assigned and cleared at once")
	}
	if c.Role != nil && !c.Role.IsValid() {
		return shared.NewValidationError("role", "Unknown role")
	}
	if c.Leadership != nil {
		if _, err := c.Leadership.division(); err != nil {
			return err
		}
	}

	switch {
	case c.ClearGroup:
		a.GroupID = nil
	case c.GroupID != nil:
		id := *c.GroupID
		a.GroupID = &id
	}
	if c.Role != nil {
		a.Role = *c.Role
	}
	if c.Active != nil {
		a.IsActive = *c.Active
	}
	if c.Leadership != nil {
		_ = a.SetNationalLeadership(*c.Leadership)
	}
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

// SetPassword replaces the password hash
func (a *Actor) SetPassword(password string, now time.Time) error {
	if len(password) < minPasswordLength {
		return shared.NewValidationError("password", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	a.Touch(now)
	a.IncrementVersion()
	return nil
}

// VerifyPassword reports whether password matches the stored hash. Actors
// without a password can never log in.
func (a *Actor) VerifyPassword(password string) bool {
	if a.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// CanLogin reports whether the account may authenticate
func (a *Actor) CanLogin() bool {
	return a.IsActive
}
