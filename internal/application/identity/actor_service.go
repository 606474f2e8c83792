package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SubjectAuthorizer decides whether an actor may see another member
type SubjectAuthorizer interface {
	AuthorizeSubject(ctx context.Context, actor *identity.Actor, subjectID uuid.UUID) (*identity.Actor, scope.Predicate, error)
}

// ActorService registers and maintains actors
type ActorService struct {
	actors identity.ActorRepository
	orgs   org.Repository
	access SubjectAuthorizer
	clock  shared.Clock
}

// NewActorService creates a new ActorService
func NewActorService(actors identity.ActorRepository, orgs org.Repository, access SubjectAuthorizer, clock shared.Clock) *ActorService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &ActorService{actors: actors, orgs: orgs, access: access, clock: clock}
}

// Create registers an actor on behalf of the board
func (s *ActorService) Create(ctx context.Context, operator *identity.Actor, input CreateActorInput) (*ActorResponse, error) {
	if !operator.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can register actors")
	}
	if input.IsSuperuser && !operator.IsSuperuser {
		return nil, shared.NewPermissionError("Only superusers can create superusers")
	}
	return s.create(ctx, input)
}

// CreateInitial registers a superuser administrator without an operator.
// Used by the seed command.
func (s *ActorService) CreateInitial(ctx context.Context, input CreateActorInput) (*ActorResponse, error) {
	input.Role = string(identity.RoleAdmin)
	input.IsSuperuser = true
	return s.create(ctx, input)
}

// Get returns the viewer itself or a member inside the viewer's scope
func (s *ActorService) Get(ctx context.Context, viewer *identity.Actor, id uuid.UUID) (*ActorResponse, error) {
	a, _, err := s.access.AuthorizeSubject(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	resp := ToActorResponse(a)
	return &resp, nil
}

// Update changes group, role, active flag or national leadership. Board
// only; superuser accounts are changed by superusers.
func (s *ActorService) Update(ctx context.Context, operator *identity.Actor, id uuid.UUID, input UpdateActorInput) (*ActorResponse, error) {
	if !operator.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can change actors")
	}
	actor, err := s.actors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsSuperuser && !operator.IsSuperuser {
		return nil, shared.NewPermissionError("Only superusers can change a superuser")
	}
	if input.IsActive != nil && !*input.IsActive && actor.ID == operator.ID {
		return nil, shared.NewValidationError("is_active", "You cannot deactivate your own account")
	}

	changes := identity.ActorChanges{
		ClearGroup: input.ClearGroup,
		Active:     input.IsActive,
		Leadership: input.Leadership,
	}
	if input.Role != nil {
		role, err := identity.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		changes.Role = &role
	}
	if input.GroupID != nil {
		if err := s.checkGroup(ctx, *input.GroupID); err != nil {
			return nil, err
		}
		changes.GroupID = input.GroupID
	}
	if err := actor.Apply(changes, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.actors.Update(ctx, actor); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("actor updated",
		zap.String("actor_id", actor.ID.String()),
		zap.String("operator_id", operator.ID.String()),
		zap.String("role", string(actor.Role)),
		zap.Bool("active", actor.IsActive),
	)
	resp := ToActorResponse(actor)
	return &resp, nil
}

func (s *ActorService) checkGroup(ctx context.Context, groupID uuid.UUID) error {
	h, err := s.orgs.LoadHierarchy(ctx)
	if err != nil {
		return err
	}
	if _, ok := h.Group(groupID); !ok {
		return shared.NewValidationError("group_id", "Group does not exist")
	}
	return nil
}

func (s *ActorService) create(ctx context.Context, input CreateActorInput) (*ActorResponse, error) {
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	actor, err := identity.NewActor(input.Username, input.FirstName, input.LastName, input.Email, input.RUT, role, now)
	if err != nil {
		return nil, err
	}
	actor.IsSuperuser = input.IsSuperuser
	if err := actor.SetNationalLeadership(input.Leadership); err != nil {
		return nil, err
	}

	taken, err := s.actors.ExistsByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewConflictError("USERNAME_TAKEN", "Username is already in use")
	}
	taken, err = s.actors.ExistsByRUT(ctx, actor.RUT)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewConflictError("RUT_TAKEN", "RUT is already registered")
	}

	if input.GroupID != nil {
		if err := s.checkGroup(ctx, *input.GroupID); err != nil {
			return nil, err
		}
		actor.GroupID = input.GroupID
	}
	if input.Password != "" {
		if err := actor.SetPassword(input.Password, now); err != nil {
			return nil, err
		}
	}

	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("actor registered",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(actor.Role)),
	)
	resp := ToActorResponse(actor)
	return &resp, nil
}
