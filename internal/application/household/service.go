package household

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/household"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ScopeAuthorizer answers whether an actor may act on another member
type ScopeAuthorizer interface {
	Scope(ctx context.Context, actor *identity.Actor) (scope.Predicate, *org.Hierarchy, error)
	AuthorizeSubject(ctx context.Context, actor *identity.Actor, subjectID uuid.UUID) (*identity.Actor, scope.Predicate, error)
}

// Service manages households and answers the canonical member list used to
// split contributions.
type Service struct {
	repo           household.Repository
	actors         identity.ActorRepository
	access         ScopeAuthorizer
	tx             shared.TxManager
	clock          shared.Clock
	eventPublisher shared.EventPublisher
}

// NewService creates a new household Service
func NewService(
	repo household.Repository,
	actors identity.ActorRepository,
	access ScopeAuthorizer,
	tx shared.TxManager,
	clock shared.Clock,
) *Service {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Service{
		repo:   repo,
		actors: actors,
		access: access,
		tx:     tx,
		clock:  clock,
	}
}

// SetEventPublisher sets the publisher for membership events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// MemberResponse is one household member in canonical order
type MemberResponse struct {
	ActorID      uuid.UUID              `json:"actor_id"`
	FullName     string                 `json:"full_name"`
	Relationship household.Relationship `json:"relationship,omitempty"`
	IsPrimary    bool                   `json:"is_primary"`
}

// HouseholdResponse describes a household and its members
type HouseholdResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name,omitempty"`
	Members   []MemberResponse `json:"members"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Create founds a household with actor as its primary member
func (s *Service) Create(ctx context.Context, actor *identity.Actor, name string) (*HouseholdResponse, error) {
	if err := s.ensureUnassigned(ctx, actor.ID); err != nil {
		return nil, err
	}
	h, err := household.New(actor.ID, name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	s.publish(ctx, h)
	return s.toResponse(ctx, h)
}

// AddMember puts memberID into the household. The operator must belong to
// the household or have the new member inside their scope.
func (s *Service) AddMember(ctx context.Context, operator *identity.Actor, householdID, memberID uuid.UUID, rel household.Relationship) (*HouseholdResponse, error) {
	h, err := s.repo.FindByID(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, operator, h, memberID); err != nil {
		return nil, err
	}
	if _, err := s.actors.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("actor_id", "Member does not exist")
		}
		return nil, err
	}
	if err := s.ensureUnassigned(ctx, memberID); err != nil {
		return nil, err
	}

	if err := h.AddMember(memberID, rel, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, err
	}
	s.publish(ctx, h)
	return s.toResponse(ctx, h)
}

// RemoveMember drops memberID. Removing the last member deletes the
// household; the primary member cannot leave while others remain.
func (s *Service) RemoveMember(ctx context.Context, operator *identity.Actor, householdID, memberID uuid.UUID) (*HouseholdResponse, error) {
	h, err := s.repo.FindByID(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, operator, h, memberID); err != nil {
		return nil, err
	}
	if err := h.RemoveMember(memberID, s.clock.Now()); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if h.IsEmpty() {
			return s.repo.Delete(ctx, h.ID)
		}
		return s.repo.Save(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, h)

	if h.IsEmpty() {
		logger.L(ctx).Info("household dissolved", zap.String("household_id", h.ID.String()))
		return nil, nil
	}
	return s.toResponse(ctx, h)
}

// MembersOf returns the actor's household in canonical order: primary
// first, then by first name, last name and id. An actor without a household
// is its own single member.
func (s *Service) MembersOf(ctx context.Context, actor *identity.Actor) ([]*identity.Actor, error) {
	h, err := s.repo.FindByMember(ctx, actor.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return []*identity.Actor{actor}, nil
	}
	if err != nil {
		return nil, err
	}
	members, err := s.actors.FindByIDs(ctx, h.MemberIDs())
	if err != nil {
		return nil, err
	}
	return household.CanonicalOrder(members, h.PrimaryID()), nil
}

// Get returns the household of actorID, visible to viewers that may act on
// that member.
func (s *Service) Get(ctx context.Context, viewer *identity.Actor, actorID uuid.UUID) (*HouseholdResponse, error) {
	if _, _, err := s.access.AuthorizeSubject(ctx, viewer, actorID); err != nil {
		return nil, err
	}
	h, err := s.repo.FindByMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, h)
}

func (s *Service) authorize(ctx context.Context, operator *identity.Actor, h *household.Household, memberID uuid.UUID) error {
	if h.HasMember(operator.ID) {
		return nil
	}
	if !operator.CanActForOthers() {
		return shared.NewPermissionError("Only household members can change the household")
	}
	_, _, err := s.access.AuthorizeSubject(ctx, operator, memberID)
	return err
}

func (s *Service) ensureUnassigned(ctx context.Context, actorID uuid.UUID) error {
	_, err := s.repo.FindByMember(ctx, actorID)
	switch {
	case err == nil:
		return shared.NewConflictError("ALREADY_IN_HOUSEHOLD", "Member already belongs to a household")
	case errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) publish(ctx context.Context, h *household.Household) {
	events := h.GetDomainEvents()
	h.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish household events", zap.Error(err))
	}
}

func (s *Service) toResponse(ctx context.Context, h *household.Household) (*HouseholdResponse, error) {
	actors, err := s.actors.FindByIDs(ctx, h.MemberIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]household.Member, len(h.Members))
	for _, m := range h.Members {
		byID[m.ActorID] = m
	}

	ordered := household.CanonicalOrder(actors, h.PrimaryID())
	members := make([]MemberResponse, 0, len(ordered))
	for _, a := range ordered {
		m := byID[a.ID]
		members = append(members, MemberResponse{
			ActorID:      a.ID,
			FullName:     a.FullName(),
			Relationship: m.Relationship,
			IsPrimary:    m.IsPrimary,
		})
	}
	return &HouseholdResponse{ID: h.ID, Name: h.Name, Members: members, UpdatedAt: h.UpdatedAt}, nil
}
