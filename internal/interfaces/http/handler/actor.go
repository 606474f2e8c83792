package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgi/backend/internal/application/identity"
	domainidentity "github.com/sgi/backend/internal/domain/identity"
)

// CreateActorRequest registers a member or leader. National leadership
// is optional.
type CreateActorRequest struct {
	Username           string             `json:"username" binding:"required,max=150"`
	FirstName          string             `json:"first_name" binding:"required,max=150"`
	LastName           string             `json:"last_name" binding:"required,max=150"`
	Email              string             `json:"email" binding:"omitempty,email,max=254"`
	RUT                string             `json:"rut" binding:"required,max=12"`
	Role               string             `json:"role" binding:"required"`
	GroupID            *uuid.UUID         `json:"group_id"`
	Password           string             `json:"password" binding:"omitempty,min=8,max=128"`
	IsSuperuser        bool               `json:"is_superuser"`
	NationalLeadership *LeadershipRequest `json:"national_leadership"`
}

// LeadershipRequest sets the national leadership flags. The division is
// required when either flag is set and dropped otherwise.
type LeadershipRequest struct {
	IsNationalLeader bool   `json:"is_national_leader"`
	IsNationalVice   bool   `json:"is_national_vice"`
	NationalDivision string `json:"national_division" binding:"max=50"`
}

func (r *LeadershipRequest) toDomain() *domainidentity.Leadership {
	if r == nil {
		return nil
	}
	return &domainidentity.Leadership{Leader: r.IsNationalLeader, Vice: r.IsNationalVice, Division: r.NationalDivision}
}

// UpdateActorRequest changes only the fields present in the body
type UpdateActorRequest struct {
	GroupID            *uuid.UUID         `json:"group_id"`
	ClearGroup         bool               `json:"clear_group"`
	Role               *string            `json:"role"`
	IsActive           *bool              `json:"is_active"`
	NationalLeadership *LeadershipRequest `json:"national_leadership"`
}

// ActorHandler handles actor registration and maintenance
type ActorHandler struct {
	BaseHandler
	actorService *identity.ActorService
}

// NewActorHandler creates a new ActorHandler
func NewActorHandler(actorService *identity.ActorService) *ActorHandler {
	return &ActorHandler{actorService: actorService}
}

// Create godoc
// @Summary      Register an actor
// @Description  Board only. Superusers are created by superusers.
// @Tags         actors
// @Accept       json
// @Produce      json
// @Param        request body CreateActorRequest true "Actor"
// @Success      201 {object} dto.Response{data=identity.ActorResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actors [post]
func (h *ActorHandler) Create(c *gin.Context) {
	operator, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateActorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var leadership domainidentity.Leadership
	if l := req.NationalLeadership.toDomain(); l != nil {
		leadership = *l
	}

	resp, err := h.actorService.Create(c.Request.Context(), operator, identity.CreateActorInput{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		RUT:         req.RUT,
		Role:        req.Role,
		GroupID:     req.GroupID,
		Password:    req.Password,
		IsSuperuser: req.IsSuperuser,
		Leadership:  leadership,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary      Get an actor
// @Description  The actor itself, or a member inside the viewer's scope
// @Tags         actors
// @Produce      json
// @Param        id path string true "Actor ID" format(uuid)
// @Success      200 {object} dto.Response{data=identity.ActorResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actors/{id} [get]
func (h *ActorHandler) Get(c *gin.Context) {
	viewer, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.actorService.Get(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update an actor
// @Description  Board only. Changes group, role, active flag or national leadership.
// @Tags         actors
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Actor ID" format(uuid)
// @Param        request body UpdateActorRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=identity.ActorResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actors/{id} [patch]
func (h *ActorHandler) Update(c *gin.Context) {
	operator, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req UpdateActorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.actorService.Update(c.Request.Context(), operator, id, identity.UpdateActorInput{
		GroupID:    req.GroupID,
		ClearGroup: req.ClearGroup,
		Role:       req.Role,
		IsActive:   req.IsActive,
		Leadership: req.NationalLeadership.toDomain(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
