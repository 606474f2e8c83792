package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apphousehold "github.com/sgi/backend/internal/application/household"
	"github.com/sgi/backend/internal/domain/household"
)

// CreateHouseholdRequest founds a household headed by the caller
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"max=150"`
}

// AddMemberRequest adds a member to a household
type AddMemberRequest struct {
	ActorID      uuid.UUID `json:"actor_id" binding:"required"`
	Relationship string    `json:"relationship" binding:"omitempty,oneof=head spouse child sibling other"`
}

// HouseholdHandler manages households
type HouseholdHandler struct {
	BaseHandler
	householdService *apphousehold.Service
}

// NewHouseholdHandler creates a new HouseholdHandler
func NewHouseholdHandler(householdService *apphousehold.Service) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService}
}

// Create godoc
// @Summary      Create a household
// @Description  Creates a household with the caller as its first member
// @Tags         households
// @Accept       json
// @Produce      json
// @Param        request body CreateHouseholdRequest true "Household"
// @Success      201 {object} dto.Response{data=apphousehold.HouseholdResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /households [post]
func (h *HouseholdHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateHouseholdRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.householdService.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AddMember godoc
// @Summary      Add a household member
// @Description  Adds an actor to the household
// @Tags         households
// @Accept       json
// @Produce      json
// @Param        id path string true "Household ID" format(uuid)
// @Param        request body AddMemberRequest true "Member"
// @Success      200 {object} dto.Response{data=apphousehold.HouseholdResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /households/{id}/members [post]
func (h *HouseholdHandler) AddMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	householdID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.householdService.AddMember(c.Request.Context(), actor, householdID, req.ActorID,
		household.Relationship(req.Relationship))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveMember godoc
// @Summary      Remove a household member
// @Description  Removes an actor. Answers 204 once the last member leaves and the household is gone
// @Tags         households
// @Produce      json
// @Param        id path string true "Household ID" format(uuid)
// @Param        actorId path string true "Actor ID" format(uuid)
// @Success      200 {object} dto.Response{data=apphousehold.HouseholdResponse}
// @Success      204 "No Content"
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /households/{id}/members/{actorId} [delete]
func (h *HouseholdHandler) RemoveMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	householdID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.uuidParam(c, "actorId")
	if !ok {
		return
	}
	resp, err := h.householdService.RemoveMember(c.Request.Context(), actor, householdID, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp == nil {
		h.NoContent(c)
		return
	}
	h.Success(c, resp)
}

// GetByMember godoc
// @Summary      Household of a member
// @Description  The household an actor belongs to
// @Tags         households
// @Produce      json
// @Param        actorId path string true "Actor ID" format(uuid)
// @Success      200 {object} dto.Response{data=apphousehold.HouseholdResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /households/members/{actorId} [get]
func (h *HouseholdHandler) GetByMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	memberID, ok := h.uuidParam(c, "actorId")
	if !ok {
		return
	}
	resp, err := h.householdService.Get(c.Request.Context(), actor, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
