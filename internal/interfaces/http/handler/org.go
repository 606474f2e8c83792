package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgi/backend/internal/application/org"
)

// CreateNodeRequest names a new sector, zone or group
type CreateNodeRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateChildNodeRequest names a zone or group under its parent
type CreateChildNodeRequest struct {
	ParentID uuid.UUID `json:"parent_id" binding:"required"`
	Name     string    `json:"name" binding:"required,max=100"`
}

// OrgHandler handles the Sector → Zone → Group tree
type OrgHandler struct {
	BaseHandler
	orgService *org.Service
}

// NewOrgHandler creates a new OrgHandler
func NewOrgHandler(orgService *org.Service) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

// Tree godoc
// @Summary      Organization tree
// @Description  Sectors with their zones and groups
// @Tags         org
// @Produce      json
// @Success      200 {object} dto.Response{data=[]org.SectorNode}
// @Security     BearerAuth
// @Router       /org/tree [get]
func (h *OrgHandler) Tree(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	tree, err := h.orgService.Tree(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// CreateSector godoc
// @Summary      Create a sector
// @Description  Adds a top-level sector
// @Tags         org
// @Accept       json
// @Produce      json
// @Param        request body CreateNodeRequest true "Sector"
// @Success      201 {object} dto.Response{data=org.NodeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /org/sectors [post]
func (h *OrgHandler) CreateSector(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateNodeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orgService.CreateSector(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateZone godoc
// @Summary      Create a zone
// @Description  Adds a zone under a sector
// @Tags         org
// @Accept       json
// @Produce      json
// @Param        request body CreateChildNodeRequest true "Zone"
// @Success      201 {object} dto.Response{data=org.NodeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /org/zones [post]
func (h *OrgHandler) CreateZone(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateChildNodeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orgService.CreateZone(c.Request.Context(), actor, req.ParentID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateGroup godoc
// @Summary      Create a group
// @Description  Adds a group under a zone
// @Tags         org
// @Accept       json
// @Produce      json
// @Param        request body CreateChildNodeRequest true "Group"
// @Success      201 {object} dto.Response{data=org.NodeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /org/groups [post]
func (h *OrgHandler) CreateGroup(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateChildNodeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orgService.CreateGroup(c.Request.Context(), actor, req.ParentID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
