package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgi/backend/internal/application/contribution"
	"github.com/shopspring/decimal"
)

// SpecialContributionRequest records a special contribution by hand
type SpecialContributionRequest struct {
	MemberID uuid.UUID       `json:"member_id" binding:"required"`
	Date     string          `json:"date" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note" binding:"max=2000"`
}

// ActiveMembersResponse lists active members with the threshold applied
type ActiveMembersResponse struct {
	Threshold decimal.Decimal                     `json:"threshold"`
	Members   []contribution.ActiveMemberResponse `json:"members"`
}

// ContributionHandler exposes the confirmed-contribution ledger
type ContributionHandler struct {
	BaseHandler
	ledgerService *contribution.LedgerService
}

// NewContributionHandler creates a new ContributionHandler
func NewContributionHandler(ledgerService *contribution.LedgerService) *ContributionHandler {
	return &ContributionHandler{ledgerService: ledgerService}
}

// ActiveMembers godoc
// @Summary      Active member count
// @Description  Members whose approved contributions reach the activity threshold, within the viewer's scope
// @Tags         contributions
// @Produce      json
// @Success      200 {object} dto.Response{data=ActiveMembersResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contributions/active-members [get]
func (h *ContributionHandler) ActiveMembers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	members, err := h.ledgerService.ActiveMembers(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if members == nil {
		members = []contribution.ActiveMemberResponse{}
	}
	h.Success(c, ActiveMembersResponse{Threshold: h.ledgerService.Threshold(), Members: members})
}

// Summary godoc
// @Summary      Member contribution summary
// @Description  Ledger totals for one member inside the viewer's scope
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response{data=contribution.SummaryResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contributions/members/{id}/summary [get]
func (h *ContributionHandler) Summary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	memberID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.ledgerService.Summary(c.Request.Context(), actor, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RecordSpecial godoc
// @Summary      Record a special contribution
// @Description  Books a contribution directly on the ledger without a report
// @Tags         contributions
// @Accept       json
// @Produce      json
// @Param        request body SpecialContributionRequest true "Contribution"
// @Success      201 {object} dto.Response{data=contribution.ContributionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contributions/special [post]
func (h *ContributionHandler) RecordSpecial(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req SpecialContributionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := h.ledgerService.RecordSpecial(c.Request.Context(), actor, contribution.SpecialContributionRequest{
		MemberID: req.MemberID,
		Date:     date,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
