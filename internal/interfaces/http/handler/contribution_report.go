package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgi/backend/internal/application/contribution"
	domain "github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// SubmitReportRequest reports a bank deposit. subject_id defaults to the
// reporter and splits may be left out to credit the subject alone.
type SubmitReportRequest struct {
	SubjectID   *uuid.UUID      `json:"subject_id"`
	Amount      decimal.Decimal `json:"amount"`
	DepositDate string          `json:"deposit_date" binding:"required"`
	Receipt     string          `json:"receipt" binding:"required,max=255"`
	Note        string          `json:"note" binding:"max=2000"`
	Splits      []SplitRequest  `json:"splits" binding:"omitempty,dive"`
}

// SplitRequest is one household member's share of a deposit
type SplitRequest struct {
	MemberID uuid.UUID       `json:"member_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// RejectRequest carries an optional rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReportListQuery filters report listings
type ReportListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// ContributionReportHandler handles deposit reports and their review
type ContributionReportHandler struct {
	BaseHandler
	reportService *contribution.ReportService
}

// NewContributionReportHandler creates a new ContributionReportHandler
func NewContributionReportHandler(reportService *contribution.ReportService) *ContributionReportHandler {
	return &ContributionReportHandler{reportService: reportService}
}

// Submit godoc
// @Summary      Submit a contribution report
// @Description  Reports a payment, optionally split across household members
// @Tags         contribution-reports
// @Accept       json
// @Produce      json
// @Param        request body SubmitReportRequest true "Report"
// @Success      201 {object} dto.Response{data=contribution.ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contribution-reports [post]
func (h *ContributionReportHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req SubmitReportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	depositDate, err := parseDate("deposit_date", req.DepositDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	splits := make([]domain.Split, len(req.Splits))
	for i, s := range req.Splits {
		splits[i] = domain.Split{MemberID: s.MemberID, Amount: s.Amount}
	}

	resp, err := h.reportService.Submit(c.Request.Context(), actor, contribution.SubmitReportRequest{
		SubjectID:   req.SubjectID,
		Amount:      req.Amount,
		DepositDate: depositDate,
		Receipt:     shared.ReceiptRef(req.Receipt),
		Note:        req.Note,
		Splits:      splits,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary      Get a contribution report
// @Description  A report visible to the viewer
// @Tags         contribution-reports
// @Produce      json
// @Param        id path string true "Report ID" format(uuid)
// @Success      200 {object} dto.Response{data=contribution.ReportResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contribution-reports/{id} [get]
func (h *ContributionReportHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.reportService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List contribution reports
// @Description  Reports in the viewer's scope, newest first
// @Tags         contribution-reports
// @Produce      json
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Param        status query string false "pending, approved or rejected"
// @Success      200 {object} dto.Response{data=[]contribution.ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contribution-reports [get]
func (h *ContributionReportHandler) List(c *gin.Context) {
	h.list(c, h.reportService.List)
}

// ListMine godoc
// @Summary      List my contribution reports
// @Description  Reports the viewer submitted or is a subject of
// @Tags         contribution-reports
// @Produce      json
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Param        status query string false "pending, approved or rejected"
// @Success      200 {object} dto.Response{data=[]contribution.ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contribution-reports/mine [get]
func (h *ContributionReportHandler) ListMine(c *gin.Context) {
	h.list(c, h.reportService.ListMine)
}

type reportLister func(ctx context.Context, actor *identity.Actor, filter contribution.ReportListFilter) ([]contribution.ReportResponse, int64, error)

func (h *ContributionReportHandler) list(c *gin.Context, fetch reportLister) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q ReportListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, bindingError(err))
		return
	}
	filter := contribution.ReportListFilter{Filter: listFilter(q.ListRequest), Status: q.Status}
	reports, total, err := fetch(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reports, total, filter.Page, filter.PageSize)
}

// Approve godoc
// @Summary      Approve a contribution report
// @Description  Books the report on the ledger. A report that is no longer pending answers 200 with already_decided set
// @Tags         contribution-reports
// @Produce      json
// @Param        id path string true "Report ID" format(uuid)
// @Success      200 {object} dto.Response{data=contribution.DecisionResult}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contribution-reports/{id}/approve [post]
func (h *ContributionReportHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.reportService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reject godoc
// @Summary      Reject a contribution report
// @Description  Rejects a pending report with a reason
// @Tags         contribution-reports
// @Accept       json
// @Produce      json
// @Param        id path string true "Report ID" format(uuid)
// @Param        request body RejectRequest true "Reason"
// @Success      200 {object} dto.Response{data=contribution.DecisionResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /contribution-reports/{id}/reject [post]
func (h *ContributionReportHandler) Reject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.reportService.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
