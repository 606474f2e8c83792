package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/application/fortuna"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SubmitPurchaseRequest submits or resubmits the caller's subscription
type SubmitPurchaseRequest struct {
	Plan        string          `json:"plan" binding:"required,oneof=quarterly semiannual annual"`
	Amount      decimal.Decimal `json:"amount"`
	DepositDate string          `json:"deposit_date" binding:"required"`
	Receipt     string          `json:"receipt" binding:"required,max=255"`
	Note        string          `json:"note" binding:"max=2000"`
}

// CreateIssueRequest publishes a magazine issue
type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	PublishedOn string `json:"published_on" binding:"required"`
}

// FortunaHandler handles subscriptions and issue access
type FortunaHandler struct {
	BaseHandler
	fortunaService *fortuna.Service
}

// NewFortunaHandler creates a new FortunaHandler
func NewFortunaHandler(fortunaService *fortuna.Service) *FortunaHandler {
	return &FortunaHandler{fortunaService: fortunaService}
}

// Submit godoc
// @Summary      Submit a Fortuna purchase
// @Description  Requests access to the Fortuna magazine for a plan
// @Tags         fortuna
// @Accept       json
// @Produce      json
// @Param        request body SubmitPurchaseRequest true "Purchase"
// @Success      201 {object} dto.Response{data=fortuna.PurchaseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fortuna/purchases [post]
func (h *FortunaHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req SubmitPurchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	depositDate, err := parseDate("deposit_date", req.DepositDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := h.fortunaService.Submit(c.Request.Context(), actor, fortuna.SubmitPurchaseRequest{
		Plan:        req.Plan,
		Amount:      req.Amount,
		DepositDate: depositDate,
		Receipt:     shared.ReceiptRef(req.Receipt),
		Note:        req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Mine godoc
// @Summary      My Fortuna purchase
// @Description  The viewer's latest purchase
// @Tags         fortuna
// @Produce      json
// @Success      200 {object} dto.Response{data=fortuna.PurchaseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fortuna/purchases/mine [get]
func (h *FortunaHandler) Mine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.fortunaService.GetMine(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve godoc
// @Summary      Approve a Fortuna purchase
// @Description  Grants access for the purchased plan
// @Tags         fortuna
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Success      200 {object} dto.Response{data=fortuna.DecisionResult}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fortuna/purchases/{id}/approve [post]
func (h *FortunaHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.fortunaService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reject godoc
// @Summary      Reject a Fortuna purchase
// @Description  Rejects a pending purchase with a reason
// @Tags         fortuna
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Param        request body RejectRequest true "Reason"
// @Success      200 {object} dto.Response{data=fortuna.DecisionResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fortuna/purchases/{id}/reject [post]
func (h *FortunaHandler) Reject(c *gin.Context) {
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
	result, err := h.fortunaService.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateIssue godoc
// @Summary      Publish a Fortuna issue
// @Description  Registers a new magazine issue
// @Tags         fortuna
// @Accept       json
// @Produce      json
// @Param        request body CreateIssueRequest true "Issue"
// @Success      201 {object} dto.Response{data=fortuna.IssueResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fortuna/issues [post]
func (h *FortunaHandler) CreateIssue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateIssueRequest
	if !h.bindJSON(c, &req) {
		return
	}
	publishedOn, err := parseDate("published_on", req.PublishedOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := h.fortunaService.CreateIssue(c.Request.Context(), actor, req.Title, publishedOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Access godoc
// @Summary      Check issue access
// @Description  Whether the viewer may read the issue
// @Tags         fortuna
// @Produce      json
// @Param        id path string true "Issue ID" format(uuid)
// @Success      200 {object} dto.Response{data=fortuna.AccessResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /fortuna/issues/{id}/access [get]
func (h *FortunaHandler) Access(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.fortunaService.Access(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
