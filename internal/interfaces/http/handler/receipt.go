package handler

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// DefaultMaxReceiptSize bounds a single receipt upload
const DefaultMaxReceiptSize = 10 << 20

// ReceiptResponse is the reference to quote in a report or purchase
type ReceiptResponse struct {
	Receipt     shared.ReceiptRef `json:"receipt"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
}

// ReceiptHandler accepts deposit receipt uploads
type ReceiptHandler struct {
	BaseHandler
	store   shared.ReceiptStore
	maxSize int64
}

// NewReceiptHandler creates a new ReceiptHandler. maxSize <= 0 uses
// DefaultMaxReceiptSize.
func NewReceiptHandler(store shared.ReceiptStore, maxSize int64) *ReceiptHandler {
	if maxSize <= 0 {
		maxSize = DefaultMaxReceiptSize
	}
	return &ReceiptHandler{store: store, maxSize: maxSize}
}

// Upload godoc
// @Summary      Upload a receipt
// @Description  Stores a payment receipt image or PDF and returns its key
// @Tags         receipts
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Receipt"
// @Success      201 {object} dto.Response{data=ReceiptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /receipts [post]
func (h *ReceiptHandler) Upload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.HandleError(c, shared.NewValidationError("file", "A receipt file is required"))
		return
	}
	if fh.Size > h.maxSize {
		h.HandleError(c, shared.NewValidationError("file", "Receipt file is too large"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxSize+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if int64(len(data)) > h.maxSize {
		h.HandleError(c, shared.NewValidationError("file", "Receipt file is too large"))
		return
	}

	// The declared part type is ignored; the bytes decide.
	contentType := mimetype.Detect(data).String()
	if !storage.IsAcceptedContentType(contentType) {
		h.HandleError(c, shared.NewValidationError("file", "Receipts must be an image or a PDF"))
		return
	}

	ref, err := h.store.Store(c.Request.Context(), data, contentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.L(c.Request.Context()).Info("Receipt uploaded",
		zap.String("actor_id", actor.ID.String()),
		zap.String("receipt", string(ref)),
		zap.Int("size", len(data)),
	)
	h.Created(c, ReceiptResponse{Receipt: ref, ContentType: contentType, Size: int64(len(data))})
}
