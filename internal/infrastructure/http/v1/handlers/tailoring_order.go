package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"salesledger/internal/core/id"
	"salesledger/internal/domain/documents"
	tailoring "salesledger/internal/domain/documents/tailoring_order"
	"salesledger/internal/domain/posting"
	"salesledger/internal/infrastructure/http/v1/dto"
)

// TailoringStatusService moves a tailoring order through its workflow.
type TailoringStatusService interface {
	SetStatus(ctx context.Context, docID id.ID, status string) (*tailoring.TailoringOrder, *posting.MovementSet, error)
}

// TailoringOrderHandler adds the status endpoint to the CRUD endpoints.
type TailoringOrderHandler struct {
	*BaseDocumentHandler[*tailoring.TailoringOrder, documents.SalesInput, dto.SalesRequest]
	status TailoringStatusService
}

// NewTailoringOrderHandler creates a tailoring order handler.
func NewTailoringOrderHandler(base *BaseHandler, service *tailoring.Service) *TailoringOrderHandler {
	return &TailoringOrderHandler{
		BaseDocumentHandler: NewBaseDocumentHandler[*tailoring.TailoringOrder, documents.SalesInput, dto.SalesRequest](base, service),
		status:              service,
	}
}

// SetStatus handles POST /tailoring-orders/:id/status
func (h *TailoringOrderHandler) SetStatus(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, set, err := h.status.SetStatus(c.Request.Context(), docID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewDocumentResponse(doc, set))
}
