package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"salesledger/internal/core/id"
	"salesledger/internal/domain"
	"salesledger/internal/domain/posting"
	"salesledger/internal/infrastructure/http/v1/dto"
)

// DocumentService is what BaseDocumentHandler needs from an orchestrator.
type DocumentService[T any, In any] interface {
	Create(ctx context.Context, in In) (T, *posting.MovementSet, error)
	GetByID(ctx context.Context, docID id.ID) (T, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
	Update(ctx context.Context, docID id.ID, in In) (T, *posting.MovementSet, error)
	Delete(ctx context.Context, docID id.ID) error
}

// Request is a decoded payload that maps to an orchestrator input.
type Request[In any] interface {
	ToInput() In
}

// BaseDocumentHandler provides the CRUD endpoints of one document type.
type BaseDocumentHandler[T any, In any, Req Request[In]] struct {
	*BaseHandler
	service DocumentService[T, In]
}

// NewBaseDocumentHandler creates a new base document handler.
func NewBaseDocumentHandler[T any, In any, Req Request[In]](
	base *BaseHandler,
	service DocumentService[T, In],
) *BaseDocumentHandler[T, In, Req] {
	return &BaseDocumentHandler[T, In, Req]{BaseHandler: base, service: service}
}

// Create handles POST /{documents}
func (h *BaseDocumentHandler[T, In, Req]) Create(c *gin.Context) {
	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	doc, set, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewDocumentResponse(doc, set))
}

// Get handles GET /{documents}/:id
func (h *BaseDocumentHandler[T, In, Req]) Get(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /{documents}
func (h *BaseDocumentHandler[T, In, Req]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	h.OK(c, result)
}

// Update handles PUT /{documents}/:id
func (h *BaseDocumentHandler[T, In, Req]) Update(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	doc, set, err := h.service.Update(c.Request.Context(), docID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewDocumentResponse(doc, set))
}

// Delete handles DELETE /{documents}/:id
func (h *BaseDocumentHandler[T, In, Req]) Delete(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
