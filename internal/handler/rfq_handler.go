package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// RFQHandler RFQ lifecycle endpoints
type RFQHandler struct {
	svc    *service.RFQService
	quotes *service.QuotationService
}

func NewRFQHandler(svc *service.RFQService, quotes *service.QuotationService) *RFQHandler {
	return &RFQHandler{svc: svc, quotes: quotes}
}

// CreateDraft officer-created draft RFQ
// POST /api/rfqs
func (h *RFQHandler) CreateDraft(c *gin.Context) {
	var in service.CreateDraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	rfq, err := h.svc.CreateDraft(c.Request.Context(), GetActor(c), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, rfq)
}

// ApproveDraft opens a draft and auto-invites suppliers
// POST /api/rfqs/:id/approve
func (h *RFQHandler) ApproveDraft(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	rfq, err := h.svc.ApproveDraft(c.Request.Context(), GetActor(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, rfq)
}

// DeleteDraft discards a draft RFQ
// DELETE /api/rfqs/:id
func (h *RFQHandler) DeleteDraft(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteDraft(c.Request.Context(), GetActor(c), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// List RFQ listing, supplier-scoped for supplier callers
// GET /api/rfqs?status=&category=&search=
func (h *RFQHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":   c.Query("status"),
		"category": c.Query("category"),
		"search":   c.Query("search"),
	}
	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	ListPage(c, items, page, pageSize, total)
}

// Get RFQ detail
// GET /api/rfqs/:id
func (h *RFQHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	rfq, err := h.svc.Get(c.Request.Context(), GetActor(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, rfq)
}

// ListQuotations bids for an RFQ, subject to the sealed-bid window
// GET /api/rfqs/:id/quotations
func (h *RFQHandler) ListQuotations(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	items, err := h.quotes.ListByRFQ(c.Request.Context(), GetActor(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}
