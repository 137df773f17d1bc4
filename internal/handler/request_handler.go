package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// RequestHandler purchase request workflow endpoints
type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// Create raises a purchase request
// POST /api/requests
func (h *RequestHandler) Create(c *gin.Context) {
	var in service.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.Create(c.Request.Context(), GetActor(c), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, pr)
}

// List role-scoped request listing
// GET /api/requests?status=&search=
func (h *RequestHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}
	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	ListPage(c, items, page, pageSize, total)
}

// Get request detail
// GET /api/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	pr, err := h.svc.Get(c.Request.Context(), GetActor(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// HODApprove department head approval
// POST /api/requests/:id/hod-approve
func (h *RequestHandler) HODApprove(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.HODReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.HODApprove(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// HODReject department head rejection
// POST /api/requests/:id/hod-reject
func (h *RequestHandler) HODReject(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.HODReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.HODReject(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// ProcurementApprove sets the budget and forwards to finance
// POST /api/requests/:id/procurement-approve
func (h *RequestHandler) ProcurementApprove(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.ProcurementReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.ProcurementApprove(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// ProcurementReject procurement rejection
// POST /api/requests/:id/procurement-reject
func (h *RequestHandler) ProcurementReject(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.ProcurementReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.ProcurementReject(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// FinanceApprove finance approval with optional budget override
// POST /api/requests/:id/finance-approve
func (h *RequestHandler) FinanceApprove(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.FinanceReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.FinanceApprove(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// FinanceReject finance rejection
// POST /api/requests/:id/finance-reject
func (h *RequestHandler) FinanceReject(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.FinanceReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	pr, err := h.svc.FinanceReject(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// InviteSuppliers opens the RFQ for a finance-approved request
// POST /api/requests/:id/invite-suppliers
func (h *RequestHandler) InviteSuppliers(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.InviteSuppliersInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	rfq, err := h.svc.InviteSuppliers(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, rfq)
}
