package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// POHandler purchase order endpoints
type POHandler struct {
	svc       *service.POService
	suppliers *service.SupplierService
}

func NewPOHandler(svc *service.POService, suppliers *service.SupplierService) *POHandler {
	return &POHandler{svc: svc, suppliers: suppliers}
}

// List purchase orders for reviewer roles
// GET /api/purchase-orders
func (h *POHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	ListPage(c, items, page, pageSize, total)
}

// DownloadPDF renders the purchase order document
// GET /api/purchase-orders/:id/pdf
func (h *POHandler) DownloadPDF(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	actor := GetActor(c)

	// Resolve the caller's supplier profile for the ownership check.
	var supplierID uint
	if actor.Role == entity.RoleSupplier {
		sup, err := h.suppliers.Me(c.Request.Context(), actor)
		if err != nil && !errors.Is(err, service.ErrForbidden) {
			HandleError(c, err)
			return
		}
		if sup != nil {
			supplierID = sup.ID
		}
	}

	pdf, name, err := h.svc.RenderPDF(c.Request.Context(), actor, id, supplierID)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(200, "application/pdf", pdf)
}
