package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// SupplierHandler public registration and supplier portal endpoints
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// Register public supplier onboarding, multipart
// POST /api/suppliers/register
func (h *SupplierHandler) Register(c *gin.Context) {
	var categoryIDs []uint
	for _, raw := range c.PostFormArray("category_ids") {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			BadRequest(c, "invalid category_ids")
			return
		}
		categoryIDs = append(categoryIDs, uint(v))
	}

	in := service.RegisterInput{
		Username:      c.PostForm("username"),
		Email:         c.PostForm("email"),
		Password:      c.PostForm("password"),
		FullName:      c.PostForm("full_name"),
		CompanyName:   c.PostForm("company_name"),
		ContactPerson: c.PostForm("contact_person"),
		Phone:         c.PostForm("phone"),
		Address:       c.PostForm("address"),
		City:          c.PostForm("city"),
		Country:       c.PostForm("country"),
		TaxNumber:     c.PostForm("tax_number"),
		CategoryIDs:   categoryIDs,
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		var open []multipart.File
		defer func() {
			for _, f := range open {
				f.Close()
			}
		}()
		for _, fh := range form.File["documents"] {
			up, err := uploadFromFile(fh)
			if err != nil {
				BadRequest(c, "unable to read document "+fh.Filename)
				return
			}
			open = append(open, up.Reader.(multipart.File))
			in.Documents = append(in.Documents, up)
		}
	}

	sup, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, sup)
}

// Me own supplier profile
// GET /api/suppliers/me
func (h *SupplierHandler) Me(c *gin.Context) {
	sup, err := h.svc.Me(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sup)
}

// UpdateMe profile self-service edit
// PUT /api/suppliers/me
func (h *SupplierHandler) UpdateMe(c *gin.Context) {
	var in service.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	sup, err := h.svc.UpdateMe(c.Request.Context(), GetActor(c), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sup)
}

// Invitations own RFQ invitations
// GET /api/suppliers/me/invitations
func (h *SupplierHandler) Invitations(c *gin.Context) {
	items, err := h.svc.Invitations(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// ActiveRFQs open RFQs the supplier can still quote on
// GET /api/suppliers/me/rfqs/active
func (h *SupplierHandler) ActiveRFQs(c *gin.Context) {
	items, err := h.svc.ActiveRFQs(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// PurchaseOrders awarded quotations for the supplier portal
// GET /api/suppliers/me/purchase-orders
func (h *SupplierHandler) PurchaseOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	quotes, total, err := h.svc.PurchaseOrders(c.Request.Context(), GetActor(c), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	ListPage(c, service.ToOrders(quotes), page, pageSize, total)
}
