package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// AdminHandler administration endpoints
type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ListUsers account listing
// GET /api/admin/users?role=&search=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"role":   c.Query("role"),
		"search": c.Query("search"),
	}
	items, total, err := h.svc.ListUsers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	ListPage(c, items, page, pageSize, total)
}

// CreateUser account creation
// POST /api/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, user)
}

// DeleteUser account removal
// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), GetActor(c), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// ListDepartments
// GET /api/admin/departments
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	items, err := h.svc.ListDepartments(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// CreateDepartment
// POST /api/admin/departments
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var in service.CreateDepartmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	dept, err := h.svc.CreateDepartment(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, dept)
}

// DeleteDepartment blocked while requests reference the department
// DELETE /api/admin/departments/:id
func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteDepartment(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// ListCategories public listing used by supplier registration
// GET /api/categories and GET /api/admin/categories
func (h *AdminHandler) ListCategories(c *gin.Context) {
	items, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// CreateCategory
// POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, cat)
}

// UpdateCategory
// PUT /api/admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, cat)
}

// DeleteCategory
// DELETE /api/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// ListSuppliers
// GET /api/admin/suppliers?active=&category=&search=
func (h *AdminHandler) ListSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"active":   c.Query("active"),
		"category": c.Query("category"),
		"search":   c.Query("search"),
	}
	items, total, err := h.svc.ListSuppliers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	ListPage(c, items, page, pageSize, total)
}

// GetSupplier
// GET /api/admin/suppliers/:id
func (h *AdminHandler) GetSupplier(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	sup, err := h.svc.GetSupplier(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sup)
}

// SetSupplierActive toggles invitation eligibility
// PATCH /api/admin/suppliers/:id/active
func (h *AdminHandler) SetSupplierActive(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "active flag is required")
		return
	}
	sup, err := h.svc.SetSupplierActive(c.Request.Context(), id, *in.Active)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, sup)
}

// DownloadSupplierDocument streams a registration document
// GET /api/admin/suppliers/:id/documents/:docId/download
func (h *AdminHandler) DownloadSupplierDocument(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	docID, ok := ParamID(c, "docId")
	if !ok {
		return
	}
	rc, name, err := h.svc.SupplierDocument(c.Request.Context(), id, docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(200, -1, "application/octet-stream", rc, nil)
}

// Analytics dashboard summary
// GET /api/admin/analytics/summary
func (h *AdminHandler) Analytics(c *gin.Context) {
	summary, err := h.svc.Analytics(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, summary)
}

// GetSettings
// GET /api/admin/company-settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.GetSettings(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, settings)
}

// UpdateSettings
// PUT /api/admin/company-settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var in service.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	settings, err := h.svc.UpdateSettings(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, settings)
}

// UploadLogo
// POST /api/admin/company-settings/logo (multipart)
func (h *AdminHandler) UploadLogo(c *gin.Context) {
	fh, err := c.FormFile("logo")
	if err != nil {
		BadRequest(c, "a logo file is required")
		return
	}
	up, err := uploadFromFile(fh)
	if err != nil {
		BadRequest(c, "unable to read logo")
		return
	}
	defer up.Reader.(multipart.File).Close()

	settings, err := h.svc.UploadLogo(c.Request.Context(), up)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, settings)
}
