package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// AuthHandler login, profile, and first-run setup
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login issues a bearer token
// POST /api/auth/token (form: username, password)
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		BadRequest(c, "username and password are required")
		return
	}

	token, err := h.svc.Login(c.Request.Context(), username, password)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, token)
}

// Me current account
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), GetActor(c).ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, user)
}

// UpdateMe profile self-update
// PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var in service.UpdateMeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	user, err := h.svc.UpdateMe(c.Request.Context(), GetActor(c).ID, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, user)
}

// Initialize first-run super admin bootstrap
// POST /api/setup/initialize
func (h *AuthHandler) Initialize(c *gin.Context) {
	var in service.SetupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	user, err := h.svc.Initialize(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, user)
}

// SetupStatus reports whether any account exists
// GET /api/setup/status
func (h *AuthHandler) SetupStatus(c *gin.Context) {
	initialized, err := h.svc.IsInitialized(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"initialized": initialized})
}
