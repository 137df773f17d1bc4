package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// Handlers HTTP handler collection
type Handlers struct {
	Auth      *AuthHandler
	Request   *RequestHandler
	RFQ       *RFQHandler
	Quotation *QuotationHandler
	Supplier  *SupplierHandler
	Admin     *AdminHandler
	Message   *MessageHandler
	PO        *POHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		Request:   NewRequestHandler(svc.Request),
		RFQ:       NewRFQHandler(svc.RFQ, svc.Quotation),
		Quotation: NewQuotationHandler(svc.Quotation),
		Supplier:  NewSupplierHandler(svc.Supplier),
		Admin:     NewAdminHandler(svc.Admin),
		Message:   NewMessageHandler(svc.Message),
		PO:        NewPOHandler(svc.PO, svc.Supplier),
	}
}

// === Response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps service sentinels to response codes.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, entity.ErrInvalidTransition):
		Conflict(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetActor rebuilds the caller identity placed by the auth middleware.
func GetActor(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Get("user_id"); ok {
		actor.ID = id.(uint)
	}
	if role, ok := c.Get("role"); ok {
		actor.Role = role.(entity.Role)
	}
	if dept, ok := c.Get("department_id"); ok {
		d := dept.(uint)
		actor.DepartmentID = &d
	}
	return actor
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}

// ParamID parses a numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func ListPage(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}
