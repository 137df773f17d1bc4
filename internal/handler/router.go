package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/config"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/middleware"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/policy"
)

// RegisterRoutes wires the API surface. Shared by main and the handler
// tests.
func RegisterRoutes(r *gin.Engine, h *Handlers, cfg *config.Config, rdb *redis.Client) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Public surface
		api.POST("/auth/token",
			middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginPerMinute, time.Minute),
			h.Auth.Login)
		api.POST("/setup/initialize", h.Auth.Initialize)
		api.GET("/setup/status", h.Auth.SetupStatus)
		api.GET("/categories", h.Admin.ListCategories)
		api.POST("/suppliers/register",
			middleware.RateLimit(rdb, "register", cfg.RateLimit.RegistrationsPerHour, time.Hour),
			h.Supplier.Register)

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/me", h.Auth.UpdateMe)

			requests := authorized.Group("/requests")
			{
				requests.POST("",
					middleware.RateLimit(rdb, "requests", cfg.RateLimit.RequestsPerHour, time.Hour),
					h.Request.Create)
				requests.GET("", h.Request.List)
				requests.GET("/:id", h.Request.Get)
				requests.POST("/:id/hod-approve", h.Request.HODApprove)
				requests.POST("/:id/hod-reject", h.Request.HODReject)
				requests.POST("/:id/procurement-approve", h.Request.ProcurementApprove)
				requests.POST("/:id/procurement-reject", h.Request.ProcurementReject)
				requests.POST("/:id/finance-approve", h.Request.FinanceApprove)
				requests.POST("/:id/finance-reject", h.Request.FinanceReject)
				requests.POST("/:id/invite-suppliers", h.Request.InviteSuppliers)
			}

			rfqs := authorized.Group("/rfqs")
			{
				rfqs.POST("", h.RFQ.CreateDraft)
				rfqs.GET("", h.RFQ.List)
				rfqs.GET("/:id", h.RFQ.Get)
				rfqs.POST("/:id/approve", h.RFQ.ApproveDraft)
				rfqs.DELETE("/:id", h.RFQ.DeleteDraft)
				rfqs.GET("/:id/quotations", h.RFQ.ListQuotations)
				rfqs.POST("/:id/quotations", h.Quotation.Submit)
			}

			quotations := authorized.Group("/quotations")
			{
				quotations.POST("/:id/request-finance-approval", h.Quotation.RequestFinanceApproval)
				quotations.POST("/:id/approve", h.Quotation.Approve)
				quotations.POST("/:id/reject", h.Quotation.Reject)
				quotations.POST("/:id/mark-delivered", h.Quotation.MarkDelivered)
				quotations.GET("/:id/attachment", h.Quotation.Attachment)
				quotations.GET("/:id/delivery-note", h.Quotation.DeliveryNote)
			}

			orders := authorized.Group("/purchase-orders")
			{
				orders.GET("", h.PO.List)
				orders.GET("/:id/pdf", h.PO.DownloadPDF)
			}

			me := authorized.Group("/suppliers/me")
			me.Use(middleware.RequireRole(entity.RoleSupplier))
			{
				me.GET("", h.Supplier.Me)
				me.PUT("", h.Supplier.UpdateMe)
				me.GET("/invitations", h.Supplier.Invitations)
				me.GET("/rfqs/active", h.Supplier.ActiveRFQs)
				me.GET("/purchase-orders", h.Supplier.PurchaseOrders)
			}

			messages := authorized.Group("/messages")
			{
				messages.POST("", h.Message.Send)
				messages.POST("/:id/reply", h.Message.Reply)
				messages.GET("/received", h.Message.Received)
				messages.GET("/sent", h.Message.Sent)
				messages.POST("/:id/read", h.Message.MarkRead)
				messages.GET("/conversation/:userId", h.Message.Conversation)
			}

			admin := authorized.Group("/admin")
			{
				users := admin.Group("/users")
				users.Use(middleware.RequireCapability(policy.CapManageUsers))
				{
					users.GET("", h.Admin.ListUsers)
					users.POST("", h.Admin.CreateUser)
					users.DELETE("/:id", h.Admin.DeleteUser)
				}

				departments := admin.Group("/departments")
				departments.Use(middleware.RequireCapability(policy.CapManageDepartments))
				{
					departments.GET("", h.Admin.ListDepartments)
					departments.POST("", h.Admin.CreateDepartment)
					departments.DELETE("/:id", h.Admin.DeleteDepartment)
				}

				categories := admin.Group("/categories")
				categories.Use(middleware.RequireCapability(policy.CapManageCategories))
				{
					categories.GET("", h.Admin.ListCategories)
					categories.POST("", h.Admin.CreateCategory)
					categories.PUT("/:id", h.Admin.UpdateCategory)
					categories.DELETE("/:id", h.Admin.DeleteCategory)
				}

				suppliers := admin.Group("/suppliers")
				suppliers.Use(middleware.RequireCapability(policy.CapManageSuppliers))
				{
					suppliers.GET("", h.Admin.ListSuppliers)
					suppliers.GET("/:id", h.Admin.GetSupplier)
					suppliers.PATCH("/:id/active", h.Admin.SetSupplierActive)
					suppliers.GET("/:id/documents/:docId/download", h.Admin.DownloadSupplierDocument)
				}

				admin.GET("/analytics/summary",
					middleware.RequireCapability(policy.CapViewAnalytics),
					h.Admin.Analytics)

				settings := admin.Group("/company-settings")
				settings.Use(middleware.RequireCapability(policy.CapManageSettings))
				{
					settings.GET("", h.Admin.GetSettings)
					settings.PUT("", h.Admin.UpdateSettings)
					settings.POST("/logo", h.Admin.UploadLogo)
				}
			}
		}
	}
}
