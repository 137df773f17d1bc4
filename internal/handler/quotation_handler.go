package handler

import (
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// QuotationHandler bid submission, review, and delivery endpoints
type QuotationHandler struct {
	svc *service.QuotationService
}

func NewQuotationHandler(svc *service.QuotationService) *QuotationHandler {
	return &QuotationHandler{svc: svc}
}

func uploadFromFile(fh *multipart.FileHeader) (*service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, nil
}

// Submit supplier bid, multipart with optional attachment
// POST /api/rfqs/:id/quotations
func (h *QuotationHandler) Submit(c *gin.Context) {
	rfqID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(c.PostForm("amount"))
	if err != nil {
		BadRequest(c, "invalid amount")
		return
	}
	tax := decimal.Zero
	if v := c.PostForm("tax_amount"); v != "" {
		tax, err = decimal.NewFromString(v)
		if err != nil {
			BadRequest(c, "invalid tax_amount")
			return
		}
	}
	leadTime, _ := strconv.Atoi(c.PostForm("lead_time_days"))
	validity, _ := strconv.Atoi(c.PostForm("validity_days"))

	in := service.SubmitInput{
		Amount:       amount,
		TaxAmount:    tax,
		Currency:     c.PostForm("currency"),
		LeadTimeDays: leadTime,
		ValidityDays: validity,
		Notes:        c.PostForm("notes"),
	}
	if fh, err := c.FormFile("attachment"); err == nil {
		up, err := uploadFromFile(fh)
		if err != nil {
			BadRequest(c, "unable to read attachment")
			return
		}
		defer up.Reader.(multipart.File).Close()
		in.Attachment = up
	}

	quote, err := h.svc.Submit(c.Request.Context(), GetActor(c), rfqID, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, quote)
}

// RequestFinanceApproval routes a bid through finance
// POST /api/quotations/:id/request-finance-approval
func (h *QuotationHandler) RequestFinanceApproval(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Justification string `json:"justification" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "a justification is required")
		return
	}
	quote, err := h.svc.RequestFinanceApproval(c.Request.Context(), GetActor(c), id, in.Justification)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quote)
}

// Approve awards the RFQ to this bid
// POST /api/quotations/:id/approve
func (h *QuotationHandler) Approve(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.ApproveInput
	// Body is optional unless the bid exceeds budget.
	_ = c.ShouldBindJSON(&in)

	quote, err := h.svc.Approve(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quote)
}

// Reject declines a bid
// POST /api/quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)

	quote, err := h.svc.Reject(c.Request.Context(), GetActor(c), id, in.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quote)
}

// MarkDelivered confirms delivery with a mandatory note file
// POST /api/quotations/:id/mark-delivered (multipart)
func (h *QuotationHandler) MarkDelivered(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	deliveryDate, err := time.Parse("2006-01-02", c.PostForm("delivery_date"))
	if err != nil {
		BadRequest(c, "invalid delivery_date, expected YYYY-MM-DD")
		return
	}

	fh, err := c.FormFile("delivery_note")
	if err != nil {
		BadRequest(c, "a delivery note file is required")
		return
	}
	up, err := uploadFromFile(fh)
	if err != nil {
		BadRequest(c, "unable to read delivery note")
		return
	}
	defer up.Reader.(multipart.File).Close()

	// Treat a date-only value as end of day so same-day deliveries pass
	// the approval-date check.
	in := service.MarkDeliveredInput{
		DeliveryDate: deliveryDate.Add(24*time.Hour - time.Second),
		Note:         up,
	}
	quote, err := h.svc.MarkDelivered(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quote)
}

// Attachment downloads the stored bid attachment
// GET /api/quotations/:id/attachment
func (h *QuotationHandler) Attachment(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	rc, name, err := h.svc.Attachment(c.Request.Context(), GetActor(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(200, -1, "application/octet-stream", rc, nil)
}

// DeliveryNote downloads the stored delivery note
// GET /api/quotations/:id/delivery-note
func (h *QuotationHandler) DeliveryNote(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	rc, name, err := h.svc.DeliveryNote(c.Request.Context(), GetActor(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(200, -1, "application/octet-stream", rc, nil)
}
