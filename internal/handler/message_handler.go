package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
)

// MessageHandler internal mailbox endpoints
type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Send
// POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var in service.SendInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	msg, err := h.svc.Send(c.Request.Context(), GetActor(c), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, msg)
}

// Reply threads under the parent message
// POST /api/messages/:id/reply
func (h *MessageHandler) Reply(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var in service.ReplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	msg, err := h.svc.Reply(c.Request.Context(), GetActor(c), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, msg)
}

// Received inbox
// GET /api/messages/received
func (h *MessageHandler) Received(c *gin.Context) {
	items, err := h.svc.Received(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// Sent outbox
// GET /api/messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	items, err := h.svc.Sent(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// MarkRead
// POST /api/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), GetActor(c), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"read": id})
}

// Conversation both directions with another user
// GET /api/messages/conversation/:userId
func (h *MessageHandler) Conversation(c *gin.Context) {
	otherID, ok := ParamID(c, "userId")
	if !ok {
		return
	}
	items, err := h.svc.Conversation(c.Request.Context(), GetActor(c), otherID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}
