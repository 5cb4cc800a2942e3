package handler

import (
	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	messagesvc "pigeon/internal/service/message"
)

type MessageHandler struct {
	messages *messagesvc.Service
}

func NewMessageHandler(messages *messagesvc.Service) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req messagesvc.SendInput
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	sent, err := h.messages.Send(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "message sent", sent)
}

func (h *MessageHandler) Inbox(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.messages.Inbox(c.Request.Context(), callerID(c), page, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "inbox fetched", list)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.messages.MarkRead(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "message marked as read", nil)
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	n, err := h.messages.UnreadCount(c.Request.Context(), callerID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "unread count fetched", gin.H{"unread": n})
}
