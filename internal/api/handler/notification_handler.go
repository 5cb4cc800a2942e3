package handler

import (
	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	notifysvc "pigeon/internal/service/notify"
)

type NotificationHandler struct {
	tokens *notifysvc.Service
}

func NewNotificationHandler(tokens *notifysvc.Service) *NotificationHandler {
	return &NotificationHandler{tokens: tokens}
}

type tokenRequest struct {
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
}

func (h *NotificationHandler) Register(c *gin.Context) {
	var req tokenRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	t, err := h.tokens.Register(c.Request.Context(), callerID(c), req.Token, req.DeviceID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "token registered", t)
}

func (h *NotificationHandler) Unregister(c *gin.Context) {
	var req tokenRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	removed, err := h.tokens.Unregister(c.Request.Context(), callerID(c), req.Token)
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "token removed"
	if !removed {
		msg = "token was not registered"
	}
	response.OK(c, msg, gin.H{"removed": removed})
}

func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.tokens.List(c.Request.Context(), callerID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "tokens fetched", list)
}
