package handler

import (
	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	"pigeon/internal/apperr"
	"pigeon/internal/middleware"
	"pigeon/internal/models"
	usersvc "pigeon/internal/service/user"
)

type UserHandler struct {
	users *usersvc.Service
}

func NewUserHandler(users *usersvc.Service) *UserHandler {
	return &UserHandler{users: users}
}

type verifyRequest struct {
	Verified *bool `json:"verified"`
}

type disableRequest struct {
	Disabled *bool `json:"disabled"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// List 管理端：分页 + 按姓名/手机号搜索
func (h *UserHandler) List(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.users.List(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "users fetched", list)
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), callerID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "user fetched", u)
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "user fetched", u)
}

// Update 本人或管理员可修改
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if p := middleware.Principal(c); !p.IsAdmin() && p.ID != id {
		response.Fail(c, apperr.Forbidden("cannot update another user"))
		return
	}
	var req usersvc.Update
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	u, err := h.users.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "user updated", u)
}

func (h *UserHandler) SetVerified(c *gin.Context) {
	var req verifyRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.Verified == nil {
		response.Fail(c, apperr.InvalidArg("verified is required"))
		return
	}
	u, err := h.users.SetVerified(c.Request.Context(), c.Param("id"), *req.Verified)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "verification updated", u)
}

func (h *UserHandler) SetDisabled(c *gin.Context) {
	var req disableRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.Disabled == nil {
		response.Fail(c, apperr.InvalidArg("disabled is required"))
		return
	}
	u, err := h.users.SetDisabled(c.Request.Context(), c.Param("id"), *req.Disabled)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "account status updated", u)
}

func (h *UserHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	u, err := h.users.SetRole(c.Request.Context(), c.Param("id"), models.Role(req.Role))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "role updated", u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "user deleted", nil)
}

func (h *UserHandler) Report(c *gin.Context) {
	var req reasonRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	r, err := h.users.Report(c.Request.Context(), callerID(c), c.Param("id"), req.Reason)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "report submitted", r)
}

func (h *UserHandler) Block(c *gin.Context) {
	created, err := h.users.Block(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "user blocked"
	if !created {
		msg = "user already blocked"
	}
	response.OK(c, msg, gin.H{"blocked": true})
}

func (h *UserHandler) Unblock(c *gin.Context) {
	removed, err := h.users.Unblock(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "user unblocked"
	if !removed {
		msg = "user was not blocked"
	}
	response.OK(c, msg, gin.H{"removed": removed})
}

func (h *UserHandler) ListBlocked(c *gin.Context) {
	list, err := h.users.ListBlocked(c.Request.Context(), callerID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "blocked users fetched", list)
}
