package handler

import (
	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	"pigeon/internal/apperr"
	groupsvc "pigeon/internal/service/group"
)

type GroupHandler struct {
	groups *groupsvc.Service
}

func NewGroupHandler(groups *groupsvc.Service) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req groupsvc.CreateInput
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	g, err := h.groups.Create(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "group created", g)
}

func (h *GroupHandler) Get(c *gin.Context) {
	g, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "group fetched", g)
}

func (h *GroupHandler) ListMine(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.groups.ListMine(c.Request.Context(), callerID(c), page, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "groups fetched", list)
}

// List 管理端
func (h *GroupHandler) List(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.groups.List(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "groups fetched", list)
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groups.ListMembers(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "members fetched", members)
}

func (h *GroupHandler) Update(c *gin.Context) {
	var req groupsvc.Update
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	g, err := h.groups.Update(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "group updated", g)
}

func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "group deleted", nil)
}

func (h *GroupHandler) SetDisabled(c *gin.Context) {
	var req disableRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.Disabled == nil {
		response.Fail(c, apperr.InvalidArg("disabled is required"))
		return
	}
	g, err := h.groups.SetDisabled(c.Request.Context(), c.Param("id"), *req.Disabled)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "group status updated", g)
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.UserID == "" {
		response.Fail(c, apperr.InvalidArg("user_id is required"))
		return
	}
	m, err := h.groups.AddMember(c.Request.Context(), actor(c), c.Param("id"), req.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "member added", m)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	removed, err := h.groups.RemoveMember(c.Request.Context(), actor(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "member removed"
	if !removed {
		msg = "user was not a member"
	}
	response.OK(c, msg, gin.H{"removed": removed})
}

func (h *GroupHandler) SetAdmin(c *gin.Context) {
	var req setAdminRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if req.IsAdmin == nil {
		response.Fail(c, apperr.InvalidArg("is_admin is required"))
		return
	}
	if err := h.groups.SetAdmin(c.Request.Context(), actor(c), c.Param("id"), c.Param("userId"), *req.IsAdmin); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "member role updated", gin.H{"is_admin": *req.IsAdmin})
}

func (h *GroupHandler) Report(c *gin.Context) {
	var req reasonRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	r, err := h.groups.Report(c.Request.Context(), callerID(c), c.Param("id"), req.Reason)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "report submitted", r)
}
