package handler

import (
	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	adminsvc "pigeon/internal/service/admin"
	settingsvc "pigeon/internal/service/settings"
)

type AdminHandler struct {
	admin    *adminsvc.Service
	settings *settingsvc.Service
}

func NewAdminHandler(admin *adminsvc.Service, settings *settingsvc.Service) *AdminHandler {
	return &AdminHandler{admin: admin, settings: settings}
}

// GetSettings 公开读取全局开关
func (h *AdminHandler) GetSettings(c *gin.Context) {
	st, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "settings fetched", st)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req settingsvc.Patch
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	st, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "settings updated", st)
}

func (h *AdminHandler) UserReports(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.admin.UserReports(c.Request.Context(), page, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "reports fetched", list)
}

func (h *AdminHandler) GroupReports(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.admin.GroupReports(c.Request.Context(), page, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "reports fetched", list)
}

func (h *AdminHandler) SmsLogs(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	list, err := h.admin.SmsLogs(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "sms logs fetched", list)
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req adminsvc.NewAdmin
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	a, err := h.admin.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "admin created", a)
}
