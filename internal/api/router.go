package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"pigeon/internal/api/handler"
	"pigeon/internal/metrics"
	"pigeon/internal/middleware"
	adminsvc "pigeon/internal/service/admin"
	authsvc "pigeon/internal/service/auth"
	filesvc "pigeon/internal/service/file"
	groupsvc "pigeon/internal/service/group"
	messagesvc "pigeon/internal/service/message"
	notifysvc "pigeon/internal/service/notify"
	settingsvc "pigeon/internal/service/settings"
	usersvc "pigeon/internal/service/user"
)

// Services 路由依赖的全部服务
type Services struct {
	Auth     *authsvc.Service
	Users    *usersvc.Service
	Groups   *groupsvc.Service
	Messages *messagesvc.Service
	Tokens   *notifysvc.Service
	Settings *settingsvc.Service
	Admin    *adminsvc.Service
	Media    *filesvc.Service
}

type Options struct {
	Log                *zap.Logger
	MaintenanceMessage string
	Metrics            bool
}

// SetupRouter 初始化 Gin 路由
func SetupRouter(s Services, opts Options) *gin.Engine {
	// 部分更新的请求体不接受未知字段
	binding.EnableDecoderDisallowUnknownFields = true

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(), middleware.Metrics())

	r.GET("/health", handler.Health)
	if opts.Metrics {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	authn := middleware.Auth(s.Auth)
	maintenance := middleware.Maintenance(s.Settings, opts.MaintenanceMessage)
	asUser := []gin.HandlerFunc{authn, middleware.RequireUser(), maintenance}
	asAdmin := []gin.HandlerFunc{authn, middleware.RequireAdmin()}

	api := r.Group("/api")

	authH := handler.NewAuthHandler(s.Auth)
	authGroup := api.Group("/auth", maintenance)
	authGroup.POST("/otp/request", authH.RequestOTP)
	authGroup.POST("/otp/verify", authH.VerifyOTP)
	api.POST("/auth/logout", authn, authH.Logout)

	adminH := handler.NewAdminHandler(s.Admin, s.Settings)
	api.GET("/settings", adminH.GetSettings)

	userH := handler.NewUserHandler(s.Users)
	users := api.Group("/users", authn)
	users.GET("", middleware.RequireAdmin(), userH.List)
	users.GET("/me", middleware.RequireUser(), maintenance, userH.Me)
	users.GET("/me/blocked", middleware.RequireUser(), maintenance, userH.ListBlocked)
	users.GET("/:id", maintenance, userH.Get)
	users.PUT("/:id", maintenance, userH.Update)
	users.PATCH("/:id/verify", middleware.RequireAdmin(), userH.SetVerified)
	users.PATCH("/:id/disable", middleware.RequireAdmin(), userH.SetDisabled)
	users.PATCH("/:id/role", middleware.RequireAdmin(), userH.SetRole)
	users.DELETE("/:id", middleware.RequireAdmin(), userH.Delete)
	users.POST("/:id/report", middleware.RequireUser(), maintenance, userH.Report)
	users.POST("/:id/block", middleware.RequireUser(), maintenance, userH.Block)
	users.DELETE("/:id/block", middleware.RequireUser(), maintenance, userH.Unblock)

	groupH := handler.NewGroupHandler(s.Groups)
	groups := api.Group("/groups", authn, maintenance)
	groups.POST("", middleware.RequireUser(), groupH.Create)
	groups.GET("/mine", middleware.RequireUser(), groupH.ListMine)
	groups.GET("/:id", groupH.Get)
	groups.PUT("/:id", groupH.Update)
	groups.DELETE("/:id", groupH.Delete)
	groups.GET("/:id/members", groupH.ListMembers)
	groups.POST("/:id/members", groupH.AddMember)
	groups.DELETE("/:id/members/:userId", groupH.RemoveMember)
	groups.PATCH("/:id/members/:userId/admin", groupH.SetAdmin)
	groups.POST("/:id/report", middleware.RequireUser(), groupH.Report)

	messageH := handler.NewMessageHandler(s.Messages)
	messages := api.Group("/messages", asUser...)
	messages.POST("", messageH.Send)
	messages.GET("/inbox", messageH.Inbox)
	messages.GET("/unread-count", messageH.UnreadCount)
	messages.PATCH("/:id/read", messageH.MarkRead)

	tokenH := handler.NewNotificationHandler(s.Tokens)
	tokens := api.Group("/notifications/tokens", asUser...)
	tokens.GET("", tokenH.List)
	tokens.POST("", tokenH.Register)
	tokens.DELETE("", tokenH.Unregister)

	mediaH := handler.NewMediaHandler(s.Media)
	media := api.Group("/media", asUser...)
	media.POST("", mediaH.Upload)
	media.GET("/:id/url", mediaH.URL)

	api.POST("/admin/login", authH.AdminLogin)
	admin := api.Group("/admin", asAdmin...)
	admin.PUT("/settings", adminH.UpdateSettings)
	admin.GET("/groups", groupH.List)
	admin.PATCH("/groups/:id/disable", groupH.SetDisabled)
	admin.GET("/reports/users", adminH.UserReports)
	admin.GET("/reports/groups", adminH.GroupReports)
	admin.GET("/sms-logs", adminH.SmsLogs)
	admin.POST("/admins", adminH.CreateAdmin)

	return r
}
