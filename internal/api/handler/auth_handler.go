package handler

import (
	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	"pigeon/internal/middleware"
	"pigeon/internal/models"
	authsvc "pigeon/internal/service/auth"
)

type AuthHandler struct {
	svc *authsvc.Service
}

func NewAuthHandler(svc *authsvc.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type otpRequest struct {
	PhoneNumber string `json:"phone_number"`
	Purpose     string `json:"purpose"`
}

type otpVerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	Name        string `json:"name"`
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	ticket, err := h.svc.RequestOTP(c.Request.Context(), req.PhoneNumber, models.OTPPurpose(req.Purpose))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "verification code sent", ticket)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	login, err := h.svc.VerifyOTP(c.Request.Context(), authsvc.VerifyInput{
		Phone:     req.PhoneNumber,
		Code:      req.Code,
		Name:      req.Name,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	message := "logged in"
	if login.Created {
		message = "account created"
	}
	response.OK(c, message, login)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.Principal(c)); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "logged out", nil)
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	out, err := h.svc.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "logged in", out)
}
