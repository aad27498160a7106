package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"donorhub/internal/api/dto"
)

// ==============================================
// SERVICE INTERFACE (for testing)
// ==============================================

type MemberService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyRegistration(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, req dto.ResendOTPRequest) (*dto.ResendOTPResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error)
	VerifyReset(ctx context.Context, req dto.VerifyResetRequest) (*dto.VerifyResetResponse, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error)
	ResolveAction(ctx context.Context, email string) (*dto.NextActionResponse, error)
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type AuthHandler struct {
	service MemberService
}

func NewAuthHandler(service MemberService) *AuthHandler {
	return &AuthHandler{service: service}
}

// ==============================================
// ENDPOINTS
// ==============================================

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, resp)
}

// Verify handles POST /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req dto.VerifyOTPRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.VerifyRegistration(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ResendOTP handles POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.ResendOTP(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// VerifyReset handles POST /api/v1/auth/verify-reset
func (h *AuthHandler) VerifyReset(c *gin.Context) {
	var req dto.VerifyResetRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.VerifyReset(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// NextAction handles GET /api/v1/auth/next-action?email=...
func (h *AuthHandler) NextAction(c *gin.Context) {
	var req dto.NextActionRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.ResolveAction(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/auth")
	{
		v1.POST("/register", h.Register)
		v1.POST("/verify", h.Verify)
		v1.POST("/resend-otp", h.ResendOTP)
		v1.POST("/login", h.Login)
		v1.POST("/forgot-password", h.ForgotPassword)
		v1.POST("/verify-reset", h.VerifyReset)
		v1.POST("/reset-password", h.ResetPassword)
		v1.GET("/next-action", h.NextAction)
	}
}
