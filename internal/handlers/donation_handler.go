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

type DonationService interface {
	Submit(ctx context.Context, req dto.SubmitDonationRequest) (*dto.SubmitDonationResponse, error)
	List(ctx context.Context, req dto.ListDonationsRequest) (*dto.ListDonationsResponse, error)
	Stats(ctx context.Context) (*dto.DonationStatsResponse, error)
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type DonationHandler struct {
	service   DonationService
	jwtSecret string
}

func NewDonationHandler(service DonationService, jwtSecret string) *DonationHandler {
	return &DonationHandler{service: service, jwtSecret: jwtSecret}
}

// ==============================================
// ENDPOINTS
// ==============================================

// Submit handles POST /api/v1/donations (public)
func (h *DonationHandler) Submit(c *gin.Context) {
	var req dto.SubmitDonationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, resp)
}

// List handles GET /api/v1/admin/donations (admin only)
func (h *DonationHandler) List(c *gin.Context) {
	var req dto.ListDonationsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// Stats handles GET /api/v1/admin/donations/stats (admin only)
func (h *DonationHandler) Stats(c *gin.Context) {
	resp, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resp)
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *DonationHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/donations", h.Submit)

		admin := v1.Group("/admin", AuthRequired(h.jwtSecret), AdminOnly())
		{
			admin.GET("/donations", h.List)
			admin.GET("/donations/stats", h.Stats)
		}
	}
}
