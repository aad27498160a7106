package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"donorhub/internal/api/dto"
	"donorhub/internal/models"
)

// ==============================================
// RESPONSE HELPERS
// ==============================================

// respondSuccess sends a successful JSON response
func respondSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// respondBadRequest rejects malformed input before any service call
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   models.ErrCodeInvalidInput,
		Message: "Invalid request: " + err.Error(),
	})
}

// respondServiceError maps service errors to HTTP status codes. Every
// response carries a stable kind code; raw persistence errors never
// reach the client.
func respondServiceError(c *gin.Context, err error) {
	var mismatch *models.MismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   models.ErrCodeMismatch,
			Message: mismatch.Error(),
			Details: map[string]string{"remaining_attempts": strconv.Itoa(int(mismatch.Remaining))},
		})
		return
	}

	statusCode, kind, message := mapServiceError(err)
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// mapServiceError maps error kinds to HTTP status codes and client-safe messages
func mapServiceError(err error) (int, string, string) {
	switch {
	// Validation errors (400 Bad Request)
	case errors.Is(err, models.ErrInvalidEmail),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidPurpose):
		return http.StatusBadRequest, models.ErrCodeInvalidInput, err.Error()
	case errors.Is(err, models.ErrWeakPassword):
		return http.StatusBadRequest, models.ErrCodeInvalidInput, "Password does not meet the minimum length"

	// OTP lifecycle errors (400 Bad Request with specific kinds)
	case errors.Is(err, models.ErrOTPExpired):
		return http.StatusBadRequest, models.ErrCodeExpired, "Code has expired, please request a new one"
	case errors.Is(err, models.ErrOTPMaxAttempts):
		return http.StatusBadRequest, models.ErrCodeTooManyAttempts, "Too many attempts, please request a new code"
	case errors.Is(err, models.ErrOTPNotVerified):
		return http.StatusBadRequest, models.ErrCodeInvalidInput, "Code has not been verified"
	case errors.Is(err, models.ErrOTPResendCooldown):
		return http.StatusTooManyRequests, models.ErrCodeResendCooldown, "Please wait before requesting another code"
	case errors.Is(err, models.ErrOTPResendLimit):
		return http.StatusTooManyRequests, models.ErrCodeResendCooldown, "Too many code requests, please try again later"

	// Not found errors (404 Not Found)
	case errors.Is(err, models.ErrOTPNotFound):
		return http.StatusNotFound, models.ErrCodeNotFound, "No verification code found, please request a new one"
	case errors.Is(err, models.ErrMemberNotFound):
		return http.StatusNotFound, models.ErrCodeNotFound, "Member not found"
	case errors.Is(err, models.ErrDonationNotFound):
		return http.StatusNotFound, models.ErrCodeNotFound, "Donation not found"

	// Conflicts (409)
	case errors.Is(err, models.ErrEmailAlreadyExists),
		errors.Is(err, models.ErrMembershipIDExists):
		return http.StatusConflict, models.ErrCodeConflict, err.Error()

	// Auth (401/403)
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, models.ErrCodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, models.ErrMemberNotVerified):
		return http.StatusForbidden, models.ErrCodeNotVerified, "Please verify your email before logging in"
	case errors.Is(err, models.ErrMemberSuspended):
		return http.StatusForbidden, models.ErrCodeSuspended, "Account is suspended, please contact an administrator"

	// Dependencies (503)
	case errors.Is(err, models.ErrDependencyFailure):
		return http.StatusServiceUnavailable, models.ErrCodeDependencyFailure, "A backing service is unavailable, please try again"

	// Default (500 Internal Server Error)
	default:
		return http.StatusInternalServerError, models.ErrCodeInternalError, "Internal server error"
	}
}
