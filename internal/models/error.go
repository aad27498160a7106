package models

import (
	"errors"
	"fmt"
)

// ==============================================
// CUSTOM ERROR TYPES
// ==============================================

// AppError represents a structured application error
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error (for logging)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MismatchError is returned for a wrong OTP code; it carries how many
// attempts are left before the record is discarded.
type MismatchError struct {
	Remaining int32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("incorrect code, %d attempt(s) remaining", e.Remaining)
}

// ==============================================
// PREDEFINED ERRORS
// ==============================================

// Member/Auth Errors
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMemberSuspended    = errors.New("member account is suspended")
	ErrMemberNotVerified  = errors.New("member email not verified")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrMembershipIDExists = errors.New("membership ID already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet the minimum length")
)

// OTP Errors
var (
	ErrOTPNotFound       = errors.New("no verification code found")
	ErrOTPExpired        = errors.New("verification code has expired")
	ErrOTPMaxAttempts    = errors.New("maximum verification attempts exceeded")
	ErrOTPNotVerified    = errors.New("verification code has not been verified")
	ErrOTPResendCooldown = errors.New("please wait before requesting another code")
	ErrOTPResendLimit    = errors.New("too many code requests, please try again later")
)

// Donation Errors
var (
	ErrDonationNotFound = errors.New("donation not found")
	ErrInvalidAmount    = errors.New("invalid donation amount")
	ErrInvalidPurpose   = errors.New("invalid donation purpose")
)

// Infrastructure Errors
var (
	ErrDependencyFailure = errors.New("a backing service is unavailable")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// ==============================================
// ERROR KIND CODES (for API responses)
// ==============================================
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeExpired           = "EXPIRED"
	ErrCodeTooManyAttempts   = "TOO_MANY_ATTEMPTS"
	ErrCodeMismatch          = "CODE_MISMATCH"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeSuspended         = "SUSPENDED"
	ErrCodeDependencyFailure = "DEPENDENCY_FAILURE"

	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeNotVerified        = "NOT_VERIFIED"
	ErrCodeResendCooldown     = "RESEND_COOLDOWN"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// IsNotFoundError checks if error is a "not found" error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrOTPNotFound) ||
		errors.Is(err, ErrDonationNotFound)
}

// IsConflictError checks if error is a duplicate-unique-field error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists) ||
		errors.Is(err, ErrMembershipIDExists)
}

// IsValidationError checks if error is validation-related
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPurpose)
}
