package dto

// ==============================================
// AUTH REQUEST DTOs
// ==============================================

// RegisterRequest - Member registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// VerifyOTPRequest - Registration email OTP verification
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResendOTPRequest
type ResendOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=registration password_reset"`
}

// LoginRequest - Email or membership ID + password
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // email or membership ID
	Password   string `json:"password" binding:"required"`
}

// ForgotPasswordRequest - Initiate password reset via email OTP
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyResetRequest - Prove control of the email; yields a reset token
type VerifyResetRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest - Redeem the reset token for a password change
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// NextActionRequest - Member status lookup
type NextActionRequest struct {
	Email string `form:"email" binding:"required,email"`
}

// ==============================================
// AUTH RESPONSE DTOs
// ==============================================

// RegisterResponse - Returns member info + instructions
type RegisterResponse struct {
	Member   *MemberDTO `json:"member"`
	Message  string     `json:"message"`
	NextStep string     `json:"next_step"` // "verify_otp"
}

// VerifyOTPResponse
type VerifyOTPResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	NextStep string `json:"next_step,omitempty"` // "login"
}

// ResendOTPResponse
type ResendOTPResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"` // seconds until OTP expires
}

// LoginResponse
type LoginResponse struct {
	Member      *MemberDTO `json:"member"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"` // seconds
	TokenType   string     `json:"token_type"` // "Bearer"
}

// ForgotPasswordResponse
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"` // Masked: "j***@example.com"
}

// VerifyResetResponse - Carries the one-shot reset token
type VerifyResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ResetPasswordResponse
type ResetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NextActionResponse - What the client should do next for this email
type NextActionResponse struct {
	Exists  bool   `json:"exists"`
	Action  string `json:"action"` // register | verify_otp | login | contact_admin
	Message string `json:"message"`
}

// ==============================================
// SUPPORTING DTOs
// ==============================================

// MemberDTO - Safe member representation
type MemberDTO struct {
	ID           int64   `json:"id"`
	MembershipID string  `json:"membership_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	IsVerified   bool    `json:"is_verified"`
	MemberStatus string  `json:"member_status"`
	CreatedAt    string  `json:"created_at"` // ISO 8601
}
