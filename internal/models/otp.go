package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ==============================================
// OTP CODE MODEL
// ==============================================

type OTPCode struct {
	ID         string             `db:"id"` // uuid, doubles as the reset redemption token
	Email      string             `db:"email"`
	Purpose    string             `db:"purpose"`
	Code       string             `db:"code"` // 6-digit OTP
	ExpiresAt  time.Time          `db:"expires_at"`
	Used       bool               `db:"used"`
	Verified   bool               `db:"verified"`
	VerifiedAt pgtype.Timestamptz `db:"verified_at"`
	Attempts   int32              `db:"attempts"`
	CreatedAt  time.Time          `db:"created_at"`
}

func (o *OTPCode) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsLive reports whether the code can still be submitted.
func (o *OTPCode) IsLive() bool {
	return !o.IsExpired() && !o.Used
}

// ==============================================
// OTP PURPOSE CONSTANTS
// ==============================================
const (
	OTPPurposeRegistration  = "registration"
	OTPPurposePasswordReset = "password_reset"
)

func IsValidOTPPurpose(p string) bool {
	return p == OTPPurposeRegistration || p == OTPPurposePasswordReset
}

// ==============================================
// OTP DEFAULTS (config seeds these, services read config)
// ==============================================
const (
	OTPLength                = 6
	OTPDefaultExpiryMinutes  = 10
	OTPMaxAttempts           = 3
	OTPDefaultResendCooldown = 60 * time.Second
	OTPDefaultHourlyCap      = 5
)
