package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"donorhub/internal/auth"
	"donorhub/internal/logger"
	"donorhub/internal/models"
	"donorhub/internal/repository"
)

// ==============================================
// STORE INTERFACE (for testing against a fake)
// ==============================================

type OTPStore interface {
	Create(ctx context.Context, otp *models.OTPCode) error
	DeleteByKey(ctx context.Context, email, purpose string) error
	GetLatest(ctx context.Context, email, purpose string) (*models.OTPCode, error)
	GetByID(ctx context.Context, id string) (*models.OTPCode, error)
	IncrementAttempts(ctx context.Context, id string) (int32, error)
	MarkUsed(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ==============================================
// OTP SERVICE
// ==============================================

type OTPService struct {
	store       OTPStore
	expiry      time.Duration
	maxAttempts int32
}

func NewOTPService(store OTPStore, expiry time.Duration, maxAttempts int) *OTPService {
	return &OTPService{
		store:       store,
		expiry:      expiry,
		maxAttempts: int32(maxAttempts),
	}
}

// VerifyResult is returned on a successful code match. Token is only set
// for the password-reset purpose, where the record survives as a
// redeemable proof of verification.
type VerifyResult struct {
	Token string
}

// ==============================================
// ISSUE
// ==============================================

// Issue replaces any existing code for (email, purpose) with a fresh one.
// After a successful return exactly one live record exists for the key.
func (s *OTPService) Issue(ctx context.Context, email, purpose string) (*models.OTPCode, error) {
	return s.IssueWithTTL(ctx, email, purpose, s.expiry)
}

// IssueWithTTL is Issue with an explicit expiry window
func (s *OTPService) IssueWithTTL(ctx context.Context, email, purpose string, ttl time.Duration) (*models.OTPCode, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, models.ErrInvalidEmail
	}
	if !models.IsValidOTPPurpose(purpose) {
		return nil, fmt.Errorf("invalid OTP purpose %q", purpose)
	}

	if err := s.store.DeleteByKey(ctx, email, purpose); err != nil {
		return nil, fmt.Errorf("failed to clear previous OTPs: %w", err)
	}

	otp := &models.OTPCode{
		ID:        uuid.NewString(),
		Email:     email,
		Purpose:   purpose,
		Code:      auth.GenerateOTP(),
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.store.Create(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to create OTP: %w", err)
	}

	return otp, nil
}

// ==============================================
// VERIFY
// ==============================================

// Verify checks a submitted code. State checks run in a fixed order:
// missing record, expiry, attempt cap, code match. A wrong code burns an
// attempt; expired and exhausted records are deleted on sight.
func (s *OTPService) Verify(ctx context.Context, email, purpose, submittedCode string) (*VerifyResult, error) {
	email = NormalizeEmail(email)

	otp, err := s.store.GetLatest(ctx, email, purpose)
	if err != nil {
		if isStoreNotFound(err) {
			return nil, models.ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to load OTP: %w", err)
	}

	if otp.Used {
		return nil, models.ErrOTPNotFound
	}

	if otp.IsExpired() {
		if err := s.store.Delete(ctx, otp.ID); err != nil {
			logger.Get().Warn("failed to delete expired OTP", zap.String("email", email), zap.Error(err))
		}
		return nil, models.ErrOTPExpired
	}

	if otp.Attempts >= s.maxAttempts {
		if err := s.store.Delete(ctx, otp.ID); err != nil {
			logger.Get().Warn("failed to delete exhausted OTP", zap.String("email", email), zap.Error(err))
		}
		return nil, models.ErrOTPMaxAttempts
	}

	if submittedCode != otp.Code {
		attempts, err := s.store.IncrementAttempts(ctx, otp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record OTP attempt: %w", err)
		}
		if attempts >= s.maxAttempts {
			if err := s.store.Delete(ctx, otp.ID); err != nil {
				logger.Get().Warn("failed to delete exhausted OTP", zap.String("email", email), zap.Error(err))
			}
			return nil, models.ErrOTPMaxAttempts
		}
		return nil, &models.MismatchError{Remaining: s.maxAttempts - attempts}
	}

	switch purpose {
	case models.OTPPurposePasswordReset:
		// The record stays behind as a redeemable token until the reset
		// completes or the record expires.
		if err := s.store.MarkVerified(ctx, otp.ID, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to mark OTP verified: %w", err)
		}
		return &VerifyResult{Token: otp.ID}, nil

	default:
		// Registration codes are single-use with no follow-up action.
		if err := s.store.MarkUsed(ctx, otp.ID); err != nil {
			return nil, fmt.Errorf("failed to mark OTP used: %w", err)
		}
		if err := s.store.Delete(ctx, otp.ID); err != nil {
			logger.Get().Warn("failed to delete consumed OTP", zap.String("email", email), zap.Error(err))
		}
		return &VerifyResult{}, nil
	}
}

// ==============================================
// REDEEM (password-reset finalization)
// ==============================================

// RedeemToken resolves a reset token back to its verified record. Expiry
// is re-checked even though the code already verified: verification and
// redemption are separate requests, and a stale token earns no credit.
func (s *OTPService) RedeemToken(ctx context.Context, email, token string) (*models.OTPCode, error) {
	email = NormalizeEmail(email)

	otp, err := s.store.GetByID(ctx, token)
	if err != nil {
		if isStoreNotFound(err) {
			return nil, models.ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to load OTP by token: %w", err)
	}

	if otp.Purpose != models.OTPPurposePasswordReset || !strings.EqualFold(otp.Email, email) {
		return nil, models.ErrOTPNotFound
	}

	if !otp.Verified {
		return nil, models.ErrOTPNotVerified
	}

	if otp.IsExpired() {
		if err := s.store.Delete(ctx, otp.ID); err != nil {
			logger.Get().Warn("failed to delete expired reset token", zap.String("email", email), zap.Error(err))
		}
		return nil, models.ErrOTPExpired
	}

	return otp, nil
}

// Consume deletes a redeemed record. Called after the sensitive mutation
// it authorized has been committed, so the token is one-shot.
func (s *OTPService) Consume(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to consume OTP: %w", err)
	}
	return nil
}

// ==============================================
// SWEEP
// ==============================================

// SweepExpired removes records past expiry; the read paths also check
// expiry, so the sweep is housekeeping, not correctness.
func (s *OTPService) SweepExpired(ctx context.Context) {
	deleted, err := s.store.DeleteExpired(ctx)
	if err != nil {
		logger.Get().Error("otp expiry sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Get().Info("otp expiry sweep", zap.Int64("deleted", deleted))
	}
}

// ==============================================
// HELPERS
// ==============================================

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isStoreNotFound(err error) bool {
	return errors.Is(err, repository.ErrOTPNotFound)
}
