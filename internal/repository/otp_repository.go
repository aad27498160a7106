package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorhub/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrOTPNotFound = errors.New("OTP not found")
)

// ==============================================
// OTP REPOSITORY
// ==============================================

type OTPRepository struct {
	db *pgxpool.Pool
}

func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{db: db}
}

const otpColumns = `id, email, purpose, code, expires_at, used, verified, verified_at, attempts, created_at`

func scanOTP(row pgx.Row) (*models.OTPCode, error) {
	var otp models.OTPCode
	err := row.Scan(
		&otp.ID,
		&otp.Email,
		&otp.Purpose,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.Used,
		&otp.Verified,
		&otp.VerifiedAt,
		&otp.Attempts,
		&otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	return &otp, nil
}

// ==============================================
// CREATE / REPLACE
// ==============================================

func (r *OTPRepository) Create(ctx context.Context, otp *models.OTPCode) error {
	query := `
		INSERT INTO otp_codes (id, email, purpose, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		otp.ID,
		otp.Email,
		otp.Purpose,
		otp.Code,
		otp.ExpiresAt,
	).Scan(&otp.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create OTP: %w", err)
	}

	return nil
}

// DeleteByKey removes every code for (email, purpose). Called before a
// fresh insert so at most one live record exists per key.
func (r *OTPRepository) DeleteByKey(ctx context.Context, email, purpose string) error {
	query := `DELETE FROM otp_codes WHERE email = $1 AND purpose = $2`

	_, err := r.db.Exec(ctx, query, email, purpose)
	if err != nil {
		return fmt.Errorf("failed to delete OTPs for key: %w", err)
	}

	return nil
}

// ==============================================
// GET
// ==============================================

// GetLatest returns the most recent code for (email, purpose)
func (r *OTPRepository) GetLatest(ctx context.Context, email, purpose string) (*models.OTPCode, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otp_codes
		WHERE email = $1 AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	otp, err := scanOTP(r.db.QueryRow(ctx, query, email, purpose))
	if err != nil {
		if errors.Is(err, ErrOTPNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get OTP: %w", err)
	}
	return otp, nil
}

// GetByID resolves a redemption token back to its record
func (r *OTPRepository) GetByID(ctx context.Context, id string) (*models.OTPCode, error) {
	query := `SELECT ` + otpColumns + ` FROM otp_codes WHERE id = $1`

	otp, err := scanOTP(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrOTPNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get OTP by id: %w", err)
	}
	return otp, nil
}

// ==============================================
// MUTATE
// ==============================================

// IncrementAttempts bumps the attempt counter and returns the new value.
// The increment is a single statement, so concurrent submissions cannot
// lose updates; callers compare the returned value against the cap.
func (r *OTPRepository) IncrementAttempts(ctx context.Context, id string) (int32, error) {
	query := `
		UPDATE otp_codes
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int32
	if err := r.db.QueryRow(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrOTPNotFound
		}
		return 0, fmt.Errorf("failed to increment OTP attempts: %w", err)
	}

	return attempts, nil
}

// MarkUsed flags a registration code as consumed
func (r *OTPRepository) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE otp_codes SET used = true WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark OTP used: %w", err)
	}

	return nil
}

// MarkVerified flags a password-reset code as verified, making its id
// redeemable as a reset token
func (r *OTPRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE otp_codes SET verified = true, verified_at = $1 WHERE id = $2`

	_, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark OTP verified: %w", err)
	}

	return nil
}

func (r *OTPRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM otp_codes WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete OTP: %w", err)
	}

	return nil
}

// ==============================================
// CLEANUP
// ==============================================

// DeleteExpired removes rows past their expiry; run from the sweep loop
func (r *OTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM otp_codes WHERE expires_at < now()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired OTPs: %w", err)
	}

	return tag.RowsAffected(), nil
}
