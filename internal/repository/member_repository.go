package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorhub/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrDuplicateKey   = errors.New("duplicate unique field")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ==============================================
// MEMBER REPOSITORY
// ==============================================

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, membership_id, name, email, phone, password_hash, role,
	       is_verified, member_status, created_at, updated_at, last_login_at`

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID,
		&m.MembershipID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.PasswordHash,
		&m.Role,
		&m.IsVerified,
		&m.MemberStatus,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ==============================================
// CREATE MEMBER
// ==============================================

// CreateMember creates a new member in pending-verification state
func (r *MemberRepository) CreateMember(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (membership_id, name, email, phone, password_hash, role, is_verified, member_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		member.MembershipID,
		member.Name,
		member.Email,
		member.Phone,
		member.PasswordHash,
		member.Role,
		member.IsVerified,
		member.MemberStatus,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// ==============================================
// GET MEMBER (Read Operations)
// ==============================================

// GetMemberByID retrieves a member by ID
func (r *MemberRepository) GetMemberByID(ctx context.Context, memberID int64) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := scanMember(r.db.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetMemberByEmail retrieves a member by email (stored lowercase)
func (r *MemberRepository) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`

	member, err := scanMember(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}
	return member, nil
}

// GetMemberByMembershipID retrieves a member by their membership ID
func (r *MemberRepository) GetMemberByMembershipID(ctx context.Context, membershipID string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE membership_id = $1`

	member, err := scanMember(r.db.QueryRow(ctx, query, membershipID))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get member by membership ID: %w", err)
	}
	return member, nil
}

// ==============================================
// UPDATE MEMBER
// ==============================================

// MarkVerified flips the member to the verified state. Both columns move
// together so the stored pair can never disagree.
func (r *MemberRepository) MarkVerified(ctx context.Context, memberID int64) error {
	query := `
		UPDATE members
		SET is_verified = true, member_status = $1, updated_at = now()
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, models.MemberStatusVerified, memberID)
	if err != nil {
		return fmt.Errorf("failed to mark member verified: %w", err)
	}

	return nil
}

// UpdatePassword updates member's password hash
func (r *MemberRepository) UpdatePassword(ctx context.Context, memberID int64, passwordHash string) error {
	query := `
		UPDATE members
		SET password_hash = $1, updated_at = now()
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, passwordHash, memberID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *MemberRepository) UpdateLastLogin(ctx context.Context, memberID int64) error {
	query := `
		UPDATE members
		SET last_login_at = now(), updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, memberID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
