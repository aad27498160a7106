package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorhub/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrDonationNotFound = errors.New("donation not found")
)

// ==============================================
// DONATION REPOSITORY
// ==============================================

type DonationRepository struct {
	db *pgxpool.Pool
}

func NewDonationRepository(db *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{db: db}
}

// ==============================================
// CREATE DONATION
// ==============================================

func (r *DonationRepository) CreateDonation(ctx context.Context, d *models.Donation) error {
	query := `
		INSERT INTO donations (reference, donor_name, donor_email, member_id, amount, currency, purpose, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		d.Reference,
		d.DonorName,
		d.DonorEmail,
		d.MemberID,
		d.Amount,
		d.Currency,
		d.Purpose,
		d.Message,
	).Scan(&d.ID, &d.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return nil
}

// ==============================================
// ADMIN LISTING
// ==============================================

// ListDonations returns donations newest first, optionally filtered by
// purpose (empty string means all purposes)
func (r *DonationRepository) ListDonations(ctx context.Context, purpose string, limit, offset int) ([]models.Donation, error) {
	query := `
		SELECT id, reference, donor_name, donor_email, member_id, amount, currency, purpose, message, created_at
		FROM donations
		WHERE ($1 = '' OR purpose = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, purpose, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	var donations []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(
			&d.ID,
			&d.Reference,
			&d.DonorName,
			&d.DonorEmail,
			&d.MemberID,
			&d.Amount,
			&d.Currency,
			&d.Purpose,
			&d.Message,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return donations, nil
}

func (r *DonationRepository) CountDonations(ctx context.Context, purpose string) (int64, error) {
	query := `SELECT COUNT(*) FROM donations WHERE ($1 = '' OR purpose = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, purpose).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count donations: %w", err)
	}

	return count, nil
}

// ==============================================
// ADMIN STATISTICS
// ==============================================

// GetStats aggregates count and amount per purpose in a single query
func (r *DonationRepository) GetStats(ctx context.Context) (*models.DonationStats, error) {
	query := `
		SELECT purpose, COUNT(*), COALESCE(SUM(amount), 0)
		FROM donations
		GROUP BY purpose
		ORDER BY purpose
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query donation stats: %w", err)
	}
	defer rows.Close()

	stats := &models.DonationStats{}
	for rows.Next() {
		var ps models.PurposeStat
		if err := rows.Scan(&ps.Purpose, &ps.Count, &ps.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan donation stats: %w", err)
		}
		stats.ByPurpose = append(stats.ByPurpose, ps)
		stats.TotalCount += ps.Count
		stats.TotalAmount += ps.Amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donation stats: %w", err)
	}

	return stats, nil
}

// ==============================================
// MISC
// ==============================================

// GetDonationByReference looks up a donation by its public receipt reference
func (r *DonationRepository) GetDonationByReference(ctx context.Context, reference string) (*models.Donation, error) {
	query := `
		SELECT id, reference, donor_name, donor_email, member_id, amount, currency, purpose, message, created_at
		FROM donations
		WHERE reference = $1
	`

	var d models.Donation
	err := r.db.QueryRow(ctx, query, reference).Scan(
		&d.ID,
		&d.Reference,
		&d.DonorName,
		&d.DonorEmail,
		&d.MemberID,
		&d.Amount,
		&d.Currency,
		&d.Purpose,
		&d.Message,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to get donation by reference: %w", err)
	}

	return &d, nil
}
