package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"donorhub/internal/api/dto"
	"donorhub/internal/logger"
	"donorhub/internal/models"
	"donorhub/internal/repository"
)

// ==============================================
// STORE INTERFACE (for testing)
// ==============================================

type DonationStore interface {
	CreateDonation(ctx context.Context, d *models.Donation) error
	ListDonations(ctx context.Context, purpose string, limit, offset int) ([]models.Donation, error)
	CountDonations(ctx context.Context, purpose string) (int64, error)
	GetStats(ctx context.Context) (*models.DonationStats, error)
}

type ReceiptSender interface {
	SendDonationReceipt(email, donorName, reference string, amount int64, currency string) error
}

// ==============================================
// DONATION SERVICE
// ==============================================

type DonationService struct {
	donationRepo DonationStore
	memberRepo   MemberStore
	receipts     ReceiptSender
}

func NewDonationService(donationRepo DonationStore, memberRepo MemberStore, receipts ReceiptSender) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		memberRepo:   memberRepo,
		receipts:     receipts,
	}
}

const defaultCurrency = "NGN"

// ==============================================
// PUBLIC INTAKE
// ==============================================

func (s *DonationService) Submit(ctx context.Context, req dto.SubmitDonationRequest) (*dto.SubmitDonationResponse, error) {
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !models.IsValidDonationPurpose(req.Purpose) {
		return nil, models.ErrInvalidPurpose
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	donation := &models.Donation{
		Reference:  uuid.NewString(),
		DonorName:  req.DonorName,
		DonorEmail: NormalizeEmail(req.DonorEmail),
		Amount:     req.Amount,
		Currency:   currency,
		Purpose:    req.Purpose,
	}
	if req.Message != "" {
		donation.Message = sql.NullString{String: req.Message, Valid: true}
	}

	// Link to a member when the donor email matches one; donations from
	// non-members are kept unlinked.
	member, err := s.memberRepo.GetMemberByEmail(ctx, donation.DonorEmail)
	if err != nil && !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to look up donor: %w", err)
	}
	if member != nil {
		donation.MemberID = sql.NullInt64{Int64: member.ID, Valid: true}
	}

	if err := s.donationRepo.CreateDonation(ctx, donation); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	// Best-effort acknowledgement after the donation is committed
	go func(d models.Donation) {
		if err := s.receipts.SendDonationReceipt(d.DonorEmail, d.DonorName, d.Reference, d.Amount, d.Currency); err != nil {
			logger.Get().Warn("failed to send donation receipt",
				zap.String("email", d.DonorEmail), zap.String("reference", d.Reference), zap.Error(err))
		}
	}(*donation)

	return &dto.SubmitDonationResponse{
		Donation: donationToDTO(donation),
		Message:  "Thank you for your donation!",
	}, nil
}

// ==============================================
// ADMIN LISTING
// ==============================================

func (s *DonationService) List(ctx context.Context, req dto.ListDonationsRequest) (*dto.ListDonationsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	donations, err := s.donationRepo.ListDonations(ctx, req.Purpose, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	total, err := s.donationRepo.CountDonations(ctx, req.Purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to count donations: %w", err)
	}

	items := make([]dto.DonationDTO, 0, len(donations))
	for i := range donations {
		items = append(items, *donationToDTO(&donations[i]))
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &dto.ListDonationsResponse{
		Donations: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// ==============================================
// ADMIN STATISTICS
// ==============================================

func (s *DonationService) Stats(ctx context.Context) (*dto.DonationStatsResponse, error) {
	stats, err := s.donationRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation stats: %w", err)
	}

	byPurpose := make([]dto.PurposeStatDTO, 0, len(stats.ByPurpose))
	for _, ps := range stats.ByPurpose {
		byPurpose = append(byPurpose, dto.PurposeStatDTO{
			Purpose: ps.Purpose,
			Count:   ps.Count,
			Amount:  ps.Amount,
		})
	}

	return &dto.DonationStatsResponse{
		TotalCount:  stats.TotalCount,
		TotalAmount: stats.TotalAmount,
		ByPurpose:   byPurpose,
	}, nil
}

// ==============================================
// HELPER FUNCTIONS
// ==============================================

func donationToDTO(d *models.Donation) *dto.DonationDTO {
	out := &dto.DonationDTO{
		ID:         d.ID,
		Reference:  d.Reference,
		DonorName:  d.DonorName,
		DonorEmail: d.DonorEmail,
		Amount:     d.Amount,
		Currency:   d.Currency,
		Purpose:    d.Purpose,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}

	if d.MemberID.Valid {
		id := d.MemberID.Int64
		out.MemberID = &id
	}
	if d.Message.Valid {
		out.Message = d.Message.String
	}

	return out
}
