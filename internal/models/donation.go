package models

import (
	"database/sql"
	"time"
)

// ==============================================
// DONATION MODEL
// ==============================================

// Donation represents a single donation record. Amounts are stored in
// minor units (kobo/cents) to avoid floating-point money.
type Donation struct {
	ID         int64          `db:"id"`
	Reference  string         `db:"reference"` // uuid, returned to the donor as receipt ref
	DonorName  string         `db:"donor_name"`
	DonorEmail string         `db:"donor_email"`
	MemberID   sql.NullInt64  `db:"member_id"` // set when the donor email matches a member
	Amount     int64          `db:"amount"`
	Currency   string         `db:"currency"`
	Purpose    string         `db:"purpose"`
	Message    sql.NullString `db:"message"`
	CreatedAt  time.Time      `db:"created_at"`
}

// ==============================================
// DONATION PURPOSE CONSTANTS
// ==============================================
const (
	DonationPurposeGeneral   = "general"
	DonationPurposeBuilding  = "building"
	DonationPurposeOutreach  = "outreach"
	DonationPurposeZakat     = "zakat"
	DonationPurposeEducation = "education"
)

func IsValidDonationPurpose(p string) bool {
	switch p {
	case DonationPurposeGeneral, DonationPurposeBuilding, DonationPurposeOutreach,
		DonationPurposeZakat, DonationPurposeEducation:
		return true
	}
	return false
}

// ==============================================
// ADMIN STATISTICS
// ==============================================

type PurposeStat struct {
	Purpose string `db:"purpose"`
	Count   int64  `db:"count"`
	Amount  int64  `db:"amount"`
}

type DonationStats struct {
	TotalCount  int64
	TotalAmount int64
	ByPurpose   []PurposeStat
}
