package models

import (
	"database/sql"
	"time"
)

// ==============================================
// MEMBER MODEL (Database mapping)
// ==============================================

// Member represents a registered (or registering) member
type Member struct {
	ID           int64          `db:"id"`
	MembershipID string         `db:"membership_id"` // unique, human-shareable
	Name         string         `db:"name"`
	Email        string         `db:"email"` // unique, normalized lowercase
	Phone        sql.NullString `db:"phone"`
	PasswordHash string         `db:"password_hash"`
	Role         string         `db:"role"` // "member" or "admin"
	IsVerified   bool           `db:"is_verified"`
	MemberStatus string         `db:"member_status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLoginAt  sql.NullTime   `db:"last_login_at"`
}

// ==============================================
// MEMBER STATUS CONSTANTS
// ==============================================
const (
	MemberStatusPending   = "pending_verification"
	MemberStatusVerified  = "verified"
	MemberStatusSuspended = "suspended"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// ==============================================
// MEMBER STATE
// ==============================================

// MemberState is the explicit state derived from the stored
// (IsVerified, MemberStatus) pair. Deriving it in one place keeps the
// two columns from being interpreted differently across call sites.
type MemberState int

const (
	StateUnregistered MemberState = iota
	StatePendingVerification
	StateVerified
	StateSuspended
)

func (s MemberState) String() string {
	switch s {
	case StatePendingVerification:
		return "pending_verification"
	case StateVerified:
		return "verified"
	case StateSuspended:
		return "suspended"
	default:
		return "unregistered"
	}
}

// State derives the member's explicit state. Suspension wins over the
// verification flag; a verified flag only counts when the status agrees.
func (m *Member) State() MemberState {
	switch {
	case m.MemberStatus == MemberStatusSuspended:
		return StateSuspended
	case !m.IsVerified && m.MemberStatus == MemberStatusPending:
		return StatePendingVerification
	default:
		return StateVerified
	}
}

func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// ==============================================
// PUBLIC VIEW
// ==============================================

// PublicMember is the safe version to return to clients (no sensitive fields)
type PublicMember struct {
	ID           int64      `json:"id"`
	MembershipID string     `json:"membership_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	IsVerified   bool       `json:"is_verified"`
	MemberStatus string     `json:"member_status"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// ToPublic converts Member to PublicMember (removes sensitive fields)
func (m *Member) ToPublic() *PublicMember {
	pm := &PublicMember{
		ID:           m.ID,
		MembershipID: m.MembershipID,
		Name:         m.Name,
		Email:        m.Email,
		IsVerified:   m.IsVerified,
		MemberStatus: m.MemberStatus,
		CreatedAt:    m.CreatedAt,
	}

	if m.Phone.Valid {
		pm.Phone = &m.Phone.String
	}
	if m.LastLoginAt.Valid {
		pm.LastLoginAt = &m.LastLoginAt.Time
	}

	return pm
}
