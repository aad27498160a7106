package dto

// ==============================================
// DONATION REQUEST DTOs
// ==============================================

// SubmitDonationRequest - Public donation intake. Amount is in minor
// units (kobo/cents).
type SubmitDonationRequest struct {
	DonorName  string `json:"donor_name" binding:"required,min=2,max=100"`
	DonorEmail string `json:"donor_email" binding:"required,email"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Currency   string `json:"currency" binding:"omitempty,len=3,uppercase"`
	Purpose    string `json:"purpose" binding:"required,oneof=general building outreach zakat education"`
	Message    string `json:"message" binding:"omitempty,max=500"`
}

// ListDonationsRequest - Admin listing filters
type ListDonationsRequest struct {
	Purpose string `form:"purpose" binding:"omitempty,oneof=general building outreach zakat education"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// ==============================================
// DONATION RESPONSE DTOs
// ==============================================

// DonationDTO - Donation record as exposed to clients
type DonationDTO struct {
	ID         int64  `json:"id"`
	Reference  string `json:"reference"`
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`
	MemberID   *int64 `json:"member_id,omitempty"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Purpose    string `json:"purpose"`
	Message    string `json:"message,omitempty"`
	CreatedAt  string `json:"created_at"` // ISO 8601
}

// SubmitDonationResponse
type SubmitDonationResponse struct {
	Donation *DonationDTO `json:"donation"`
	Message  string       `json:"message"`
}

// ListDonationsResponse
type ListDonationsResponse struct {
	Donations  []DonationDTO  `json:"donations"`
	Pagination PaginationMeta `json:"pagination"`
}

// PurposeStatDTO
type PurposeStatDTO struct {
	Purpose string `json:"purpose"`
	Count   int64  `json:"count"`
	Amount  int64  `json:"amount"`
}

// DonationStatsResponse - Admin aggregate view
type DonationStatsResponse struct {
	TotalCount  int64            `json:"total_count"`
	TotalAmount int64            `json:"total_amount"`
	ByPurpose   []PurposeStatDTO `json:"by_purpose"`
}
