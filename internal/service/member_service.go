package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"donorhub/internal/api/dto"
	"donorhub/internal/auth"
	"donorhub/internal/logger"
	"donorhub/internal/models"
	"donorhub/internal/repository"
)

// ==============================================
// COLLABORATOR INTERFACES (for testing)
// ==============================================

type MemberStore interface {
	CreateMember(ctx context.Context, member *models.Member) error
	GetMemberByID(ctx context.Context, memberID int64) (*models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	GetMemberByMembershipID(ctx context.Context, membershipID string) (*models.Member, error)
	MarkVerified(ctx context.Context, memberID int64) error
	UpdatePassword(ctx context.Context, memberID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, memberID int64) error
}

type EmailSender interface {
	SendOTP(email, displayName, code, purpose string) error
	SendWelcome(email, displayName string) error
	SendPasswordChanged(email, displayName string) error
}

type OTPSendLimiter interface {
	Allow(ctx context.Context, email, purpose string) (allowed bool, withinCooldown bool)
}

// PasswordPolicy carries the password rules as parameters rather than
// constants baked into the flow.
type PasswordPolicy struct {
	MinLength  int
	BcryptCost int
}

// ==============================================
// MEMBER SERVICE
// ==============================================

type MemberService struct {
	memberRepo MemberStore
	otpService *OTPService
	email      EmailSender
	limiter    OTPSendLimiter
	policy     PasswordPolicy
	jwtSecret  string
	otpExpiry  time.Duration
}

func NewMemberService(
	memberRepo MemberStore,
	otpService *OTPService,
	email EmailSender,
	limiter OTPSendLimiter,
	policy PasswordPolicy,
	jwtSecret string,
	otpExpiry time.Duration,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		otpService: otpService,
		email:      email,
		limiter:    limiter,
		policy:     policy,
		jwtSecret:  jwtSecret,
		otpExpiry:  otpExpiry,
	}
}

// ==============================================
// REGISTRATION
// ==============================================

func (s *MemberService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := NormalizeEmail(req.Email)

	// 1. Check if email already exists
	existing, err := s.memberRepo.GetMemberByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, models.ErrEmailAlreadyExists
	}

	// 2. Hash password
	passwordHash, err := auth.HashPassword(req.Password, s.policy.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. Create member in pending state
	member := &models.Member{
		MembershipID: newMembershipID(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleMember,
		IsVerified:   false,
		MemberStatus: models.MemberStatusPending,
	}
	if req.Phone != "" {
		member.Phone = sql.NullString{String: req.Phone, Valid: true}
	}

	if err := s.memberRepo.CreateMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, models.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	// 4. Issue and send the verification code. Registration can't proceed
	// without the code reaching the member, so a send failure is fatal to
	// the request; a resend recovers the flow.
	otp, err := s.otpService.Issue(ctx, email, models.OTPPurposeRegistration)
	if err != nil {
		return nil, fmt.Errorf("failed to issue registration OTP: %w", err)
	}

	if err := s.email.SendOTP(email, member.Name, otp.Code, models.OTPPurposeRegistration); err != nil {
		logger.Get().Error("failed to send registration OTP", zap.String("email", email), zap.Error(err))
		return nil, models.ErrDependencyFailure
	}

	return &dto.RegisterResponse{
		Member:   memberToDTO(member),
		Message:  "Account created. Please check your email for the verification code.",
		NextStep: "verify_otp",
	}, nil
}

// ==============================================
// OTP VERIFICATION (registration)
// ==============================================

func (s *MemberService) VerifyRegistration(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	email := NormalizeEmail(req.Email)

	if _, err := s.otpService.Verify(ctx, email, models.OTPPurposeRegistration, req.Code); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if err := s.memberRepo.MarkVerified(ctx, member.ID); err != nil {
		return nil, fmt.Errorf("failed to mark member verified: %w", err)
	}

	// Best-effort; the member is verified regardless
	go func(email, name string) {
		if err := s.email.SendWelcome(email, name); err != nil {
			logger.Get().Warn("failed to send welcome email", zap.String("email", email), zap.Error(err))
		}
	}(member.Email, member.Name)

	return &dto.VerifyOTPResponse{
		Success:  true,
		Message:  "Email verified successfully. You can now log in.",
		NextStep: "login",
	}, nil
}

// ==============================================
// RESEND OTP
// ==============================================

func (s *MemberService) ResendOTP(ctx context.Context, req dto.ResendOTPRequest) (*dto.ResendOTPResponse, error) {
	email := NormalizeEmail(req.Email)

	member, err := s.memberRepo.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if member.State() == models.StateSuspended {
		return nil, models.ErrMemberSuspended
	}

	allowed, withinCooldown := s.limiter.Allow(ctx, email, req.Purpose)
	if !allowed {
		if withinCooldown {
			return nil, models.ErrOTPResendCooldown
		}
		return nil, models.ErrOTPResendLimit
	}

	otp, err := s.otpService.Issue(ctx, email, req.Purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to issue OTP: %w", err)
	}

	if err := s.email.SendOTP(email, member.Name, otp.Code, req.Purpose); err != nil {
		logger.Get().Error("failed to send OTP email", zap.String("email", email), zap.Error(err))
		return nil, models.ErrDependencyFailure
	}

	return &dto.ResendOTPResponse{
		Success:   true,
		Message:   "Verification code sent to your email",
		ExpiresIn: int(s.otpExpiry.Seconds()),
	}, nil
}

// ==============================================
// LOGIN
// ==============================================

func (s *MemberService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)

	var member *models.Member
	var err error
	if strings.Contains(identifier, "@") {
		member, err = s.memberRepo.GetMemberByEmail(ctx, NormalizeEmail(identifier))
	} else {
		member, err = s.memberRepo.GetMemberByMembershipID(ctx, strings.ToUpper(identifier))
	}

	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	switch member.State() {
	case models.StateSuspended:
		return nil, models.ErrMemberSuspended
	case models.StatePendingVerification:
		return nil, models.ErrMemberNotVerified
	}

	if !auth.CheckPassword(req.Password, member.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	if err := s.memberRepo.UpdateLastLogin(ctx, member.ID); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	token, expiresIn, err := auth.GenerateJWT(member.ID, member.Role, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.LoginResponse{
		Member:      memberToDTO(member),
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	}, nil
}

// ==============================================
// PASSWORD RESET
// ==============================================

func (s *MemberService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	email := NormalizeEmail(req.Email)

	member, err := s.memberRepo.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			// Don't reveal if the account exists
			return &dto.ForgotPasswordResponse{
				Message: "If this email is registered, you'll receive a password reset code",
			}, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if member.State() == models.StateSuspended {
		return nil, models.ErrMemberSuspended
	}

	otp, err := s.otpService.IssueWithTTL(ctx, email, models.OTPPurposePasswordReset, s.otpExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to issue reset OTP: %w", err)
	}

	if err := s.email.SendOTP(email, member.Name, otp.Code, models.OTPPurposePasswordReset); err != nil {
		logger.Get().Error("failed to send reset OTP", zap.String("email", email), zap.Error(err))
		return nil, models.ErrDependencyFailure
	}

	return &dto.ForgotPasswordResponse{
		Message: "Password reset code sent to your email",
		Email:   maskEmail(member.Email),
	}, nil
}

// VerifyReset proves control of the email and hands back the one-shot
// reset token.
func (s *MemberService) VerifyReset(ctx context.Context, req dto.VerifyResetRequest) (*dto.VerifyResetResponse, error) {
	result, err := s.otpService.Verify(ctx, NormalizeEmail(req.Email), models.OTPPurposePasswordReset, req.Code)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyResetResponse{
		Success: true,
		Message: "Code verified. Use the token to set a new password.",
		Token:   result.Token,
	}, nil
}

// ResetPassword redeems a verified reset token for exactly one password
// change. The token is only deleted after the new hash is committed.
func (s *MemberService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	if len(req.NewPassword) < s.policy.MinLength {
		return nil, models.ErrWeakPassword
	}

	email := NormalizeEmail(req.Email)

	otp, err := s.otpService.RedeemToken(ctx, email, req.Token)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.NewPassword, s.policy.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.memberRepo.UpdatePassword(ctx, member.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.memberRepo.UpdateLastLogin(ctx, member.ID); err != nil {
		logger.Get().Warn("failed to update last login after reset", zap.Int64("member_id", member.ID), zap.Error(err))
	}

	if err := s.otpService.Consume(ctx, otp.ID); err != nil {
		logger.Get().Warn("failed to consume reset token", zap.String("email", email), zap.Error(err))
	}

	// Best-effort; never undoes the committed password change
	go func(email, name string) {
		if err := s.email.SendPasswordChanged(email, name); err != nil {
			logger.Get().Warn("failed to send password-changed email", zap.String("email", email), zap.Error(err))
		}
	}(member.Email, member.Name)

	return &dto.ResetPasswordResponse{
		Success: true,
		Message: "Password reset successfully. You can now log in with your new password.",
	}, nil
}

// ==============================================
// STATUS RESOLUTION
// ==============================================

// ResolveAction is a pure read projection: it derives the client's next
// step from persisted member state and mutates nothing.
func (s *MemberService) ResolveAction(ctx context.Context, email string) (*dto.NextActionResponse, error) {
	member, err := s.memberRepo.GetMemberByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return &dto.NextActionResponse{
				Exists:  false,
				Action:  "register",
				Message: "No account found for this email. Please register.",
			}, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	resp := &dto.NextActionResponse{Exists: true}
	switch member.State() {
	case models.StatePendingVerification:
		resp.Action = "verify_otp"
		resp.Message = "Your email is not verified yet. Please verify with the code we sent you."
	case models.StateSuspended:
		resp.Action = "contact_admin"
		resp.Message = "Your account is suspended. Please contact an administrator."
	default:
		resp.Action = "login"
		resp.Message = "Your account is active. Please log in."
	}

	return resp, nil
}

// ==============================================
// HELPER FUNCTIONS
// ==============================================

func memberToDTO(member *models.Member) *dto.MemberDTO {
	d := &dto.MemberDTO{
		ID:           member.ID,
		MembershipID: member.MembershipID,
		Name:         member.Name,
		Email:        member.Email,
		IsVerified:   member.IsVerified,
		MemberStatus: member.MemberStatus,
		CreatedAt:    member.CreatedAt.Format(time.RFC3339),
	}

	if member.Phone.Valid {
		phone := member.Phone.String
		d.Phone = &phone
	}

	return d
}

// newMembershipID generates a short shareable membership ID
func newMembershipID() string {
	return "DH-" + strings.ToUpper(uuid.NewString()[:8])
}

func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	username := parts[0]
	domain := parts[1]

	if len(username) <= 2 {
		return username[0:1] + "***@" + domain
	}

	return username[0:1] + "***" + username[len(username)-1:] + "@" + domain
}
