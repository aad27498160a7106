package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorhub/internal/models"
	"donorhub/internal/repository"
)

// ==============================================
// IN-MEMORY FAKE STORE
// ==============================================

type fakeOTPStore struct {
	records map[string]*models.OTPCode
	seq     int
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{records: make(map[string]*models.OTPCode)}
}

func (f *fakeOTPStore) Create(ctx context.Context, otp *models.OTPCode) error {
	f.seq++
	stored := *otp
	stored.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	f.records[otp.ID] = &stored
	otp.CreatedAt = stored.CreatedAt
	return nil
}

func (f *fakeOTPStore) DeleteByKey(ctx context.Context, email, purpose string) error {
	for id, r := range f.records {
		if r.Email == email && r.Purpose == purpose {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeOTPStore) GetLatest(ctx context.Context, email, purpose string) (*models.OTPCode, error) {
	var matches []*models.OTPCode
	for _, r := range f.records {
		if r.Email == email && r.Purpose == purpose {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil, repository.ErrOTPNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	copied := *matches[0]
	return &copied, nil
}

func (f *fakeOTPStore) GetByID(ctx context.Context, id string) (*models.OTPCode, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, repository.ErrOTPNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeOTPStore) IncrementAttempts(ctx context.Context, id string) (int32, error) {
	r, ok := f.records[id]
	if !ok {
		return 0, repository.ErrOTPNotFound
	}
	r.Attempts++
	return r.Attempts, nil
}

func (f *fakeOTPStore) MarkUsed(ctx context.Context, id string) error {
	if r, ok := f.records[id]; ok {
		r.Used = true
	}
	return nil
}

func (f *fakeOTPStore) MarkVerified(ctx context.Context, id string, at time.Time) error {
	if r, ok := f.records[id]; ok {
		r.Verified = true
		r.VerifiedAt.Time = at
		r.VerifiedAt.Valid = true
	}
	return nil
}

func (f *fakeOTPStore) Delete(ctx context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func (f *fakeOTPStore) DeleteExpired(ctx context.Context) (int64, error) {
	var deleted int64
	for id, r := range f.records {
		if r.IsExpired() {
			delete(f.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeOTPStore) countByKey(email, purpose string) int {
	n := 0
	for _, r := range f.records {
		if r.Email == email && r.Purpose == purpose {
			n++
		}
	}
	return n
}

func newTestOTPService(store *fakeOTPStore) *OTPService {
	return NewOTPService(store, 10*time.Minute, 3)
}

// ==============================================
// ISSUE TESTS
// ==============================================

func TestIssue_ReplacesPreviousCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	first, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)

	second, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)

	assert.Equal(t, 1, store.countByKey("a@b.com", models.OTPPurposeRegistration))
	_, err = store.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrOTPNotFound)

	latest, err := store.GetLatest(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestIssue_NormalizesEmailAndGeneratesSixDigits(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "  User@Example.COM ", models.OTPPurposeRegistration)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", otp.Email)
	assert.Len(t, otp.Code, 6)
	assert.GreaterOrEqual(t, otp.Code, "100000")
	assert.LessOrEqual(t, otp.Code, "999999")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), otp.ExpiresAt, time.Minute)
}

func TestIssue_DoesNotTouchOtherPurpose(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	_, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "a@b.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)

	assert.Equal(t, 1, store.countByKey("a@b.com", models.OTPPurposeRegistration))
	assert.Equal(t, 1, store.countByKey("a@b.com", models.OTPPurposePasswordReset))
}

func TestIssue_RejectsInvalidPurpose(t *testing.T) {
	ctx := context.Background()
	svc := newTestOTPService(newFakeOTPStore())

	_, err := svc.Issue(ctx, "a@b.com", "login_mfa")
	assert.Error(t, err)
}

// ==============================================
// VERIFY TESTS
// ==============================================

func TestVerify_NoRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestOTPService(newFakeOTPStore())

	_, err := svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, "123456")
	assert.ErrorIs(t, err, models.ErrOTPNotFound)
}

func TestVerify_RegistrationSuccessDeletesRecord(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)

	result, err := svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, otp.Code)
	require.NoError(t, err)
	assert.Empty(t, result.Token)

	// Second submission of the same correct code: record already gone
	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, otp.Code)
	assert.ErrorIs(t, err, models.ErrOTPNotFound)
	assert.Equal(t, 0, store.countByKey("a@b.com", models.OTPPurposeRegistration))
}

func TestVerify_MismatchBurnsAttempts(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)
	wrong := "000000"
	if otp.Code == wrong {
		wrong = "000001"
	}

	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, wrong)
	var mismatch *models.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int32(2), mismatch.Remaining)

	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, wrong)
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int32(1), mismatch.Remaining)

	// Third wrong attempt exhausts the record and deletes it
	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, wrong)
	assert.ErrorIs(t, err, models.ErrOTPMaxAttempts)
	assert.Equal(t, 0, store.countByKey("a@b.com", models.OTPPurposeRegistration))

	// Further attempts see nothing, even with the correct code
	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, otp.Code)
	assert.ErrorIs(t, err, models.ErrOTPNotFound)
}

func TestVerify_ExpiredDeletesRegardlessOfCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)
	store.records[otp.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, otp.Code)
	assert.ErrorIs(t, err, models.ErrOTPExpired)
	assert.Equal(t, 0, store.countByKey("a@b.com", models.OTPPurposeRegistration))
}

func TestVerify_MismatchThenSuccessScenario(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)
	store.records[otp.ID].Code = "123456"

	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, "000000")
	var mismatch *models.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int32(2), mismatch.Remaining)

	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposeRegistration, "123456")
	require.NoError(t, err)
	assert.Equal(t, 0, store.countByKey("a@b.com", models.OTPPurposeRegistration))
}

func TestVerify_PasswordResetKeepsRecordAndReturnsToken(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)

	result, err := svc.Verify(ctx, "a@b.com", models.OTPPurposePasswordReset, otp.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ID, result.Token)

	stored, err := store.GetByID(ctx, otp.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	assert.True(t, stored.VerifiedAt.Valid)
}

// ==============================================
// REDEEM TESTS
// ==============================================

func TestRedeemToken_HappyPath(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)
	result, err := svc.Verify(ctx, "a@b.com", models.OTPPurposePasswordReset, otp.Code)
	require.NoError(t, err)

	// Email comparison is case-insensitive
	redeemed, err := svc.RedeemToken(ctx, "A@B.com", result.Token)
	require.NoError(t, err)
	assert.Equal(t, otp.ID, redeemed.ID)

	require.NoError(t, svc.Consume(ctx, redeemed.ID))
	_, err = svc.RedeemToken(ctx, "a@b.com", result.Token)
	assert.ErrorIs(t, err, models.ErrOTPNotFound)
}

func TestRedeemToken_RejectsUnverified(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)

	_, err = svc.RedeemToken(ctx, "a@b.com", otp.ID)
	assert.ErrorIs(t, err, models.ErrOTPNotVerified)
}

func TestRedeemToken_WrongEmail(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, "a@b.com", models.OTPPurposePasswordReset, otp.Code)
	require.NoError(t, err)

	_, err = svc.RedeemToken(ctx, "someone-else@b.com", otp.ID)
	assert.ErrorIs(t, err, models.ErrOTPNotFound)
}

func TestRedeemToken_ExpiredAfterVerification(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	otp, err := svc.Issue(ctx, "a@b.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)
	result, err := svc.Verify(ctx, "a@b.com", models.OTPPurposePasswordReset, otp.Code)
	require.NoError(t, err)

	// Verification happened in time, but redemption comes too late
	store.records[otp.ID].ExpiresAt = time.Now().Add(-time.Second)

	_, err = svc.RedeemToken(ctx, "a@b.com", result.Token)
	assert.ErrorIs(t, err, models.ErrOTPExpired)
	assert.Equal(t, 0, store.countByKey("a@b.com", models.OTPPurposePasswordReset))
}

// ==============================================
// SWEEP TESTS
// ==============================================

func TestSweepExpired_RemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	store := newFakeOTPStore()
	svc := newTestOTPService(store)

	stale, err := svc.Issue(ctx, "old@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)
	store.records[stale.ID].ExpiresAt = time.Now().Add(-time.Hour)

	_, err = svc.Issue(ctx, "fresh@b.com", models.OTPPurposeRegistration)
	require.NoError(t, err)

	svc.SweepExpired(ctx)

	assert.Equal(t, 0, store.countByKey("old@b.com", models.OTPPurposeRegistration))
	assert.Equal(t, 1, store.countByKey("fresh@b.com", models.OTPPurposeRegistration))
}
