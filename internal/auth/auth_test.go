package auth

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ==============================================
// OTP GENERATION TESTS
// ==============================================

func TestGenerateOTP_SixDigitsInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateOTP()
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateOTP_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[GenerateOTP()] = true
	}
	// 20 draws from 900k values collapsing to one would mean a broken source
	assert.Greater(t, len(seen), 1)
}

// ==============================================
// PASSWORD HASHING TESTS
// ==============================================

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("supersecret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, CheckPassword("supersecret", hash))
	assert.False(t, CheckPassword("wrongpassword", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("supersecret", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("supersecret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

// ==============================================
// JWT TESTS
// ==============================================

func TestGenerateJWT_AndValidate(t *testing.T) {
	token, expiresIn, err := GenerateJWT(42, "admin", "test-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int(TokenExpirationTime.Seconds()), expiresIn)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MemberID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, _, err := GenerateJWT(42, "member", "test-secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not.a.jwt", "test-secret")
	assert.Error(t, err)
}
