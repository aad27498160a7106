package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP generates a uniformly random 6-digit OTP in [100000, 999999]
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand reading the OS entropy source does not fail in practice
		panic(fmt.Sprintf("otp generation: %v", err))
	}

	return fmt.Sprintf("%06d", n.Int64()+100000)
}
