package helpers

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// VerificationCodeTTL is how long an emailed verification code stays valid.
const VerificationCodeTTL = time.Hour

var codeSpan = big.NewInt(900000)

// GenVerificationCode returns a uniformly random 6-digit code in 100000..999999.
func GenVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
