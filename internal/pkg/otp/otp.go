package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpace is the number of distinct 6-digit codes: [100000, 999999].
const codeSpace = 900000

// Generate returns a 6-digit numeric code drawn uniformly from
// [100000, 999999]. crypto/rand keeps successive codes independent and
// unguessable; with a 3-attempt cap the brute-force success probability
// per issued code is 3/900000.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
