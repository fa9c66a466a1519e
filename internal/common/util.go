package common

import (
	"crypto/rand"
	"math/big"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// MakeRandBase36String returns n random characters from [0-9a-z].
func MakeRandBase36String(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base36Alphabet[v.Int64()]
	}
	return string(out), nil
}
