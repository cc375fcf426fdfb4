// Package security holds the random generators used for ids and temporary
// credentials.
package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
	errEmptyRange     = errors.New("range must be positive")
)

// RandomIndex returns a uniform value in [0, n).
func RandomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, errEmptyRange
	}
	position, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}

// RandomString draws length characters from alphabet without modulo bias.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errEmptyAlphabet
	}

	value := make([]byte, length)
	for index := range value {
		position, err := RandomIndex(len(alphabet))
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position]
	}
	return string(value), nil
}
