package services

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/terraincognita07/kgjournal/internal/security"
)

var ErrWeakPassword = errors.New("weak password")

// PasswordPolicy mirrors the user pool password requirements.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSymbols   bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumbers:   true,
		RequireSymbols:   true,
	}
}

func (policy PasswordPolicy) Validate(password string) error {
	if len([]rune(password)) < policy.MinLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, policy.MinLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSymbol = true
		}
	}

	switch {
	case policy.RequireUppercase && !hasUpper:
		return fmt.Errorf("%w: needs an uppercase letter", ErrWeakPassword)
	case policy.RequireLowercase && !hasLower:
		return fmt.Errorf("%w: needs a lowercase letter", ErrWeakPassword)
	case policy.RequireNumbers && !hasDigit:
		return fmt.Errorf("%w: needs a number", ErrWeakPassword)
	case policy.RequireSymbols && !hasSymbol:
		return fmt.Errorf("%w: needs a symbol", ErrWeakPassword)
	}
	return nil
}

// GenerateTemporaryPassword returns a password that satisfies the default
// policy. One character of each required class is placed at a random offset.
func GenerateTemporaryPassword(length int) (string, error) {
	const (
		upper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
		lower   = "abcdefghijkmnopqrstuvwxyz"
		digits  = "23456789"
		symbols = "!#%+=?@"
	)
	if length < 12 {
		length = 12
	}

	body, err := security.RandomString(length-4, upper+lower+digits)
	if err != nil {
		return "", err
	}
	password := []byte(body)
	for _, class := range []string{upper, lower, digits, symbols} {
		char, err := security.RandomString(1, class)
		if err != nil {
			return "", err
		}
		position, err := security.RandomIndex(len(password) + 1)
		if err != nil {
			return "", err
		}
		password = append(password[:position], append([]byte(char), password[position:]...)...)
	}
	return string(password), nil
}
