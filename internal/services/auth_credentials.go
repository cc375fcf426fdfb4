package services

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// maxUsernameLength matches the user pool limit on sign-in aliases.
const maxUsernameLength = 128

var ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")

// NormalizeAuthEmail lowercases and trims raw and returns "" unless the result
// is a bare address usable as a username.
func NormalizeAuthEmail(raw string) string {
	candidate := strings.ToLower(strings.TrimSpace(raw))
	if candidate == "" || utf8.RuneCountInString(candidate) > maxUsernameLength {
		return ""
	}
	parsed, err := mail.ParseAddress(candidate)
	if err != nil || parsed.Address != candidate || parsed.Name != "" {
		return ""
	}
	return candidate
}

func NormalizeCredentialsInput(rawEmail string, rawPassword string) (string, string, error) {
	email := NormalizeAuthEmail(rawEmail)
	if email == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	password := strings.TrimSpace(rawPassword)
	if password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}
