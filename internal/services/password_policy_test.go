package services

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordPolicyRejectsWeakPasswords(t *testing.T) {
	testCases := []string{
		"Short1!",
		"alllowercase1!",
		"ALLUPPERCASE1!",
		"NoDigitsHere!",
		"NoSymbolsHere1",
	}

	policy := DefaultPasswordPolicy()
	for _, password := range testCases {
		if err := policy.Validate(password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
	}
}

func TestPasswordPolicyAcceptsStrongPassword(t *testing.T) {
	if err := DefaultPasswordPolicy().Validate("StrongPass1!"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestGenerateTemporaryPasswordSatisfiesPolicy(t *testing.T) {
	t.Parallel()

	for attempt := 0; attempt < 20; attempt++ {
		password, err := GenerateTemporaryPassword(4)
		if err != nil {
			t.Fatalf("GenerateTemporaryPassword returned error: %v", err)
		}
		if len(password) != 12 {
			t.Fatalf("GenerateTemporaryPassword minimum len = %d, want 12", len(password))
		}
		if err := DefaultPasswordPolicy().Validate(password); err != nil {
			t.Fatalf("generated password %q fails policy: %v", password, err)
		}
		if strings.ContainsAny(password, "0O1lI") {
			t.Fatalf("generated password %q contains ambiguous characters", password)
		}
	}
}
