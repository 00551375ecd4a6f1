package domain

import (
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("test@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", user.Email)
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestUserValidate(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{"valid", "a@example.com", "a long enough password", nil},
		{"empty email", "", "a long enough password", ErrEmptyEmail},
		{"missing at", "not-an-email", "a long enough password", ErrInvalidEmail},
		{"missing domain dot", "a@example", "a long enough password", ErrInvalidEmail},
		{"short password", "a@example.com", "short", ErrPasswordTooShort},
		{"long password", "a@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.email, tc.password)
			if err != tc.expected {
				t.Errorf("Expected error %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestUserValidateHashedOnly(t *testing.T) {
	// A user loaded from storage has no plaintext password.
	user, err := NewUser("b@example.com", "a long enough password")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	user.Password = ""
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"

	if err := user.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}
