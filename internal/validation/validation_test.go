package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "propadmin/pkg/domain-errors"
)

func TestIsMFACode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"12 456", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMFACode(tt.code), "code %q", tt.code)
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     Strength
	}{
		{"short", "Ab1!", StrengthTooShort},
		{"eleven chars", "Abcdefgh1!x", StrengthTooShort},
		{"long but one class", "aaaaaaaaaaaaaa", StrengthWeak},
		{"long but two classes", "aaaaaaaaaaaaa1", StrengthWeak},
		{"three classes", "aaaaaaaaaaaA1", StrengthMedium},
		{"all four classes", "aaaaaaaaaaA1!", StrengthStrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordStrength(tt.password))
		})
	}
}

func TestCheckNewPassword(t *testing.T) {
	t.Run("accepts strong matching passwords", func(t *testing.T) {
		assert.NoError(t, CheckNewPassword("Str0ng-enough!", "Str0ng-enough!"))
	})

	t.Run("rejects mismatch before strength", func(t *testing.T) {
		err := CheckNewPassword("Str0ng-enough!", "different")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "do not match")
	})

	t.Run("rejects short password", func(t *testing.T) {
		err := CheckNewPassword("Sh0rt!", "Sh0rt!")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "at least 12")
	})

	t.Run("rejects weak password", func(t *testing.T) {
		err := CheckNewPassword("aaaaaaaaaaaa1", "aaaaaaaaaaaa1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "not strong enough")
	})
}

func TestValidateStruct(t *testing.T) {
	type verifyRequest struct {
		Code string `validate:"required,mfacode"`
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(verifyRequest{Code: "123456"}))
	})

	t.Run("invalid code yields validation error", func(t *testing.T) {
		err := Validate(verifyRequest{Code: "12ab56"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "code must be a 6-digit number", err.Error())
	})

	t.Run("missing field names the field", func(t *testing.T) {
		err := Validate(verifyRequest{})
		assert.Equal(t, "code is required", err.Error())
	})
}
