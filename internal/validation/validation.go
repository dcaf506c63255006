// Package validation applies client-side checks before a request is sent.
// This is defense in depth only; the server re-validates everything.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	dErrors "propadmin/pkg/domain-errors"
)

const minPasswordLength = 12

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("mfacode", func(fl validator.FieldLevel) bool {
		return IsMFACode(fl.Field().String())
	})
	_ = v.RegisterValidation("adminpassword", func(fl validator.FieldLevel) bool {
		return PasswordStrength(fl.Field().String()) >= StrengthMedium
	})
	return v
}

// Validate validates a struct using the default validator and returns a
// domain error with a human-readable message on failure.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// IsMFACode reports whether s is a 6-digit numeric one-time code.
func IsMFACode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Strength grades a candidate password.
type Strength int

const (
	StrengthTooShort Strength = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthTooShort:
		return "too short"
	case StrengthWeak:
		return "weak"
	case StrengthMedium:
		return "medium"
	default:
		return "strong"
	}
}

// PasswordStrength grades a password the same way the server does: at least
// 12 characters, and at least 3 of the 4 character classes (upper, lower,
// digit, symbol) for medium, all 4 for strong.
func PasswordStrength(password string) Strength {
	if len(password) < minPasswordLength {
		return StrengthTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, b := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if b {
			classes++
		}
	}
	switch {
	case classes < 3:
		return StrengthWeak
	case classes == 3:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

// CheckNewPassword validates a forced password change before submission:
// strength floor and confirmation match. Returns a validation domain error.
func CheckNewPassword(newPassword, confirm string) error {
	if newPassword != confirm {
		return dErrors.New(dErrors.CodeValidation, "new passwords do not match")
	}
	switch PasswordStrength(newPassword) {
	case StrengthTooShort:
		return dErrors.Newf(dErrors.CodeValidation,
			"password must be at least %d characters", minPasswordLength)
	case StrengthWeak:
		return dErrors.New(dErrors.CodeValidation,
			"password is not strong enough: use uppercase, lowercase, numbers, and symbols")
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid input"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := toSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "mfacode":
		return "code must be a 6-digit number"
	case "adminpassword":
		return "password is not strong enough: use uppercase, lowercase, numbers, and symbols"
	case "eqfield":
		return "new passwords do not match"
	default:
		if field == "" {
			return "invalid input"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
