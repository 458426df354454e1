// Package validation holds the jellydator/validation rules shared by the HTTP DTOs
// and the CLI.
package validation

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/signatrust/internal/errors"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	keyNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]*$`)
)

// WrapValidationError turns a rule failure into apperrors.ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// KeyName validates a data key name. Names end up in cache keys and CLI arguments.
var KeyName = validation.NewStringRuleWithError(
	keyNameRegex.MatchString,
	validation.NewError("validation_key_name",
		"must start with a letter or digit and contain only letters, digits, '.', '_' or '-'"),
)

var Email = validation.NewStringRuleWithError(
	emailRegex.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// RFC3339 validates key validity timestamps such as "2030-01-02T15:04:05Z".
var RFC3339 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	},
	validation.NewError("validation_rfc3339", "must be an RFC 3339 timestamp"),
)

// Base64 validates standard base64 with padding. Empty strings pass; pair with
// validation.Required when the field is mandatory.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be valid base64-encoded data"),
)

var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// TokenStrength requires a minimum length and a minimum number of character
// classes among upper case, lower case, digits and symbols.
type TokenStrength struct {
	MinLength  int
	MinClasses int
}

func (r TokenStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_token_type", "token must be a string")
	}
	if s == "" {
		return nil
	}

	if len(s) < r.MinLength {
		return validation.NewError("validation_token_min_length",
			fmt.Sprintf("token must be at least %d characters", r.MinLength))
	}
	if classes := charClasses(s); classes < r.MinClasses {
		return validation.NewError("validation_token_classes",
			fmt.Sprintf("token must mix at least %d of upper case, lower case, digits and symbols", r.MinClasses))
	}
	return nil
}

func charClasses(s string) int {
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	count := 0
	for _, present := range []bool{upper, lower, digit, symbol} {
		if present {
			count++
		}
	}
	return count
}
