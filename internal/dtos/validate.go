package dtos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/job-portal/internal/apperr"
)

// Same tag gin binds with, so a request is checked by the same rules
// whether it arrives over HTTP or is built in code.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}()

// Validate checks req and returns an apperr.ErrValidation naming the
// first failing field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	return ValidationError(err)
}

// ValidationError converts a binding/validator error to ErrValidation.
func ValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("malformed request body")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	return apperr.Validation("%s %s", field, describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q check", fe.Tag())
	}
}

// SplitList turns "go, sql ,,docker" into ["go" "sql" "docker"].
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
