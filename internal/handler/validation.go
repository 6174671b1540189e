package handler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all handlers; validator.Validate is safe for concurrent use
// once registration is done.
var validate = validator.New(validator.WithRequiredStructEnabled())

type gamesQuery struct {
	Page    int `validate:"min=1,max=10000"`
	PerPage int `validate:"min=1,max=100"`
}

type recommendRequest struct {
	Review any `json:"review"`
	TopN   any `json:"top_n"`
}

type batchRequest struct {
	Reviews []string `json:"reviews" validate:"required,min=1,max=50,dive,required"`
	TopN    any      `json:"top_n"`
}

type profileRequest struct {
	Preferences string   `json:"preferences" validate:"required"`
	Genres      []string `json:"genres" validate:"max=20"`
	TopN        any      `json:"top_n"`
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// topNOrZero returns top_n when it is a whole JSON number and 0 otherwise,
// so strings, booleans and fractions fall back to the default count.
func topNOrZero(v any) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
