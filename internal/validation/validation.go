package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/weather-history-service/internal/models"
)

// ErrZipCodeEmpty is returned when the zip code is empty or whitespace-only after trim.
var ErrZipCodeEmpty = errors.New("zip code is required")

// ValidateZipCode trims the input and rejects it only when nothing is left.
// Format is left to the upstream provider, so unknown or malformed codes
// surface as 404 from the lookup.
func ValidateZipCode(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrZipCodeEmpty
	}
	return s, nil
}

// RecordValidator checks caller-supplied history records.
type RecordValidator struct {
	v *validator.Validate
}

// NewRecordValidator builds a validator that reports fields by their JSON names.
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RecordValidator{v: v}
}

// Validate trims in.ZipCode in place and checks the struct tags.
// The returned error message is safe to show to clients.
func (rv *RecordValidator) Validate(in *models.WeatherRecordInput) error {
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	err := rv.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}
