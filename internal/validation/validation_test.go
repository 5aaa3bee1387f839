package validation

import (
	"errors"
	"testing"

	"github.com/kjstillabower/weather-history-service/internal/models"
)

func TestValidateZipCode_EmptyAndWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tab", "\t"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateZipCode(tc.input)
			if !errors.Is(err, ErrZipCodeEmpty) {
				t.Errorf("error = %v, want ErrZipCodeEmpty", err)
			}
		})
	}
}

func TestValidateZipCode_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10001", "10001"},
		{"  94103 ", "94103"},
		{"10001-1234", "10001-1234"},
		{"SW1A 1AA", "SW1A 1AA"},
		{"00000", "00000"},
		{"12345678901", "12345678901"},
		{"10001;drop", "10001;drop"},
		{" ab+c ", "ab+c"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ValidateZipCode(tc.input)
			if err != nil {
				t.Fatalf("ValidateZipCode(%q) error = %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ValidateZipCode(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestRecordValidator(t *testing.T) {
	rv := NewRecordValidator()
	tests := []struct {
		name    string
		zip     string
		wantErr string
		wantZip string
	}{
		{"valid", "10001", "", "10001"},
		{"trimmed", " 10001 ", "", "10001"},
		{"missing", "", "zipCode is required", ""},
		{"blank", "   ", "zipCode is required", ""},
		{"long zip accepted", "  SW1A 1AA EXTRA  ", "", "SW1A 1AA EXTRA"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := models.WeatherRecordInput{ZipCode: tc.zip}
			err := rv.Validate(&in)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
			} else if err == nil || err.Error() != tc.wantErr {
				t.Fatalf("Validate() error = %v, want %q", err, tc.wantErr)
			}
			if in.ZipCode != tc.wantZip {
				t.Errorf("ZipCode = %q, want %q", in.ZipCode, tc.wantZip)
			}
		})
	}
}
