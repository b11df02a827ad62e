package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Run ML Model", false},
		{"unicode", "Kamera Süd", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"control", "bad\x07name", true},
		{"newline", "two\nlines", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
		{"max length", strings.Repeat("a", MaxNameLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateCatalogPath(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"catalog.toml", false},
		{"conf/catalog.YAML", false},
		{"catalog.yml", false},
		{"catalog.json", false},
		{"catalog.ini", true},
		{"", true},
		{"cat\x00.json", true},
	}

	for _, tt := range tests {
		err := ValidateCatalogPath(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCatalogPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.com/hook", false},
		{"http://10.0.0.2:8080", false},
		{"ftp://example.com", true},
		{"example.com", true},
		{"", true},
	}

	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidPayload, ErrCodeInvalidGraph, ErrCodeInvalidConfig,
		ErrCodeInvalidFormat, ErrCodeConnectionRejected, ErrCodeMutationRejected, ErrCodeNotFound,
		ErrCodeUnresolvedReference, ErrCodeSessionNotFound, ErrCodeFileNotFound,
		ErrCodeInternal, ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}
