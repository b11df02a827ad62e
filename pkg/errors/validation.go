package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds node display names and session names.
const MaxNameLength = 128

// ValidateName validates a display name for a node or an editing session.
//
// A name must contain a non-space character, no control characters and at
// most MaxNameLength runes.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len([]rune(name)) > MaxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidateCatalogPath validates a catalog file path given on the command line
// or in a config file. Only the formats the catalog loader understands are accepted.
func ValidateCatalogPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "catalog path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "catalog path contains invalid characters")
	}

	lower := strings.ToLower(path)
	for _, ext := range []string{".toml", ".yaml", ".yml", ".json"} {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported catalog format: %s", path)
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
