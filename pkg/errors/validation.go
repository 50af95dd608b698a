package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength is the longest accepted category, subcategory or title text.
const MaxNameLength = 256

// ValidateName validates a display name (category, y-category, subcategory
// name or title). what is used in the message, e.g. "category name".
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters (including null bytes and newlines)
//   - Maximum length of 256 characters
func ValidateName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidDataset, "%s cannot be empty", what)
	}
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidDataset, "%s too long (max %d characters)", what, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "%s contains invalid control characters", what)
		}
	}
	return nil
}

// idRegex matches subcategory identifiers. They appear in cache keys, URL
// paths and SVG element ids, so they are kept to a safe alphabet.
var idRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ValidateID validates a subcategory identifier.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDataset, "subcategory id cannot be empty")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidDataset, "invalid subcategory id %q (letters, digits, '-' and '_', starting with a letter)", id)
	}
	return nil
}

// ValidateURL validates a dataset URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
