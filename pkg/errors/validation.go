package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength bounds entity and project names.
const MaxNameLength = 256

// keyRegex matches storage keys: letters, digits, dot, dash, underscore and
// colon, starting with a letter or digit.
var keyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateKey validates a storage key. Keys end up as file names, SQL values
// and redis keys, so they are restricted to a conservative alphabet:
//   - No empty keys
//   - Maximum length of 128 characters
//   - No path separators or traversal sequences
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "storage key cannot be empty")
	}
	if len(key) > 128 {
		return New(ErrCodeInvalidKey, "storage key too long (max 128 characters)")
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "storage key cannot contain %q", "..")
	}
	if !keyRegex.MatchString(key) {
		return New(ErrCodeInvalidKey, "invalid storage key: %q", key)
	}
	return nil
}

// ValidateName validates a display name for a project, lane, block or group.
// Empty names are allowed; the core fills in defaults where it needs one.
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in the
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
