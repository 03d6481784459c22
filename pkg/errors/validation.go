package errors

import (
	"strings"
	"unicode"
)

// ValidatePersonID validates a person id arriving from an untrusted surface
// (CLI flag, HTTP request). The engine itself treats ids as opaque; this
// guards the outer layers against ids that would break cache keys or logs.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No whitespace
//   - Maximum length of 256 characters
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRequest, "person id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidRequest, "person id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRequest, "person id contains control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidRequest, "person id contains whitespace")
		}
	}

	return nil
}

// ValidateSnapshotPath validates a snapshot file path for safety.
// It prevents null bytes and unreasonable lengths; existence is checked by
// the reader.
func ValidateSnapshotPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidRequest, "snapshot path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidRequest, "snapshot path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidRequest, "snapshot path contains invalid characters")
	}

	return nil
}
