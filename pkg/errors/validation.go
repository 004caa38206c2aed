package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds diagram record identifiers.
const maxIDLength = 128

// ValidateDiagramID validates a diagram record identifier for safety.
// It rejects ids that could be used for path traversal or query injection.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDiagramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "diagram id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "diagram id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "diagram id contains invalid characters")
		}
	}

	if strings.ContainsAny(id, "/\\$") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "diagram id contains invalid characters: %q", id)
	}

	return nil
}

// ValidatePath validates an input file path for the CLI.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
