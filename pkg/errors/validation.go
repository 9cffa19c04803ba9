package errors

import (
	"unicode"
)

// ValidateNodeName validates a node label from parsed input.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters (tabs, newlines, null bytes)
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidateDirection validates a flow direction flag value.
// Accepted values are "TB" (top to bottom) and "LR" (left to right).
func ValidateDirection(direction string) error {
	switch direction {
	case "TB", "LR":
		return nil
	default:
		return New(ErrCodeInvalidDirection, "invalid direction %q (must be TB or LR)", direction)
	}
}

// ValidateOutputPath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	return nil
}
