package errors

import (
	"unicode"
)

// ValidateIdentifier checks that name is usable as a DSL identifier:
// a letter or underscore followed by letters, digits or underscores.
// Argument override names and pass names are validated with it.
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeInvalidArgument, "identifier cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidArgument, "identifier too long (max 256 characters)")
	}

	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return New(ErrCodeInvalidArgument, "invalid identifier %q", name)
		}
	}

	return nil
}

// ValidateUploadSize rejects request bodies larger than limit bytes.
func ValidateUploadSize(size, limit int64) error {
	if size > limit {
		return New(ErrCodeInvalidInput, "upload too large (%d bytes, max %d)", size, limit)
	}
	return nil
}
