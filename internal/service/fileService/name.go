package fileService

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxNameLength = 255

// ValidateName rejects names that are empty, too long, or could escape the
// owner's key prefix.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: name is longer than %d bytes", ErrInvalidName, MaxNameLength)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: name contains a path separator", ErrInvalidName)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: name contains \"..\"", ErrInvalidName)
	case name == ".":
		return fmt.Errorf("%w: name is \".\"", ErrInvalidName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: name contains control characters", ErrInvalidName)
		}
	}
	return nil
}
