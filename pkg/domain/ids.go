package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches identifiers that are safe to embed in storage keys:
// alphanumeric with hyphens/underscores, starting with a letter.
var idPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateID checks that an identifier can be embedded in versioned storage
// keys without ambiguity. kind names the field in the error message.
func ValidateID(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s ID cannot be empty", kind)
	}
	if !idPattern.MatchString(value) {
		return fmt.Errorf("invalid %s ID format: %q", kind, value)
	}
	return nil
}
