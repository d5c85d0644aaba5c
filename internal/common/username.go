package common

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxUsernameLength = 64

// NormalizeUsername trims surrounding whitespace and rejects names that are
// empty, too long or contain control characters.
func NormalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidUsername, MaxUsernameLength)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control characters", ErrInvalidUsername)
	}
	return name, nil
}
