package service

import (
	"fmt"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// reservedUsernames never resolve to a profile: they are the app's own
// top-level routes.
var reservedUsernames = map[string]struct{}{
	"dashboard": {},
	"auth":      {},
	"api":       {},
	"_next":     {},
	"static":    {},
	"uploads":   {},
	"ping":      {},
}

// IsReservedUsername reports whether name collides with an app route.
func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ValidUsername reports whether raw matches the allowed username shape.
func ValidUsername(raw string) bool {
	return usernamePattern.MatchString(raw)
}

// NormalizeUsername validates raw and returns its lowercase form.
func NormalizeUsername(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: must be 3-20 characters of letters, numbers, hyphens or underscores", ErrInvalidUsername)
	}
	normalized := strings.ToLower(trimmed)
	if IsReservedUsername(normalized) {
		return "", ErrReservedUsername
	}
	return normalized, nil
}
