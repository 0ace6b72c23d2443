package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix_<uuid without dashes>.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ShortID returns the first eight hex digits of a fresh uuid.
func ShortID() string {
	return uuid.NewString()[:8]
}
