package utils

import (
	"math/rand"
	"strings"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID returns a random lowercase alphanumeric identifier, used
// for room codes and connection ids.
func GenerateID(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for range length {
		sb.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
	}
	return sb.String()
}
