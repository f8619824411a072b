// Package processor implements the five-stage pipeline that turns a raw
// discovered event into a scored, correlated one.
package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EntityFromEventType extracts the entity kind ("server", "repository",...)
// from a dotted CloudEvent type such as "discovery.server.discovered".
func EntityFromEventType(eventType string) string {
	parts := strings.Split(eventType, ".")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

// DeterministicID returns the 16-hex-character truncation of SHA-256 over
// kind and the identifying fields stage 5.
func DeterministicID(kind string, fields ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, f := range fields {
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:16]
}

// entityCategory maps an entity kind to its risk/scoring category.
func entityCategory(kind string) string {
	switch kind {
	case "database", "schema", "relationship":
		return "database"
	case "repository", "codebase", "dependency":
		return "codebase"
	case "server", "service", "infrastructure":
		return "infrastructure"
	default:
		return "unknown"
	}
}
