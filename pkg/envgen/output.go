package envgen

import (
	"encoding/json"
	"time"
)

// Output is the JSON manifest emitted alongside the compose document. Only
// GeneratedAt varies between two invocations sharing a seed.
type Output struct {
	GeneratedAt time.Time `json:"generated_at"`
	Manifest
}

// JSON renders manifest as the timestamped JSON manifest, stamping
// generatedAt separately from the deterministic body so two calls with the
// same seed and different generatedAt values diff only on that field.
func JSON(manifest Manifest, generatedAt time.Time) ([]byte, error) {
	out := Output{GeneratedAt: generatedAt, Manifest: manifest}
	return json.MarshalIndent(out, "", " ")
}
