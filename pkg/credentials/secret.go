// Package credentials implements the short-lived, guaranteed-scrub
// credential object used by the infra probe and the DB inspector's deep
// inspection endpoint.
package credentials

const redactedForm = "***"

// Secret holds one sensitive value. Its zero value is safe and already
// redacted. Every formatting path — String, GoString, MarshalJSON — yields
// the fixed redacted form; the only way to read the underlying bytes is
// ExposeSecret.
type Secret struct {
	value []byte
}

// NewSecret copies v into a new Secret. The caller remains responsible for
// clearing its own copy of v if it is sensitive.
func NewSecret(v string) Secret {
	if v == "" {
		return Secret{}
	}
	b := make([]byte, len(v))
	copy(b, v)
	return Secret{value: b}
}

// ExposeSecret is the one explicit accessor for the underlying value. Callers
// must not retain the returned string longer than needed.
func (s Secret) ExposeSecret() string {
	return string(s.value)
}

func (s Secret) IsEmpty() bool { return len(s.value) == 0 }

func (s Secret) String() string   { return redactedForm }
func (s Secret) GoString() string { return redactedForm }

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedForm + `"`), nil
}

// Clear overwrites the backing bytes with filler of the same length, then
// releases them. Safe to call multiple times.
func (s *Secret) Clear() {
	for i := range s.value {
		s.value[i] = '*'
	}
	s.value = nil
}
