package credentials

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretNeverRevealsValue(t *testing.T) {
	s := NewSecret("hunter2")

	assert.Equal(t, "***", s.String())
	assert.Equal(t, "***", s.GoString())
	assert.Equal(t, "***", fmt.Sprintf("%v", s))
	assert.Equal(t, "***", fmt.Sprintf("%s", s))

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"***"`, string(b))

	assert.Equal(t, "hunter2", s.ExposeSecret())
}

func TestSecretClearZeroesBytes(t *testing.T) {
	s := NewSecret("topsecret")
	s.Clear()
	assert.Equal(t, "", s.ExposeSecret())
	assert.True(t, s.IsEmpty())
}

func TestCredentialsStringNeverContainsSecrets(t *testing.T) {
	c := NewPasswordCredentials("admin", "sup3rsecret")
	out := c.String()

	assert.NotContains(t, out, "sup3rsecret")
	assert.Contains(t, out, "admin")
	assert.True(t, strings.Contains(out, "***"))
}

func TestCredentialsClearClearsAllFields(t *testing.T) {
	c := NewKeyCredentials("deploy", "PRIVATE-KEY-BYTES", "phrase")
	c.Clear()

	assert.True(t, c.Password.IsEmpty())
	assert.True(t, c.PrivateKey.IsEmpty())
	assert.True(t, c.Passphrase.IsEmpty())
}

func TestUsesKeyDetection(t *testing.T) {
	pw := NewPasswordCredentials("u", "p")
	key := NewKeyCredentials("u", "k", "")

	assert.False(t, pw.UsesKey())
	assert.True(t, key.UsesKey())
}
