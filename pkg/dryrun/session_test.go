package dryrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionIDAcceptsValidGrammar(t *testing.T) {
	assert.NoError(t, ValidateSessionID("scan-1234_abc"))
	assert.NoError(t, ValidateSessionID("a"))
}

func TestValidateSessionIDRejectsEmpty(t *testing.T) {
	assert.Error(t, ValidateSessionID(""))
}

func TestValidateSessionIDRejectsOverlongID(t *testing.T) {
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateSessionID(string(long)))
}

func TestValidateSessionIDRejectsDisallowedCharacters(t *testing.T) {
	assert.Error(t, ValidateSessionID("session/../etc"))
	assert.Error(t, ValidateSessionID("session id"))
	assert.Error(t, ValidateSessionID("session;rm -rf"))
}

func TestSessionLabelsIncludesFixedDiscoveryType(t *testing.T) {
	labels := sessionLabels("sess-1", "acme/api")

	assert.Equal(t, "sess-1", labels[LabelSessionID])
	assert.Equal(t, "acme/api", labels[LabelRepoName])
	assert.Equal(t, DiscoveryTypeCodeRepo, labels[LabelDiscoveryType])
}
