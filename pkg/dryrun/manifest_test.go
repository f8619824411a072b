package dryrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageForRepoMatchesKnownManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))

	assert.Equal(t, "golang:1.23-alpine", ImageForRepo(dir))
}

func TestImageForRepoDefaultsWhenNoManifestPresent(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, defaultImage, ImageForRepo(dir))
}

func TestImageForRepoPrefersFirstMatchInPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))

	assert.Equal(t, "python:3.12-slim", ImageForRepo(dir))
}

func TestEnumerateReposListsOnlyDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "repo-a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "repo-b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte(""), 0o644))

	samples, err := EnumerateRepos(root)

	require.NoError(t, err)
	assert.Len(t, samples, 2)
	names := map[string]bool{}
	for _, s := range samples {
		names[s.Name] = true
		assert.Equal(t, filepath.Join(root, s.Name), s.Path)
	}
	assert.True(t, names["repo-a"])
	assert.True(t, names["repo-b"])
}

func TestEnumerateReposErrorsOnMissingRoot(t *testing.T) {
	_, err := EnumerateRepos(filepath.Join(t.TempDir(), "does-not-exist"))

	assert.Error(t, err)
}
