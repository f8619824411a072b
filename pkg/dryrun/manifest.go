package dryrun

import (
	"os"
	"path/filepath"
)

// manifestImages maps a manifest filename present at a repository's root to
// the image used to run it.
var manifestImages = []struct {
	file  string
	image string
}{
	{"requirements.txt", "python:3.12-slim"},
	{"pyproject.toml", "python:3.12-slim"},
	{"package.json", "node:20-slim"},
	{"go.mod", "golang:1.23-alpine"},
	{"pom.xml", "maven:3.9-eclipse-temurin-21"},
	{"build.gradle", "gradle:8-jdk21"},
	{"Gemfile", "ruby:3.3-slim"},
	{"composer.json", "php:8.3-cli"},
}

const defaultImage = "alpine:3.20"

// ImageForRepo inspects repoPath for a known manifest file and returns the
// matching image, or the default image if none is found.
func ImageForRepo(repoPath string) string {
	for _, m := range manifestImages {
		if _, err := os.Stat(filepath.Join(repoPath, m.file)); err == nil {
			return m.image
		}
	}
	return defaultImage
}

// RepoSample is one repository directory discovered under the configured
// sample path.
type RepoSample struct {
	Name string
	Path string
}

// EnumerateRepos lists immediate subdirectories of root as repository
// samples.
func EnumerateRepos(root string) ([]RepoSample, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	samples := make([]RepoSample, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		samples = append(samples, RepoSample{Name: e.Name(), Path: filepath.Join(root, e.Name())})
	}
	return samples, nil
}
