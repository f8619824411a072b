// Package dryrun implements the session-scoped dry-run orchestrator: it
// spins up labelled workload containers on a shared Docker network, triggers
// a collector against them, and tears them down by label query.
package dryrun

import (
	"regexp"

	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateSessionID enforces the session_id grammar at the model boundary,
// keeping it safe as a Docker object name suffix.
func ValidateSessionID(sessionID string) error {
	if !sessionIDPattern.MatchString(sessionID) {
		return svcerrors.Validation("session_id must match ^[A-Za-z0-9_-]{1,64}$")
	}
	return nil
}

// Labels applied to every container owned by a session.
const (
	LabelSessionID     = "dryrun.session_id"
	LabelRepoName      = "dryrun.repo_name"
	LabelDiscoveryType = "discovery.type"

	DiscoveryTypeCodeRepo = "code-repo"
)

func sessionLabels(sessionID, repoName string) map[string]string {
	return map[string]string{
		LabelSessionID:     sessionID,
		LabelRepoName:      repoName,
		LabelDiscoveryType: DiscoveryTypeCodeRepo,
	}
}
