package dryrun

import "github.com/docker/docker/api/types/mount"

// mountSpec builds a read-only bind mount of hostPath onto target.
func mountSpec(hostPath, target string) mount.Mount {
	return mount.Mount{
		Type:     mount.TypeBind,
		Source:   hostPath,
		Target:   target,
		ReadOnly: true,
	}
}
