package dryrun

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
)

// DockerClient wraps the Docker SDK client with the network/container
// lifecycle operations the orchestrator needs.
type DockerClient struct {
	api *client.Client
}

func NewDockerClient() (*DockerClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerClient{api: cli}, nil
}

func (d *DockerClient) Close() error {
	return d.api.Close()
}

// EnsureNetwork creates the shared bridge network if it does not already
// exist.
func (d *DockerClient) EnsureNetwork(ctx context.Context, name string) (string, error) {
	nets, err := d.api.NetworkList(ctx, types.NetworkListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return "", fmt.Errorf("list networks: %w", err)
	}
	for _, n := range nets {
		if n.Name == name {
			return n.ID, nil
		}
	}
	created, err := d.api.NetworkCreate(ctx, name, types.NetworkCreate{Driver: "bridge"})
	if err != nil {
		return "", fmt.Errorf("create network %s: %w", name, err)
	}
	return created.ID, nil
}

// RunRepoContainer creates and starts one idle, labelled container for a
// repository, with a read-only bind mount of its host path onto
// /app/<name>.
func (d *DockerClient) RunRepoContainer(ctx context.Context, networkName, image, containerName, hostPath, repoName string, labels map[string]string) (string, error) {
	mountTarget := "/app/" + repoName

	cfg := &container.Config{
		Image:  image,
		Cmd:    []string{"tail", "-f", "/dev/null"},
		Labels: labels,
	}
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{mountSpec(hostPath, mountTarget)},
	}
	netCfg := &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			networkName: {},
		},
	}

	resp, err := d.api.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, containerName)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", containerName, err)
	}
	if err := d.api.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("start container %s: %w", containerName, err)
	}
	return resp.ID, nil
}

// ContainersByLabel lists containers (running or not) matching a
// dryrun.session_id label value.
func (d *DockerClient) ContainersByLabel(ctx context.Context, sessionID string) ([]types.Container, error) {
	containers, err := d.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", fmt.Sprintf("%s=%s", LabelSessionID, sessionID))),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers for session %s: %w", sessionID, err)
	}
	return containers, nil
}

// StopAndRemove stops (10s timeout) then removes one container. Partial
// failures are returned to the caller for aggregation.
func (d *DockerClient) StopAndRemove(ctx context.Context, containerID string) error {
	timeout := 10
	if err := d.api.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stop container %s: %w", containerID, err)
	}
	if err := d.api.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
		return fmt.Errorf("remove container %s: %w", containerID, err)
	}
	return nil
}
