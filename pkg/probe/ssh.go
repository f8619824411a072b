// Package probe implements the infra-probe's SSH session harness: connect,
// run a fixed command set, and pack system-derived results — never
// credentials — into a Result.
package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
	"github.com/r3e-network/discovery-pipeline/pkg/credentials"
)

// Config bounds the probe's connection and per-command timeouts.
type Config struct {
	SessionTimeout time.Duration
	CommandTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		SessionTimeout: 15 * time.Second,
		CommandTimeout: 5 * time.Second,
	}
}

// command is one fixed diagnostic command run against the target.
type command struct {
	field string
	cmd string
}

var commands = []command{
	{"hostname", "hostname"},
	{"os_release", "cat /etc/os-release"},
	{"kernel_release", "uname -r"},
	{"architecture", "uname -m"},
	{"cpu_count", "nproc"},
	{"cpu_model", "grep 'model name' /proc/cpuinfo"},
	{"memory_gb", "free -g"},
	{"disk_usage_root", "df -BG /"},
	{"virtualization", "systemd-detect-virt"},
	{"packages", "dpkg-query -W || rpm -qa"},
	{"running_services", "systemctl list-units --type=service --state=running"},
	{"network_addrs", "ip -o addr"},
	{"routes", "ip route"},
	{"resolv_conf", "cat /etc/resolv.conf"},
}

// Probe opens an SSH session to target:port with creds, runs the fixed
// command set, and returns a Result. creds is cleared on every exit path,
// including failure, before the result is returned — per the credential
// non-disclosure property.
func Probe(ctx context.Context, cfg Config, targetIP string, port int, creds credentials.Credentials) (Result, error) {
	defer creds.Clear()

	clientCfg, err := buildClientConfig(creds, cfg.SessionTimeout)
	if err != nil {
		return Result{}, svcerrors.CredentialSafe("failed to build ssh client config", err)
	}

	addr := fmt.Sprintf("%s:%d", targetIP, port)
	dialer := net.Dialer{Timeout: cfg.SessionTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, svcerrors.CredentialSafe("ssh dial failed", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		conn.Close()
		return Result{}, svcerrors.CredentialSafe("ssh handshake failed", err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	result := Result{TargetIP: targetIP, CommandErrors: map[string]string{}}
	for _, c := range commands {
		out, runErr := runCommand(client, c.cmd, cfg.CommandTimeout)
		if runErr != nil {
			result.CommandErrors[c.field] = fmt.Sprintf("%T", runErr)
			continue
		}
		assignField(&result, c.field, strings.TrimSpace(out))
	}
	if len(result.CommandErrors) == 0 {
		result.CommandErrors = nil
	}
	return result, nil
}

func buildClientConfig(creds credentials.Credentials, timeout time.Duration) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	if creds.UsesKey() {
		signer, err := parseSigner(creds)
		if err != nil {
			return nil, err
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	} else {
		authMethods = append(authMethods, ssh.Password(creds.Password.ExposeSecret()))
	}

	return &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

func parseSigner(creds credentials.Credentials) (ssh.Signer, error) {
	key := []byte(creds.PrivateKey.ExposeSecret())
	if creds.Passphrase.IsEmpty() {
		return ssh.ParsePrivateKey(key)
	}
	return ssh.ParsePrivateKeyWithPassphrase(key, []byte(creds.Passphrase.ExposeSecret()))
}

func runCommand(client *ssh.Client, cmd string, timeout time.Duration) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		return string(r.out), nil
	case <-time.After(timeout):
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timed out after %s", timeout)
	}
}

func assignField(r *Result, field, value string) {
	switch field {
	case "hostname":
		r.Hostname = value
	case "os_release":
		r.OSRelease = value
	case "kernel_release":
		r.KernelRelease = value
	case "architecture":
		r.Architecture = value
	case "cpu_count":
		r.CPUCount = value
	case "cpu_model":
		r.CPUModel = value
	case "memory_gb":
		r.MemoryGB = value
	case "disk_usage_root":
		r.DiskUsageRoot = value
	case "virtualization":
		r.Virtualization = value
	case "packages":
		r.Packages = value
	case "running_services":
		r.RunningServices = value
	case "network_addrs":
		r.NetworkAddrs = value
	case "routes":
		r.Routes = value
	case "resolv_conf":
		r.ResolvConf = value
	}
}
