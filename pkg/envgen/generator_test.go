package envgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerate_DeterministicForSameSeed(t *testing.T) {
	a, err := Generate(42)
	require.NoError(t, err)
	b, err := Generate(42)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a, err := Generate(1)
	require.NoError(t, err)
	b, err := Generate(2)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGenerate_DisjointIPsAndPorts(t *testing.T) {
	m, err := Generate(7)
	require.NoError(t, err)

	seenIPs := map[string]bool{}
	seenPorts := map[int]bool{}
	for _, svc := range m.Services {
		require.False(t, seenIPs[svc.IP], "duplicate IP %s", svc.IP)
		seenIPs[svc.IP] = true
		require.NotEqual(t, gatewayIP, svc.IP)

		for _, p := range svc.Ports {
			require.False(t, seenPorts[p.Host], "duplicate host port %d", p.Host)
			seenPorts[p.Host] = true
		}
	}
}

func TestJSON_OnlyGeneratedAtDiffers(t *testing.T) {
	m, err := Generate(99)
	require.NoError(t, err)

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	out1, err := JSON(m, t1)
	require.NoError(t, err)
	out2, err := JSON(m, t2)
	require.NoError(t, err)

	require.NotEqual(t, out1, out2)

	m2, err := Generate(99)
	require.NoError(t, err)
	require.Equal(t, m, m2)
}

func TestComposeYAML_ValidStructure(t *testing.T) {
	m, err := Generate(5)
	require.NoError(t, err)

	data, err := ComposeYAML(m)
	require.NoError(t, err)
	require.Contains(t, string(data), "version:")
	require.Contains(t, string(data), composeNetworkName)
}
