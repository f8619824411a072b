package scancallback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New("scancallback-test", "error", "json")
}

func TestReportProgressPostsSequenceAndDiscoveryCount(t *testing.T) {
	var got progressPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New("scan-1", "nmap", server.URL, "", "", testLogger())
	c.IncrementDiscoveryCount(5)
	c.ReportProgress(context.Background(), "scanning", 40, "halfway")

	assert.Equal(t, "scan-1", got.ScanID)
	assert.Equal(t, "nmap", got.Collector)
	assert.Equal(t, int64(1), got.Sequence)
	assert.Equal(t, int64(5), got.DiscoveryCount)
	assert.Equal(t, 40, got.Progress)
}

func TestReportProgressSequenceIncrementsAcrossCalls(t *testing.T) {
	var sequences []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p progressPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		sequences = append(sequences, p.Sequence)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New("scan-1", "nmap", server.URL, "", "", testLogger())
	c.ReportProgress(context.Background(), "starting", 0, "")
	c.ReportProgress(context.Background(), "scanning", 50, "")

	assert.Equal(t, []int64{1, 2}, sequences)
}

func TestReportCompletePostsTerminalStatus(t *testing.T) {
	var got completionPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New("scan-1", "nmap", "", server.URL, "secret-key", testLogger())
	c.IncrementDiscoveryCount(3)
	c.ReportComplete(context.Background(), StatusCompleted, "")

	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, int64(3), got.DiscoveryCount)
}

func TestReportCompleteSendsAPIKeyHeader(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Internal-API-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New("scan-1", "nmap", "", server.URL, "secret-key", testLogger())
	c.ReportComplete(context.Background(), StatusFailed, "boom")

	assert.Equal(t, "secret-key", gotHeader)
}

func TestReportProgressSwallowsTransportErrors(t *testing.T) {
	c := New("scan-1", "nmap", "http://127.0.0.1:0", "", "", testLogger())

	assert.NotPanics(t, func() {
		c.ReportProgress(context.Background(), "scanning", 10, "")
	})
}

func TestReportSkipsPostWhenURLEmpty(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := New("scan-1", "nmap", "", "", "", testLogger())
	c.ReportProgress(context.Background(), "scanning", 10, "")

	assert.False(t, called)
}
