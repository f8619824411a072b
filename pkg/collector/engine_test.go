package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
)

type fakeAnalyzer struct {
	failIndex int
	calls     int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, target int) ([]Record, error) {
	f.calls++
	if target == f.failIndex {
		return nil, errors.New("boom")
	}
	return []Record{{Entity: "repository", Data: map[string]interface{}{"n": target}}}, nil
}

func TestCompletionStatus(t *testing.T) {
	status, msg := completionStatus(0, 5)
	assert.Equal(t, "completed", status)
	assert.Empty(t, msg)

	status, msg = completionStatus(1, 5)
	assert.Equal(t, "partial", status)
	assert.Equal(t, "1/5 targets failed analysis", msg)

	status, _ = completionStatus(5, 5)
	assert.Equal(t, "failed", status)
}

func TestEnginePartialFailureContinuesScan(t *testing.T) {
	analyzer := &fakeAnalyzer{failIndex: 2}
	engine := &Engine[int]{
		CollectorName: "codeanalyzer",
		Logger:        logging.New("test", "error", "text"),
		Analyzer:      analyzer,
	}

	engine.Run(context.Background(), ScanRequest{ScanID: "scan-1"}, []int{0, 1, 2, 3, 4})

	assert.Equal(t, 5, analyzer.calls)
}
