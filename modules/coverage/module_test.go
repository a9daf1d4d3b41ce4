package coverage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTracefile = `TN:
SF:src/index.ts
LF:100
LH:95
end_of_record
SF:src/util/fs.ts
LF:40
LH:20
end_of_record
SF:src/util/log.ts
LF:10
LH:3
end_of_record
`

func writeTracefile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lcov.info")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestOnRunCoverage_PassesAboveThreshold(t *testing.T) {
	t.Parallel()

	path := writeTracefile(t, sampleTracefile)

	_, err := OnRunCoverage(context.Background(), &Input{Tracefile: path, Threshold: 30})

	require.NoError(t, err)
}

func TestOnRunCoverage_ReportsEveryFileBelowThreshold(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeTracefile(t, sampleTracefile)

	// --- Act ---
	_, err := OnRunCoverage(context.Background(), &Input{Tracefile: path, Threshold: 90})

	// --- Assert ---
	// One error naming every source unit below the threshold, not just the first.
	require.Error(t, err)
	require.Contains(t, err.Error(), "src/util/fs.ts (50.0%)")
	require.Contains(t, err.Error(), "src/util/log.ts (30.0%)")
	require.NotContains(t, err.Error(), "src/index.ts")
}

func TestOnRunCoverage_FileWithNoLinesCountsAsCovered(t *testing.T) {
	t.Parallel()

	path := writeTracefile(t, "SF:src/empty.ts\nLF:0\nLH:0\nend_of_record\n")

	_, err := OnRunCoverage(context.Background(), &Input{Tracefile: path, Threshold: 100})

	require.NoError(t, err)
}

func TestOnRunCoverage_EmptyTracefileFails(t *testing.T) {
	t.Parallel()

	path := writeTracefile(t, "")

	_, err := OnRunCoverage(context.Background(), &Input{Tracefile: path, Threshold: 50})

	require.Error(t, err)
	require.Contains(t, err.Error(), "no coverage records")
}

func TestOnRunCoverage_MissingTracefileFails(t *testing.T) {
	t.Parallel()

	_, err := OnRunCoverage(context.Background(), &Input{Tracefile: filepath.Join(t.TempDir(), "nope.info"), Threshold: 50})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open tracefile")
}

func TestOnRunCoverage_MalformedRecordFails(t *testing.T) {
	t.Parallel()

	path := writeTracefile(t, "LF:10\n")

	_, err := OnRunCoverage(context.Background(), &Input{Tracefile: path, Threshold: 50})

	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed tracefile")
}
