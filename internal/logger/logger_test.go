package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	captureOutput(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	buf := captureOutput(t, true)

	Debug("loading %s", "posts")
	Info("found %d files", 3)
	Warn("skipped file")

	assert.Equal(t, "[DEBUG] loading posts\n[INFO] found 3 files\n[WARN] skipped file\n", buf.String())
}

func TestLevels_WhenQuiet(t *testing.T) {
	buf := captureOutput(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestError_AlwaysWritten(t *testing.T) {
	buf := captureOutput(t, false)

	Error("git failed: %v", "exit 128")

	assert.Equal(t, "[ERROR] git failed: exit 128\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := captureOutput(t, true)

	Section("Export")

	assert.Equal(t, "\n=== Export ===\n", buf.String())
}

func TestNamed(t *testing.T) {
	t.Run("prefixes component", func(t *testing.T) {
		buf := captureOutput(t, true)

		Named("watcher").Info("change in %s", "posts/a.md")

		assert.Equal(t, "[INFO] watcher: change in posts/a.md\n", buf.String())
	})

	t.Run("error ignores verbose flag", func(t *testing.T) {
		buf := captureOutput(t, false)

		log := Named("scheduler")
		log.Debug("hidden")
		log.Error("task %s failed", "export-batch")

		assert.Equal(t, "[ERROR] scheduler: task export-batch failed\n", buf.String())
	})
}

func TestConcurrentAccess(t *testing.T) {
	captureOutput(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			_ = IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
