package main_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "plcqa-e2e")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(dir, "plcqa")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		panic("build failed: " + string(out))
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// fixturePath copies a fixture tree into a temp dir; runs write history
// under the analyzed root.
func fixturePath(t *testing.T, name string) string {
	t.Helper()
	src := filepath.Join("../../testdata/twincat", name)
	dst := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.CopyFS(dst, os.DirFS(src)))
	return dst
}

func run(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return outBuf.String(), errBuf.String(), exitCode
}

// --- Analyze Tests ---

func TestE2E_Analyze(t *testing.T) {
	out, _, code := run(t, "analyze", fixturePath(t, "new"))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "plcqa")
	assert.Contains(t, out, "6 issues")
}

func TestE2E_AnalyzeJSON(t *testing.T) {
	out, _, code := run(t, "analyze", fixturePath(t, "new"), "--json")
	assert.Equal(t, 0, code)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Summary.TotalFiles)
	assert.Equal(t, 6, report.Summary.TotalIssues)
}

func TestE2E_AnalyzeCI(t *testing.T) {
	_, stderr, code := run(t, "analyze", fixturePath(t, "new"), "--ci")
	assert.Equal(t, 1, code, "should exit 1 when critical issues exist")
	assert.Contains(t, stderr, "Error: 2 issues at or above critical severity")
}

func TestE2E_AnalyzeMissingRoot(t *testing.T) {
	_, stderr, code := run(t, "analyze", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "project root is not accessible")
}

// --- Compare Tests ---

func TestE2E_CompareJSON(t *testing.T) {
	out, _, code := run(t, "compare", fixturePath(t, "old"), fixturePath(t, "new"), "--json")
	assert.Equal(t, 0, code)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.ModeCompare, report.Mode)
	assert.Len(t, report.FileChanges, 3)
	assert.Len(t, report.VariableChanges, 5)
}

// --- Other Commands ---

func TestE2E_Rules(t *testing.T) {
	out, _, code := run(t, "rules", t.TempDir())
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "QA001")
}

func TestE2E_InitThenAnalyze(t *testing.T) {
	dir := fixturePath(t, "new")
	_, _, code := run(t, "init", dir)
	require.Equal(t, 0, code)

	_, err := os.Stat(filepath.Join(dir, ".plcqa.yaml"))
	require.NoError(t, err)

	_, _, code = run(t, "analyze", dir, "--json")
	assert.Equal(t, 0, code)
}

func TestE2E_Version(t *testing.T) {
	out, _, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "plcqa")
}
