package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/plcqa/plcqa/internal/adapters/outbound/history"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		Timestamp:  "2026-02-25T10:00:00Z",
		CommitHash: "abc1234",
		Mode:       domain.ModeSingle,
		Files:      12,
		Issues:     7,
		Critical:   2,
		Warning:    3,
		Info:       2,
	}

	err := h.Save(dir, entry)
	require.NoError(t, err)

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t1", Issues: 40}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t2", Issues: 25}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t3", Issues: 9}))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 40, entries[0].Issues)
	assert.Equal(t, 9, entries[2].Issues)
}

func TestHistory_KeepsMostRecentEntries(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	for i := 0; i < 205; i++ {
		require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: fmt.Sprintf("t%d", i)}))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 200)
	assert.Equal(t, "t5", entries[0].Timestamp)
	assert.Equal(t, "t204", entries[199].Timestamp)
}

func TestHistory_LoadEmpty(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entries, err := h.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".plcqa", "history", "runs.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("not json"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "runs.json")
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedDir := filepath.Join(dir, "deep", "nested")
	h := history.New()

	require.NoError(t, h.Save(nestedDir, domain.RunEntry{Timestamp: "t1"}))

	_, err := os.Stat(filepath.Join(nestedDir, ".plcqa", "history", "runs.json"))
	assert.NoError(t, err)
}
