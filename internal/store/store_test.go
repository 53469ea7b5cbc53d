package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/docinsight/internal/types"
)

func testRecord(name string, ts time.Time) *types.ProcessingRecord {
	return &types.ProcessingRecord{
		RunID:       "00000000-0000-0000-0000-000000000001",
		Timestamp:   ts,
		GeneratedAt: ts.Format(time.RFC3339),
		SourceFile: types.SourceFileInfo{
			Name:      name,
			Path:      "/in/" + name,
			Type:      types.KindSpreadsheet,
			SizeBytes: 2048,
		},
		Analysis: types.AnalysisResult{
			Summary:         "a summary",
			Insights:        []string{"one"},
			Recommendations: []string{"two"},
		},
		Metadata: types.RecordMetadata{ToolVersion: "test", Model: "m", DurationMS: 5},
	}
}

func TestPersistNaming(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	ts := time.Date(2024, 9, 4, 14, 30, 52, 0, time.UTC)
	path, err := s.Persist(testRecord("report.xlsx", ts))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "20240904_143052_report.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	source := stored["source_file"].(map[string]any)
	assert.Equal(t, "report.xlsx", source["name"])
	assert.Equal(t, "Spreadsheet", source["type"])
	analysisSection := stored["analysis"].(map[string]any)
	assert.Equal(t, "a summary", analysisSection["summary"])
}

func TestPersistSameSecondCollision(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	ts := time.Date(2024, 9, 4, 14, 30, 52, 0, time.UTC)
	first, err := s.Persist(testRecord("report.xlsx", ts))
	require.NoError(t, err)
	second, err := s.Persist(testRecord("report.xlsx", ts))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, "20240904_143052_report_1.json"))

	// Neither write clobbered the other.
	firstData, err := os.ReadFile(first)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.NotEmpty(t, firstData)
	assert.NotEmpty(t, secondData)
}

func TestPersistCollisionExhaustion(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	ts := time.Date(2024, 9, 4, 14, 30, 52, 0, time.UTC)
	for i := 0; i <= maxCollisionSuffix; i++ {
		_, err := s.Persist(testRecord("report.xlsx", ts))
		require.NoError(t, err)
	}

	_, err := s.Persist(testRecord("report.xlsx", ts))
	require.Error(t, err)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindNameCollision, pe.Kind)
}

func TestPersistWriteFailure(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does", "not", "exist"))

	_, err := s.Persist(testRecord("report.xlsx", time.Now()))
	require.Error(t, err)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindWriteFailure, pe.Kind)
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	_, err := s.Persist(testRecord("report.xlsx", time.Now()))
	require.NoError(t, err)
	_, err = s.Persist(testRecord("report.xlsx", time.Now()))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".tmp-"), "temp file %s left behind", entry.Name())
	}
}
