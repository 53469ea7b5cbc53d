package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/docinsight/internal/types"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantKind types.DocumentKind
		wantOK   bool
	}{
		{"pptx", "deck.pptx", types.KindSlides, true},
		{"pptx upper case", "DECK.PPTX", types.KindSlides, true},
		{"xlsx", "report.xlsx", types.KindSpreadsheet, true},
		{"xlsm", "macros.xlsm", types.KindSpreadsheet, true},
		{"legacy ppt", "old.ppt", "", false},
		{"text file", "notes.txt", "", false},
		{"no extension", "README", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := DetectKind(tt.fileName)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func TestDiscoverUnsupportedFormat(t *testing.T) {
	_, err := Discover("/tmp/whatever.txt")
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, KindUnsupportedFormat, exErr.Kind)
}

func TestApplyBudget(t *testing.T) {
	t.Run("under budget untouched", func(t *testing.T) {
		content := &types.NormalizedContent{
			Segments: []types.Segment{{Label: "slide 1 body", Text: "short"}},
		}
		applyBudget(content)
		assert.False(t, content.Truncated)
		assert.Equal(t, 5, content.CharCount)
		assert.Len(t, content.Segments, 1)
	})

	t.Run("over budget truncates with marker", func(t *testing.T) {
		content := &types.NormalizedContent{
			Segments: []types.Segment{
				{Label: "sheet A rows", Text: strings.Repeat("a", maxContentChars)},
				{Label: "sheet B rows", Text: "overflow"},
			},
		}
		applyBudget(content)
		assert.True(t, content.Truncated)
		last := content.Segments[len(content.Segments)-1]
		assert.Equal(t, "truncation", last.Label)
		assert.Equal(t, truncationMarker, last.Text)
		assert.LessOrEqual(t, content.CharCount, maxContentChars)
	})

	t.Run("segment split at budget boundary", func(t *testing.T) {
		content := &types.NormalizedContent{
			Segments: []types.Segment{
				{Label: "sheet A rows", Text: strings.Repeat("a", maxContentChars-10)},
				{Label: "sheet B rows", Text: strings.Repeat("b", 100)},
			},
		}
		applyBudget(content)
		assert.True(t, content.Truncated)
		// The second segment survives partially, before the marker.
		assert.Equal(t, "sheet B rows", content.Segments[1].Label)
		assert.Len(t, content.Segments[1].Text, 10)
	})
}

func TestColumnStats(t *testing.T) {
	rows := [][]string{
		{"Region", "Revenue", "Units"},
		{"North", "1200.5", "10"},
		{"South", "800", "4"},
		{"West", "", "7"},
	}

	stats := columnStats("Sales", rows)
	require.Len(t, stats, 2)

	assert.Equal(t, "Revenue", stats[0].Column)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 800.0, stats[0].Min)
	assert.Equal(t, 1200.5, stats[0].Max)
	assert.InDelta(t, 1000.25, stats[0].Mean, 0.001)

	assert.Equal(t, "Units", stats[1].Column)
	assert.Equal(t, 3, stats[1].Count)
}

func TestColumnStatsNoHeader(t *testing.T) {
	rows := [][]string{
		{"1", "2"},
		{"3", "4"},
	}

	stats := columnStats("Sheet1", rows)
	require.Len(t, stats, 2)
	// Without a header row the column letter is used.
	assert.Equal(t, "A", stats[0].Column)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 1.0, stats[0].Min)
	assert.Equal(t, 3.0, stats[0].Max)
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, isHeaderRow([]string{"Region", "Revenue"}))
	assert.False(t, isHeaderRow([]string{"Region", "1200"}))
	assert.False(t, isHeaderRow([]string{"", ""}))
	assert.True(t, isHeaderRow([]string{"", "Total"}))
}
