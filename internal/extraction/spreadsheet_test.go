package extraction

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/daniel/docinsight/internal/types"
)

// writeWorkbook authors a test workbook on disk and returns its document
func writeWorkbook(t *testing.T, name string, build func(f *excelize.File)) *types.SourceDocument {
	t.Helper()

	f := excelize.NewFile()
	if build != nil {
		build(f)
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	doc, err := Discover(path)
	require.NoError(t, err)
	return doc
}

func TestExtractSpreadsheet(t *testing.T) {
	doc := writeWorkbook(t, "report.xlsx", func(f *excelize.File) {
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Region", "Revenue"}))
		require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"North", 1200.5}))
		require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"South", 800}))
		require.NoError(t, f.SetCellFormula("Sheet1", "B4", "SUM(B2:B3)"))

		_, err := f.NewSheet("Notes")
		require.NoError(t, err)
		require.NoError(t, f.SetCellStr("Notes", "A1", "Q3 looked strong"))
	})

	content, err := Extract(doc)
	require.NoError(t, err)
	require.NotEmpty(t, content.Segments)

	labels := make([]string, 0, len(content.Segments))
	for _, seg := range content.Segments {
		labels = append(labels, seg.Label)
	}
	assert.Contains(t, labels, "sheet Sheet1 rows")
	assert.Contains(t, labels, "sheet Sheet1 column stats")
	assert.Contains(t, labels, "sheet Sheet1 formulas")
	assert.Contains(t, labels, "sheet Notes rows")

	require.NotEmpty(t, content.Stats)
	revenue := content.Stats[0]
	assert.Equal(t, "Revenue", revenue.Column)
	assert.Equal(t, 2, revenue.Count)
	assert.Equal(t, 800.0, revenue.Min)
	assert.Equal(t, 1200.5, revenue.Max)

	var formulaText string
	for _, seg := range content.Segments {
		if seg.Label == "sheet Sheet1 formulas" {
			formulaText = seg.Text
		}
	}
	assert.Contains(t, formulaText, "B4 = SUM(B2:B3)")

	// Identical input yields identical segment order.
	again, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, content.Segments, again.Segments)
}

func TestExtractSpreadsheetEmpty(t *testing.T) {
	doc := writeWorkbook(t, "empty.xlsx", nil)

	_, err := Extract(doc)
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, KindEmptyDocument, exErr.Kind)
}

func TestExtractSpreadsheetCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, writeTestFile(path, []byte("this is not a zip archive")))

	doc, err := Discover(path)
	require.NoError(t, err)

	_, err = Extract(doc)
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, KindCorruptFile, exErr.Kind)
}
