package extraction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/daniel/docinsight/internal/types"
)

const (
	// maxSampleRows bounds the number of rows sampled per sheet so a large
	// workbook cannot dominate the prompt.
	maxSampleRows = 40
	// maxFormulaCells bounds how many formula cells are reported per sheet
	maxFormulaCells = 25
)

// extractSpreadsheet walks every sheet of a workbook in order, sampling a
// bounded number of rows, computing per-column numeric statistics, and
// capturing formula cells as raw formula text (never evaluated).
func extractSpreadsheet(path string) (*types.NormalizedContent, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ExtractionError{
			Kind:    KindCorruptFile,
			Path:    path,
			Message: "not a readable workbook",
			Cause:   err,
		}
	}
	defer func() { _ = f.Close() }()

	content := &types.NormalizedContent{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &ExtractionError{
				Kind:    KindCorruptFile,
				Path:    path,
				Message: fmt.Sprintf("cannot read sheet %q", sheet),
				Cause:   err,
			}
		}
		if len(rows) == 0 {
			continue
		}

		sampled := rows
		sampleTruncated := false
		if len(sampled) > maxSampleRows {
			sampled = sampled[:maxSampleRows]
			sampleTruncated = true
		}

		var lines []string
		for _, row := range sampled {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		if sampleTruncated {
			lines = append(lines, fmt.Sprintf("[%d more rows not shown]", len(rows)-maxSampleRows))
			content.Truncated = true
		}
		content.Segments = append(content.Segments, types.Segment{
			Label: fmt.Sprintf("sheet %s rows", sheet),
			Text:  strings.Join(lines, "\n"),
		})

		stats := columnStats(sheet, sampled)
		if len(stats) > 0 {
			content.Stats = append(content.Stats, stats...)
			content.Segments = append(content.Segments, types.Segment{
				Label: fmt.Sprintf("sheet %s column stats", sheet),
				Text:  formatStats(stats),
			})
		}

		formulas, err := collectFormulas(f, sheet, len(sampled))
		if err == nil && len(formulas) > 0 {
			content.Segments = append(content.Segments, types.Segment{
				Label: fmt.Sprintf("sheet %s formulas", sheet),
				Text:  strings.Join(formulas, "\n"),
			})
		}
	}

	return content, nil
}

// columnStats computes count/min/max/mean for each column that holds at
// least one numeric value. The first row is treated as a header when it is
// entirely non-numeric.
func columnStats(sheet string, rows [][]string) []types.ColumnStats {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	dataStart := 0
	if isHeaderRow(header) {
		dataStart = 1
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var stats []types.ColumnStats
	for col := 0; col < width; col++ {
		var (
			count int
			sum   float64
			min   float64
			max   float64
		)
		for i := dataStart; i < len(rows); i++ {
			if col >= len(rows[i]) {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(rows[i][col], ",", ""), 64)
			if err != nil {
				continue
			}
			if count == 0 || v < min {
				min = v
			}
			if count == 0 || v > max {
				max = v
			}
			sum += v
			count++
		}
		if count == 0 {
			continue
		}

		name, _ := excelize.ColumnNumberToName(col + 1)
		if dataStart == 1 && col < len(header) && strings.TrimSpace(header[col]) != "" {
			name = strings.TrimSpace(header[col])
		}
		stats = append(stats, types.ColumnStats{
			Sheet:  sheet,
			Column: name,
			Count:  count,
			Min:    min,
			Max:    max,
			Mean:   sum / float64(count),
		})
	}
	return stats
}

// isHeaderRow reports whether a row looks like column labels rather than data
func isHeaderRow(row []string) bool {
	seen := false
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err == nil {
			return false
		}
	}
	return seen
}

func formatStats(stats []types.ColumnStats) string {
	lines := make([]string, 0, len(stats))
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%s: count=%d min=%g max=%g mean=%.4g", s.Column, s.Count, s.Min, s.Max, s.Mean))
	}
	return strings.Join(lines, "\n")
}

// collectFormulas scans the sampled region for cells holding formulas and
// returns them as "ref = formula" lines, raw and unevaluated.
func collectFormulas(f *excelize.File, sheet string, sampledRows int) ([]string, error) {
	cols, err := f.GetCols(sheet)
	if err != nil {
		return nil, err
	}

	var formulas []string
	for c := range cols {
		for r := 0; r < sampledRows && len(formulas) < maxFormulaCells; r++ {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			formula, err := f.GetCellFormula(sheet, cell)
			if err != nil || formula == "" {
				continue
			}
			formulas = append(formulas, fmt.Sprintf("%s = %s", cell, formula))
		}
	}
	return formulas, nil
}
