// Package types provides type definitions for structured data used throughout the docinsight system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DocumentKind classifies a source document by its container format
type DocumentKind string

// Document kinds recognized by the pipeline
const (
	// KindSlides is a presentation deck (.pptx)
	KindSlides DocumentKind = "Slides"
	// KindSpreadsheet is a workbook (.xlsx, .xlsm)
	KindSpreadsheet DocumentKind = "Spreadsheet"
)

// SourceDocument describes one discovered input file.
// Kind is derived from the extension at discovery time and never changes.
type SourceDocument struct {
	Path string       `json:"path"`
	Name string       `json:"name"`
	Kind DocumentKind `json:"kind"`
	Size int64        `json:"size"`
	Ext  string       `json:"ext"`
}

// Segment is one tagged text fragment produced by extraction.
// Label records provenance, e.g. "slide 3 title" or "sheet Revenue rows".
type Segment struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ColumnStats holds lightweight statistics for one numeric spreadsheet column
type ColumnStats struct {
	Sheet  string  `json:"sheet"`
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// NormalizedContent is the single tagged-text representation all document
// kinds collapse into before model analysis. It is never empty for a
// successful extraction.
type NormalizedContent struct {
	Segments  []Segment     `json:"segments"`
	Stats     []ColumnStats `json:"stats,omitempty"`
	CharCount int           `json:"char_count"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Text concatenates all segments in order into the prompt-ready form.
// Segment order is deterministic for a given input, so this is stable
// across runs.
func (c *NormalizedContent) Text() string {
	n := 0
	for _, seg := range c.Segments {
		n += len(seg.Label) + len(seg.Text) + 4
	}
	buf := make([]byte, 0, n)
	for _, seg := range c.Segments {
		buf = append(buf, '[')
		buf = append(buf, seg.Label...)
		buf = append(buf, "] "...)
		buf = append(buf, seg.Text...)
		buf = append(buf, '\n')
	}
	return string(buf)
}
