package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{"spreadsheet", "report.xlsx", "report"},
		{"deck", "q3 results.pptx", "q3 results"},
		{"multiple dots", "report.v2.xlsx", "report.v2"},
		{"no extension", "report", "report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ProcessingRecord{SourceFile: SourceFileInfo{Name: tt.fileName}}
			assert.Equal(t, tt.want, rec.BaseName())
		})
	}
}

func TestNormalizedContentText(t *testing.T) {
	content := &NormalizedContent{
		Segments: []Segment{
			{Label: "slide 1 title", Text: "Roadmap"},
			{Label: "slide 1 body", Text: "Ship the thing"},
		},
	}

	text := content.Text()
	assert.Equal(t, "[slide 1 title] Roadmap\n[slide 1 body] Ship the thing\n", text)

	// Same input, same output: prompt construction must be reproducible.
	assert.Equal(t, text, content.Text())
}
