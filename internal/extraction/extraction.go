// Package extraction normalizes heterogeneous office documents into tagged
// text segments for model analysis. Each supported document kind has one
// extractor; downstream stages only ever see types.NormalizedContent.
package extraction

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/daniel/docinsight/internal/types"
)

const (
	// maxContentChars caps the total extracted character count so a large
	// input cannot exhaust memory or blow the model's context budget.
	maxContentChars = 20000
	// truncationMarker is appended when extraction stops early
	truncationMarker = "[content truncated]"
)

// extensionKinds maps recognized file extensions to document kinds
var extensionKinds = map[string]types.DocumentKind{
	".pptx": types.KindSlides,
	".xlsx": types.KindSpreadsheet,
	".xlsm": types.KindSpreadsheet,
}

// DetectKind returns the document kind for a file name, or false if the
// extension is not recognized.
func DetectKind(name string) (types.DocumentKind, bool) {
	kind, ok := extensionKinds[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}

// Discover stats a path and builds its SourceDocument descriptor.
// Returns an UnsupportedFormat error for unrecognized extensions.
func Discover(path string) (*types.SourceDocument, error) {
	name := filepath.Base(path)
	kind, ok := DetectKind(name)
	if !ok {
		return nil, &ExtractionError{
			Kind:    KindUnsupportedFormat,
			Path:    path,
			Message: "unrecognized extension " + filepath.Ext(name),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ExtractionError{
			Kind:    KindCorruptFile,
			Path:    path,
			Message: "cannot stat file",
			Cause:   err,
		}
	}

	return &types.SourceDocument{
		Path: path,
		Name: name,
		Kind: kind,
		Size: info.Size(),
		Ext:  strings.ToLower(filepath.Ext(name)),
	}, nil
}

// Extract normalizes a source document into tagged text segments.
// Output order is deterministic for identical input: document order, then
// element order within each slide or sheet.
func Extract(doc *types.SourceDocument) (*types.NormalizedContent, error) {
	var (
		content *types.NormalizedContent
		err     error
	)

	switch doc.Kind {
	case types.KindSlides:
		content, err = extractSlides(doc.Path)
	case types.KindSpreadsheet:
		content, err = extractSpreadsheet(doc.Path)
	default:
		return nil, &ExtractionError{
			Kind:    KindUnsupportedFormat,
			Path:    doc.Path,
			Message: "no extractor for kind " + string(doc.Kind),
		}
	}
	if err != nil {
		return nil, err
	}

	if len(content.Segments) == 0 {
		return nil, &ExtractionError{
			Kind:    KindEmptyDocument,
			Path:    doc.Path,
			Message: "document contains no extractable content",
		}
	}

	applyBudget(content)
	return content, nil
}

// applyBudget enforces the global character cap, replacing overflow with an
// explicit truncation marker so partial extraction is always detectable.
func applyBudget(content *types.NormalizedContent) {
	total := 0
	for i, seg := range content.Segments {
		if total+len(seg.Text) <= maxContentChars {
			total += len(seg.Text)
			continue
		}

		keep := maxContentChars - total
		if keep < 0 {
			keep = 0
		}
		trimmed := seg.Text[:keep]
		kept := content.Segments[:i]
		if trimmed != "" {
			kept = append(kept, types.Segment{Label: seg.Label, Text: trimmed})
		}
		content.Segments = append(kept, types.Segment{Label: "truncation", Text: truncationMarker})
		content.Truncated = true
		total += len(trimmed)
		break
	}
	content.CharCount = total
}
