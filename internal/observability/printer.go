// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/daniel/docinsight/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintExtraction outputs a short description of extracted content
func (p *Printer) PrintExtraction(doc *types.SourceDocument, content *types.NormalizedContent) {
	if content == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:      %s\n", doc.Kind))
	sb.WriteString(fmt.Sprintf("Segments:  %d\n", len(content.Segments)))
	sb.WriteString(fmt.Sprintf("Chars:     %d\n", content.CharCount))
	if content.Truncated {
		sb.WriteString("Truncated: yes\n")
	}
	for i, seg := range content.Segments {
		if i == maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more segments\n", len(content.Segments)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  %s (%d chars)\n", seg.Label, len(seg.Text)))
	}

	p.printBox("Extracted: "+doc.Name, sb.String())
}

// PrintAnalysis outputs a human-readable summary of a model analysis
func (p *Printer) PrintAnalysis(name string, result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Error != nil {
		sb.WriteString(fmt.Sprintf("Failed at %s: %s\n", result.Error.Stage, result.Error.Kind))
		p.printBox("Analysis: "+name, sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Summary: %s\n", result.Summary))
	sb.WriteString(fmt.Sprintf("Insights (%d):\n", len(result.Insights)))
	for _, insight := range result.Insights {
		sb.WriteString("  - " + insight + "\n")
	}
	sb.WriteString(fmt.Sprintf("Recommendations (%d):\n", len(result.Recommendations)))
	for _, rec := range result.Recommendations {
		sb.WriteString("  - " + rec + "\n")
	}
	if result.Execution != nil {
		status := "ok"
		if !result.Execution.Success {
			status = "failed: " + result.Execution.Error.Kind
		}
		sb.WriteString(fmt.Sprintf("Code execution: %s (%s)\n", status, result.Execution.Duration.Round(1e6)))
	}

	p.printBox("Analysis: "+name, sb.String())
}

// PrintSummary outputs the batch outcome
func (p *Printer) PrintSummary(summary *types.BatchSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed: %d\n", summary.Processed))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", summary.Failed))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s\n", summary.Elapsed.Round(1e6)))
	sb.WriteString(fmt.Sprintf("Output:    %s\n", summary.OutputDir))
	for _, failure := range summary.Failures {
		sb.WriteString(fmt.Sprintf("  ✗ %s (%s)\n", failure.File, failure.Kind))
	}

	p.printBox("Batch complete", sb.String())
}
