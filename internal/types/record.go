package types

import "time"

// SourceFileInfo is the persisted descriptor of the analyzed input file
type SourceFileInfo struct {
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Type      DocumentKind `json:"type"`
	SizeBytes int64        `json:"size_bytes"`
}

// RecordMetadata carries provenance for a stored record
type RecordMetadata struct {
	ToolVersion string `json:"tool_version"`
	Model       string `json:"model"`
	DurationMS  int64  `json:"duration_ms"`
}

// ProcessingRecord is the unit written to durable storage: one per input
// file, named from Timestamp and the source base name, written exactly once
// and never mutated afterwards.
type ProcessingRecord struct {
	RunID       string         `json:"run_id"`
	Timestamp   time.Time      `json:"-"`
	GeneratedAt string         `json:"generated_at"`
	SourceFile  SourceFileInfo `json:"source_file"`
	Analysis    AnalysisResult `json:"analysis"`
	Metadata    RecordMetadata `json:"metadata"`
}

// BaseName returns the source file name without its extension, used in the
// stored file name.
func (r *ProcessingRecord) BaseName() string {
	name := r.SourceFile.Name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}
