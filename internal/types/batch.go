package types

import "time"

// FileFailure names a file the batch could not fully process and why
type FileFailure struct {
	File string `json:"file"`
	Kind string `json:"kind"`
}

// BatchSummary aggregates the outcome of one coordinator run
type BatchSummary struct {
	Processed   int           `json:"processed"`
	Failed      int           `json:"failed"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	StoredPaths []string      `json:"stored_paths"`
	Failures    []FileFailure `json:"failures,omitempty"`
	OutputDir   string        `json:"output_dir"`
}
