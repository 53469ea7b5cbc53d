package types

import "time"

// MaxInsights bounds the number of insight strings kept from a model response
const MaxInsights = 5

// AnalysisResult is the validated output of one model analysis.
// On success Summary is non-empty and Error is nil; when an upstream stage
// failed, Error carries the captured failure and the other fields are zero.
// GeneratedCode absent implies Execution absent.
type AnalysisResult struct {
	Summary         string            `json:"summary"`
	Insights        []string          `json:"insights"`
	Recommendations []string          `json:"recommendations"`
	GeneratedCode   string            `json:"generated_code,omitempty"`
	Execution       *ExecutionOutcome `json:"execution,omitempty"`
	Error           *CapturedError    `json:"error,omitempty"`
}

// CapturedError records a stage failure inside a persisted record instead of
// aborting the batch.
type CapturedError struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ExecError describes a failure raised while running generated code
type ExecError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ExecutionOutcome is the result of running model-generated code in the
// sandbox. Success true implies Error nil.
type ExecutionOutcome struct {
	Success         bool          `json:"success"`
	Output          string        `json:"output,omitempty"`
	OutputTruncated bool          `json:"output_truncated,omitempty"`
	Error           *ExecError    `json:"error,omitempty"`
	Duration        time.Duration `json:"duration_ns"`
}
