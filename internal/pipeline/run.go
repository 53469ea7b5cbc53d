// Package pipeline provides the high-level orchestration for the document
// analysis process: discover files, extract, analyze, execute generated
// code, persist. Files are independent units of work; a failure on one never
// stops the others.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daniel/docinsight/internal/analysis"
	"github.com/daniel/docinsight/internal/db"
	"github.com/daniel/docinsight/internal/extraction"
	"github.com/daniel/docinsight/internal/llm"
	"github.com/daniel/docinsight/internal/observability"
	"github.com/daniel/docinsight/internal/sandbox"
	"github.com/daniel/docinsight/internal/store"
	"github.com/daniel/docinsight/internal/types"
)

// Options holds configuration for running a batch
type Options struct {
	InputDir    string
	OutputDir   string
	Client      llm.Client
	Workers     int
	ExecTimeout time.Duration
	Verbose     bool
	DatabaseURL string
	ToolVersion string
	Log         *slog.Logger
}

// Run drives every recognized file in the input directory through
// extract → analyze → execute → persist and aggregates the batch outcome.
// Stage failures are captured into the stored record; only persistence
// failures leave a file without a stored record, and those are reported in
// the summary.
func Run(ctx context.Context, opts Options) (*types.BatchSummary, error) {
	logger := opts.Log
	if logger == nil {
		logger = slog.Default()
	}
	printer := observability.NewPrinter(os.Stdout)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	// Optional run-history persistence; absence is never fatal.
	var database *db.DB
	var batchID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
			database = nil
		} else {
			defer database.Close()
		}
	}

	docs, err := discover(opts.InputDir, logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &types.BatchSummary{OutputDir: opts.OutputDir}
	if len(docs) == 0 {
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	if database != nil {
		batchID, err = database.CreateBatch(ctx, opts.InputDir, opts.OutputDir, opts.Client.Model())
		if err != nil {
			logger.Warn("failed to create batch run record", "error", err)
			database = nil
		}
	}

	orch := analysis.NewOrchestrator(opts.Client)
	runner := sandbox.NewRunner(opts.ExecTimeout)
	resultStore := store.New(opts.OutputDir)

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			if gCtx.Err() != nil {
				// Batch cancelled; abandon cleanly before starting new work.
				return nil
			}

			fmt.Printf("Processing %s...\n", doc.Name)
			rec := processFile(gCtx, doc, orch, runner, opts.ToolVersion)
			if opts.Verbose {
				printer.PrintAnalysis(doc.Name, &rec.Analysis)
			}

			storedPath, perr := resultStore.Persist(rec)

			mu.Lock()
			defer mu.Unlock()
			if perr != nil {
				logger.Error("failed to store record", "file", doc.Name, "error", perr)
				summary.Failed++
				summary.Failures = append(summary.Failures, types.FileFailure{
					File: doc.Name,
					Kind: failureKind(perr),
				})
				return nil
			}

			summary.StoredPaths = append(summary.StoredPaths, storedPath)
			if rec.Analysis.Error != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, types.FileFailure{
					File: doc.Name,
					Kind: rec.Analysis.Error.Kind,
				})
			} else {
				summary.Processed++
			}

			if database != nil {
				if err := database.SaveFileResult(gCtx, batchID, rec, storedPath); err != nil {
					logger.Warn("failed to save file result", "file", doc.Name, "error", err)
				}
			}
			return nil
		})
	}

	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	summary.Elapsed = time.Since(start)

	if database != nil {
		if err := database.CompleteBatch(ctx, batchID, summary); err != nil {
			logger.Warn("failed to complete batch run record", "error", err)
		}
	}

	return summary, nil
}

// discover lists direct children of the input directory that match a
// recognized extension. Unrecognized extensions are silently skipped.
func discover(inputDir string, logger *slog.Logger) ([]*types.SourceDocument, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	var docs []*types.SourceDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Office suites drop ~$-prefixed lock files next to open documents.
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := extraction.DetectKind(name); !ok {
			logger.Debug("skipping unrecognized file", "file", name)
			continue
		}

		doc, err := extraction.Discover(filepath.Join(inputDir, name))
		if err != nil {
			logger.Warn("skipping unreadable file", "file", name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// processFile runs one document through the pipeline stages and assembles
// its processing record. Stage failures end up inside the record, never as
// a returned error.
func processFile(ctx context.Context, doc *types.SourceDocument, orch *analysis.Orchestrator, runner *sandbox.Runner, toolVersion string) *types.ProcessingRecord {
	started := time.Now()
	result := runStages(ctx, doc, orch, runner)

	now := time.Now()
	return &types.ProcessingRecord{
		RunID:       uuid.NewString(),
		Timestamp:   now,
		GeneratedAt: now.Format(time.RFC3339),
		SourceFile: types.SourceFileInfo{
			Name:      doc.Name,
			Path:      doc.Path,
			Type:      doc.Kind,
			SizeBytes: doc.Size,
		},
		Analysis: *result,
		Metadata: types.RecordMetadata{
			ToolVersion: toolVersion,
			Model:       orch.Model(),
			DurationMS:  time.Since(started).Milliseconds(),
		},
	}
}

// runStages executes extract → analyze → execute for one document
func runStages(ctx context.Context, doc *types.SourceDocument, orch *analysis.Orchestrator, runner *sandbox.Runner) *types.AnalysisResult {
	content, err := extraction.Extract(doc)
	if err != nil {
		return capturedFailure("extraction", err)
	}

	result, err := orch.Analyze(ctx, doc, content)
	if err != nil {
		return capturedFailure("analysis", err)
	}

	if result.GeneratedCode != "" {
		outcome := runner.Run(result.GeneratedCode, sandboxBindings(doc, content, result))
		result.Execution = &outcome
	}
	return result
}

// sandboxBindings builds the allow-listed data surface exposed to generated
// code: the analysis fields and a descriptor of the source document.
func sandboxBindings(doc *types.SourceDocument, content *types.NormalizedContent, result *types.AnalysisResult) map[string]any {
	stats := make([]map[string]any, 0, len(content.Stats))
	for _, s := range content.Stats {
		stats = append(stats, map[string]any{
			"sheet":  s.Sheet,
			"column": s.Column,
			"count":  s.Count,
			"min":    s.Min,
			"max":    s.Max,
			"mean":   s.Mean,
		})
	}

	return map[string]any{
		"analysis": map[string]any{
			"summary":         result.Summary,
			"insights":        result.Insights,
			"recommendations": result.Recommendations,
		},
		"document": map[string]any{
			"name":       doc.Name,
			"kind":       string(doc.Kind),
			"size":       doc.Size,
			"char_count": content.CharCount,
			"stats":      stats,
		},
	}
}

// capturedFailure wraps a stage error into the record's analysis section
func capturedFailure(stage string, err error) *types.AnalysisResult {
	return &types.AnalysisResult{
		Error: &types.CapturedError{
			Stage:   stage,
			Kind:    failureKind(err),
			Message: err.Error(),
		},
	}
}

// failureKind pulls the taxonomy kind out of a typed stage error
func failureKind(err error) string {
	switch e := err.(type) {
	case *extraction.ExtractionError:
		return string(e.Kind)
	case *analysis.ModelError:
		return string(e.Kind)
	case *store.PersistenceError:
		return string(e.Kind)
	default:
		return "internal"
	}
}
