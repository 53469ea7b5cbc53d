// Package sandbox runs model-generated JavaScript in an isolated goja
// interpreter. The runtime has no host, file-system, network, or process
// access by construction; the only surface exposed to the code is an
// allow-listed set of bindings plus goja's built-in primitives. All failures
// are captured into the ExecutionOutcome, never propagated.
package sandbox

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/daniel/docinsight/internal/types"
)

const (
	// defaultTimeout bounds wall-clock execution of generated code
	defaultTimeout = 5 * time.Second
	// maxOutputBytes bounds captured standard output
	maxOutputBytes = 8192
	// outputTruncationMarker is appended when output is cut off
	outputTruncationMarker = "\n[output truncated]"
)

// Execution failure kinds recorded in ExecutionOutcome.Error
const (
	errKindTimeout   = "timeout"
	errKindException = "exception"
	errKindRuntime   = "runtime_error"
)

// Runner executes untrusted code under time and output ceilings.
// Each Run uses a fresh interpreter, so runs cannot observe each other.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a Runner with the given wall-clock ceiling.
// A non-positive timeout falls back to the default.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes code with the given data bindings and captures its outcome.
// It never returns an error past its own boundary.
func (r *Runner) Run(code string, bindings map[string]any) (outcome types.ExecutionOutcome) {
	start := time.Now()

	defer func() {
		outcome.Duration = time.Since(start)
		if rec := recover(); rec != nil {
			outcome.Success = false
			outcome.Error = &types.ExecError{
				Kind:    errKindRuntime,
				Message: fmt.Sprintf("interpreter panic: %v", rec),
			}
		}
	}()

	vm := goja.New()

	var out strings.Builder
	truncated := false
	logFn := func(call goja.FunctionCall) goja.Value {
		if truncated {
			return goja.Undefined()
		}
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, fmt.Sprintf("%v", arg.Export()))
		}
		line := strings.Join(parts, " ") + "\n"
		if out.Len()+len(line) > maxOutputBytes {
			line = line[:maxOutputBytes-out.Len()]
			truncated = true
		}
		out.WriteString(line)
		return goja.Undefined()
	}

	console := vm.NewObject()
	_ = console.Set("log", logFn)
	_ = vm.Set("console", console)
	_ = vm.Set("print", logFn)

	for name, value := range bindings {
		_ = vm.Set(name, value)
	}

	timer := time.AfterFunc(r.timeout, func() {
		vm.Interrupt(errKindTimeout)
	})
	defer timer.Stop()

	_, err := vm.RunString(code)

	outcome.Output = out.String()
	outcome.OutputTruncated = truncated
	if truncated {
		outcome.Output += outputTruncationMarker
	}

	if err != nil {
		outcome.Success = false
		outcome.Error = classifyRunError(err)
		return outcome
	}

	outcome.Success = true
	return outcome
}

// classifyRunError maps a goja error onto the execution error taxonomy
func classifyRunError(err error) *types.ExecError {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &types.ExecError{
			Kind:    errKindTimeout,
			Message: "execution exceeded wall-clock ceiling",
		}
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return &types.ExecError{
			Kind:    errKindException,
			Message: exception.Value().String(),
		}
	}

	return &types.ExecError{
		Kind:    errKindRuntime,
		Message: err.Error(),
	}
}
