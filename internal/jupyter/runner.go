// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jupyter locates a notebook converter and runs it.
// Both the jupyter launcher and a bare python interpreter can host nbconvert;
// they differ only in the command prefix.
package jupyter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	binJupyter = "jupyter"
	binPython  = "python3"
)

// waitDelay bounds how long Wait lingers for I/O after the context kills the
// converter, in case a descendant escaped the process group and still holds
// the stderr pipe.
const waitDelay = 2 * time.Second

// ErrNoRunner is returned by DetectRunner when no nbconvert installation responds.
var ErrNoRunner = errors.New("no notebook converter available")

// Runner converts notebooks with nbconvert.
type Runner interface {
	// Name returns the command used to invoke nbconvert (e.g. "jupyter nbconvert").
	Name() string

	// Available reports whether the binary exists on PATH and nbconvert
	// answers a version query.
	Available(ctx context.Context) bool

	// ToPDF renders notebook to <outDir>/<stem>.pdf. It returns whatever the
	// converter wrote to stderr, which may be non-empty on success.
	ToPDF(ctx context.Context, notebook, outDir string) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunCaptured(ctx context.Context, name string, args ...string) (stderr string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return command(ctx, name, args...).Run()
}

func (o *osExecutor) RunCaptured(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := command(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// command builds a cmd whose cancellation kills the whole process tree, so
// nbconvert's LaTeX children cannot outlive the deadline.
func command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	killProcessGroup(cmd)
	cmd.WaitDelay = waitDelay
	return cmd
}

// runner implements Runner for one command prefix.
type runner struct {
	bin    string
	prefix []string // e.g. ["nbconvert"] or ["-m", "nbconvert"]
	exec   executor
}

func (r *runner) Name() string {
	return r.bin + " " + strings.Join(r.prefix, " ")
}

func (r *runner) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(ctx, r.bin, r.args("--version")...) == nil
}

func (r *runner) ToPDF(ctx context.Context, notebook, outDir string) (string, error) {
	args := r.args("--to", "pdf", notebook, "--output-dir", outDir)
	stderr, err := r.exec.RunCaptured(ctx, r.bin, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stderr, fmt.Errorf("running %s on %s: %w", r.Name(), notebook, ctxErr)
		}
		return stderr, fmt.Errorf("running %s on %s: %w", r.Name(), notebook, err)
	}
	return stderr, nil
}

func (r *runner) args(rest ...string) []string {
	args := make([]string, 0, len(r.prefix)+len(rest))
	args = append(args, r.prefix...)
	return append(args, rest...)
}

func newJupyterRunner(exec executor) *runner {
	return &runner{bin: binJupyter, prefix: []string{"nbconvert"}, exec: exec}
}

func newPythonRunner(exec executor) *runner {
	return &runner{bin: binPython, prefix: []string{"-m", "nbconvert"}, exec: exec}
}

var defaultExec = &osExecutor{}

// DetectRunner tries "jupyter nbconvert" first and falls back to
// "python3 -m nbconvert".
func DetectRunner(ctx context.Context) (Runner, error) {
	return detectRunner(ctx, defaultExec)
}

func detectRunner(ctx context.Context, exec executor) (Runner, error) {
	jupyter := newJupyterRunner(exec)
	if jupyter.Available(ctx) {
		return jupyter, nil
	}

	python := newPythonRunner(exec)
	if python.Available(ctx) {
		return python, nil
	}

	return nil, fmt.Errorf("%w: neither %q nor %q found or operational",
		ErrNoRunner, jupyter.Name(), python.Name())
}
