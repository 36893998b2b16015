package importer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrImportInProgress is returned by Start while a previous run is still
// active. Imports are deliberately single-flight per runner: two concurrent
// runs would race on identity resolution.
var ErrImportInProgress = errors.New("an import is already in progress")

// Runner executes imports in the background, one at a time. The progress
// sink of the active (or last) run stays readable for status polling.
type Runner struct {
	processor *Processor
	logger    *zap.Logger

	mu       sync.Mutex
	running  bool
	progress *Progress
}

func NewRunner(processor *Processor, logger *zap.Logger) *Runner {
	return &Runner{processor: processor, logger: logger}
}

// Start launches a background import and returns its progress sink. A
// second Start while one run is active returns ErrImportInProgress.
func (r *Runner) Start(raw []byte, opts Options) (*Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, ErrImportInProgress
	}
	r.running = true
	progress := NewProgress()
	r.progress = progress

	go r.run(raw, opts, progress)
	return progress, nil
}

func (r *Runner) run(raw []byte, opts Options, progress *Progress) {
	defer progress.Close()

	result, err := r.processor.ProcessWithProgress(context.Background(), raw, opts, progress)

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("Import run failed", zap.Error(err))
		progress.Fail(err)
		return
	}
	if len(result.Errors) > 0 {
		r.logger.Warn("Import payload rejected", zap.Int("errors", len(result.Errors)))
		progress.Fail(errors.Join(toErrors(result.Errors)...))
		return
	}
	r.logger.Info("Import run completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failures", len(result.Failures)),
	)
	progress.Complete(result)
}

// Running reports whether a run is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Status returns the latest update of the active or most recent run.
func (r *Runner) Status() (Update, bool) {
	r.mu.Lock()
	progress := r.progress
	r.mu.Unlock()
	return progress.Latest()
}

func toErrors[E error](errs []E) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
