// Package logging provides the zap.Logger the CLI and the validation
// driver use for structured progress output: built once at startup and
// handed down, so the library core stays silent and pure.
package logging

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// New builds a zap.Logger: development (console, debug-enabled) when
// verbose is set, production (JSON, info level) otherwise.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// ProgressReporter zap-logs per-run progress during a long validation:
// elapsed wall time and allocated heap size.
type ProgressReporter struct {
	log     *zap.Logger
	started time.Time
}

// NewProgressReporter starts a reporter's clock at construction time.
func NewProgressReporter(log *zap.Logger) *ProgressReporter {
	return &ProgressReporter{log: log, started: time.Now()}
}

// Report logs one randomized run's completion against the total run
// count, along with elapsed time and current heap allocation.
func (p *ProgressReporter) Report(run, total int) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.log.Info("validation progress",
		zap.Int("run", run+1),
		zap.Int("total", total),
		zap.Duration("elapsed", time.Since(p.started)),
		zap.Uint64("heap_alloc_bytes", mem.Alloc),
	)
}
