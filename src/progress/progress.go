// Package progress implements the optional Dionysos scan progress UI
// (§4.8): one overall bar tracking files scanned, plus one spinner per
// worker showing the file it currently holds.
package progress

import (
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Reporter is the interface the engine drives; a no-op implementation
// satisfies it when progress reporting is disabled (§6 --progress).
type Reporter interface {
	// Total sets the known or estimated number of files to scan.
	Total(n int64)
	// FileStarted marks worker id as now scanning path.
	FileStarted(worker int, path string)
	// FileDone increments the overall bar by one.
	FileDone()
	// Close releases any underlying terminal resources.
	Close()
}

type noop struct{}

// Noop returns a Reporter that does nothing, used when progress
// reporting wasn't requested.
func Noop() Reporter { return noop{} }

func (noop) Total(int64)             {}
func (noop) FileStarted(int, string) {}
func (noop) FileDone()               {}
func (noop) Close()                  {}

// barReporter renders one overall bar plus one spinner per worker using
// mpb's multi-bar container. Each worker bar's trailing decorator reads
// from current[i], which FileStarted updates, so the spinner's message
// tracks whatever file that worker slot currently holds.
type barReporter struct {
	progress *mpb.Progress
	overall  *mpb.Bar
	workers  []*mpb.Bar
	current  []atomic.Value
}

// New builds a Reporter with workerCount per-worker spinners, each
// initially idle.
func New(workerCount int) Reporter {
	p := mpb.New(mpb.WithWidth(64))

	overall := p.AddBar(0,
		mpb.PrependDecorators(decor.Name("scanning", decor.WC{W: 10})),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
	)

	current := make([]atomic.Value, workerCount)
	workers := make([]*mpb.Bar, workerCount)
	for i := range workers {
		idx := i
		current[idx].Store("idle")
		workers[idx] = p.AddBar(1,
			mpb.PrependDecorators(decor.Name("worker", decor.WC{W: 10})),
			mpb.AppendDecorators(decor.Any(func(decor.Statistics) string {
				return current[idx].Load().(string)
			})),
		)
	}

	return &barReporter{progress: p, overall: overall, workers: workers, current: current}
}

func (r *barReporter) Total(n int64) {
	r.overall.SetTotal(n, false)
}

// FileStarted records path as worker's current file and resets its
// spinner, so the append decorator installed in New picks it up on its
// next render.
func (r *barReporter) FileStarted(worker int, path string) {
	if worker < 0 || worker >= len(r.workers) {
		return
	}
	r.current[worker].Store(path)
	r.workers[worker].SetCurrent(0)
}

func (r *barReporter) FileDone() {
	r.overall.Increment()
}

func (r *barReporter) Close() {
	for i, w := range r.workers {
		r.current[i].Store("idle")
		w.SetTotal(1, true)
	}
	r.overall.SetTotal(r.overall.Current(), true)
	r.progress.Wait()
}
