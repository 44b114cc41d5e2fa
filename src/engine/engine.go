// Package engine drives a scan: it walks a root path, hands each regular
// file to a bounded pool of workers, and joins every worker's result onto
// a single output channel before declaring the run complete (§4.6, §5).
package engine

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/melatonein5/dionysos/src/progress"
	"github.com/melatonein5/dionysos/src/scanner"
)

// Config holds the engine's tunables: the scan root, the registered
// scanners run against every file, the worker pool size, an optional
// basename exclusion pattern (§6 Non-goals: no include/exclude globbing
// beyond this single filter), and the progress reporter to drive (§4.8).
// Progress may be left nil, in which case Run substitutes a no-op
// reporter.
type Config struct {
	Root     string
	Scanners []scanner.Scanner
	Workers  int
	Exclude  *regexp.Regexp
	Progress progress.Reporter
}

// Run walks Config.Root and returns one scanner.FileResult per regular
// file that wasn't excluded. Results arrive in no particular order, since
// workers race to submit them, but every file that was successfully
// stat'd is guaranteed a result (§5(i) per-file scanner order is
// preserved within FileResult.Add, not across files).
//
// The returned channel is closed once every submitted task has completed;
// the caller drains it to exhaustion. This explicitly avoids the
// documented bug of a writer joining workers without collecting every
// result: every task submitted to the pool is tracked by a WaitGroup the
// closer goroutine waits on before closing the channel.
func Run(cfg Config) <-chan *scanner.FileResult {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	reporter := cfg.Progress
	if reporter == nil {
		reporter = progress.Noop()
	}

	out := make(chan *scanner.FileResult)
	var wg sync.WaitGroup

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create worker pool")
	}

	// slots hands out a worker index (0..Workers-1) to whichever task
	// goroutine picks it up, so FileStarted can report which of the
	// Workers concurrent scan slots now holds a given file (§4.8).
	slots := make(chan int, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		slots <- i
	}

	go func() {
		defer pool.Release()

		if reporter != progress.Noop() {
			reporter.Total(countEntries(cfg.Root, cfg.Exclude))
		}

		walkErr := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("unable to walk path")
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if cfg.Exclude != nil && cfg.Exclude.MatchString(d.Name()) {
				return nil
			}

			wg.Add(1)
			task := path
			submitErr := pool.Submit(func() {
				defer wg.Done()
				idx := <-slots
				reporter.FileStarted(idx, task)
				result := scanOne(task, cfg.Scanners)
				slots <- idx
				out <- result
			})
			if submitErr != nil {
				wg.Done()
				log.Warn().Err(submitErr).Str("path", task).Msg("unable to submit file for scanning")
			}
			return nil
		})
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", cfg.Root).Msg("error while walking scan root")
		}

		wg.Wait()
		close(out)
	}()

	return out
}

// countEntries pre-walks root to count the regular files Run will
// submit, giving the progress reporter's overall bar a real max (§4.8).
// It applies the same IsDir/Exclude rules as the scanning walk so the
// two counts agree.
func countEntries(root string, exclude *regexp.Regexp) int64 {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if exclude != nil && exclude.MatchString(d.Name()) {
			return nil
		}
		total++
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("path", root).Msg("error while pre-counting scan entries")
	}
	return total
}

func scanOne(path string, scanners []scanner.Scanner) *scanner.FileResult {
	result := scanner.NewFileResult(path)
	entry := scanner.Entry{Path: path}

	for _, s := range scanners {
		result.Add(s.ScanFile(entry))
	}
	return result
}
