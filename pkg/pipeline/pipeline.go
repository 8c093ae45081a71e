// SPDX-License-Identifier: MIT

// Package pipeline implements the scanner's optional page-level
// parallelism (spec §5): a single reader distributes page records over
// a bounded channel to N extractor workers, and a single writer
// restores page order with a reorder buffer before it ever serializes
// a line. With numWorkers == 1 the reorder buffer never holds more than
// the one result just received, and output order degenerates to the
// single-threaded case.
package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openword-lexicon/lexicon-core/pkg/extract"
	"github.com/openword-lexicon/lexicon-core/pkg/filter"
	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// taskQueueDepth bounds the reader-to-worker channel (spec §5's
// "bounded channel"), mirroring the teacher's 10000-deep line channels
// scaled down for whole-page records.
const taskQueueDepth = 256

// PageSource yields pages in stream order, mirroring *xmldump.Scanner's
// Scan/Page/Err shape so the pipeline doesn't need to import xmldump
// directly.
type PageSource interface {
	Scan() bool
	Page() *lexicon.Page
	Err() error
}

// Config bundles the filter and extractor configuration every worker
// needs (spec §4.3/§4.4 both key off the same target language).
type Config struct {
	Filter     filter.Config
	Extract    extract.Config
	NumWorkers int
}

type task struct {
	index int
	page  *lexicon.Page
}

type result struct {
	index int
	entry *lexicon.Entry // nil if the page was rejected by the filter
}

// Run reads every page from src, applies the filter and feature
// extractor (in parallel across cfg.NumWorkers workers when > 1), and
// writes accepted entries to w in the pages' original stream order.
// Cancellation is cooperative: ctx is checked at page boundaries in the
// reader and before each task/result handoff.
func Run(ctx context.Context, src PageSource, cfg Config, w *lexicon.Writer, counters *runstats.Counters) error {
	numWorkers := cfg.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}

	tasks := make(chan task, taskQueueDepth)
	results := make(chan result, taskQueueDepth)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(tasks)
		index := 0
		for src.Scan() {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case tasks <- task{index: index, page: src.Page()}:
			}
			index++
		}
		return src.Err()
	})

	var workers sync.WaitGroup
	workers.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		group.Go(func() error {
			defer workers.Done()
			for {
				select {
				case <-groupCtx.Done():
					return groupCtx.Err()
				case t, more := <-tasks:
					if !more {
						return nil
					}
					r := processTask(t, cfg, counters)
					select {
					case <-groupCtx.Done():
						return groupCtx.Err()
					case results <- r:
					}
				}
			}
		})
	}

	// results is only safe to close once every worker has stopped
	// sending to it; this goroutine is not in the errgroup since its
	// only job is the close, not anything that can itself fail.
	go func() {
		workers.Wait()
		close(results)
	}()

	// writeInOrder runs inside the errgroup so a write failure cancels
	// groupCtx, unblocking the reader and workers' <-groupCtx.Done()
	// selects instead of leaving them stuck on a results/tasks send that
	// nothing is draining anymore.
	group.Go(func() error {
		return writeInOrder(groupCtx, results, numWorkers, w)
	})

	return group.Wait()
}

func processTask(t task, cfg Config, counters *runstats.Counters) result {
	res := filter.Run(t.page, cfg.Filter, counters)
	if !res.Accepted {
		return result{index: t.index}
	}
	entry := extract.Run(t.page.Title, res.Section, cfg.Extract, counters)
	return result{index: t.index, entry: entry}
}

// writeInOrder holds out-of-order results in a reorder buffer (sized to
// the worker count is enough in steady state, but a map tolerates
// bursts without a fixed cap) and flushes entries to w strictly in
// ascending index order (spec §5's ordering guarantee).
func writeInOrder(ctx context.Context, results <-chan result, numWorkers int, w *lexicon.Writer) error {
	pending := make(map[int]result, numWorkers*2)
	next := 0
	for r := range results {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		pending[r.index] = r
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if ready.entry != nil {
				if err := w.Write(ready.entry); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
