// SPDX-License-Identifier: MIT

// Package wordlist turns an unsorted, possibly-duplicate stream of
// NFKC-normalized keys into the sorted, duplicate-free stream the trie
// builder requires (spec §4.5, §6.2). It is the trie builder's own
// input-normalization step, not the excluded cross-source merge pass:
// it never joins, enriches, or backfills anything.
package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/lanrat/extsort"
	"golang.org/x/sync/errgroup"

	"github.com/openword-lexicon/lexicon-core/internal/normalize"
)

// chunkSize mirrors the teacher's 8 MiB / 64-bytes-per-line estimate
// for extsort's chunk size (titles.go).
const chunkSize = 8 * 1024 * 1024 / 64

// Prepare reads newline-delimited keys from r, NFKC-normalizes and
// de-duplicates them, and writes the sorted, duplicate-free, one key
// per line result to w (spec §6.2: "sorted ascending by code-point,
// duplicate-free"). Empty lines are dropped rather than rejected
// outright, matching the scanner's own tolerance for malformed input.
func Prepare(ctx context.Context, r io.Reader, w io.Writer) error {
	in := make(chan string, 10000)
	config := extsort.DefaultConfig()
	config.ChunkSize = chunkSize
	config.NumWorkers = runtime.NumCPU()
	sorter, outChan, errChan := extsort.Strings(in, config)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(in)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}
			line := scanner.Text()
			if line == "" {
				continue
			}
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case in <- normalize.Key(line):
			}
		}
		return scanner.Err()
	})

	bw := bufio.NewWriter(w)
	group.Go(func() error {
		sorter.Sort(groupCtx)
		var prev string
		first := true
		for {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case key, more := <-outChan:
				if !more {
					return bw.Flush()
				}
				if !first && key == prev {
					continue
				}
				first = false
				prev = key
				if _, err := fmt.Fprintln(bw, key); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil {
		return err
	}
	return <-errChan
}
