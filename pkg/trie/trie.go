// SPDX-License-Identifier: MIT

package trie

import (
	"context"
	"fmt"
)

// DefaultDepth is the tail sub-trie recursion depth used unless a
// caller overrides it (spec §4.5 step 4, §9: "depth-1 captures
// essentially all compression benefit").
const DefaultDepth = 1

// Build runs the full builder pipeline of spec §4.5 over keys, which
// must already be sorted ascending by code point and deduplicated
// (pkg/wordlist.Prepare's contract). depth bounds the tail sub-trie
// recursion; DefaultDepth matches the CLI's default. ctx is checked
// for cancellation every 64k nodes of BFS assembly (spec §5).
func Build(ctx context.Context, keys []string, depth int) (*Built, error) {
	if depth < 0 {
		return nil, fmt.Errorf("trie: negative depth %d", depth)
	}
	return buildTrie(ctx, keys, depth)
}
