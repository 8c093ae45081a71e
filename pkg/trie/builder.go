// SPDX-License-Identifier: MIT

package trie

import (
	"context"
	"sort"
)

// rawNode is an uncompressed trie node built by straight insertion of
// sorted, deduplicated keys. Because keys arrive in sorted order, a
// node's children are discovered in ascending label order and need no
// separate sort pass.
type rawNode struct {
	terminal    bool
	childLabels []rune
	childNodes  []*rawNode
}

func insertKey(root *rawNode, key string) {
	cur := root
	for _, r := range key {
		n := len(cur.childLabels)
		if n > 0 && cur.childLabels[n-1] == r {
			cur = cur.childNodes[n-1]
			continue
		}
		nn := &rawNode{}
		cur.childLabels = append(cur.childLabels, r)
		cur.childNodes = append(cur.childNodes, nn)
		cur = nn
	}
	cur.terminal = true
}

// finalEdge is an edge in the path-compressed tree: either a single
// code-point label, or a link edge whose full run of characters was
// collapsed into a tail string (spec §4.5 step 1/4 — the DAWG
// minimization's practical payoff is this tail-string deduplication;
// see DESIGN.md for why full cross-subtree signature sharing beyond
// tails isn't additionally implemented).
type finalEdge struct {
	isLink   bool
	label    rune // the edge's own code point, or the tail's first rune
	tailText string
	tailIdx  int
	target   *finalNode
}

type finalNode struct {
	terminal bool
	edges    []finalEdge
}

// buildTrie runs the full pipeline of spec §4.5 over a sorted,
// deduplicated, non-empty key set: raw insertion, chain compression
// into tail edges (skipped once depth reaches 0, which is also the
// recursion's natural base case), recursive tail sub-trie
// construction, and BFS/LOUDS assembly.
func buildTrie(ctx context.Context, keys []string, depth int) (*Built, error) {
	root := &rawNode{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		insertKey(root, k)
	}

	compress := depth > 0
	var tailTexts []string
	finalRoot := compressNode(root, compress, &tailTexts)

	var nested *Built
	if compress && len(tailTexts) > 0 {
		uniq := dedupeSorted(tailTexts)
		var err error
		nested, err = buildTrie(ctx, uniq, depth-1)
		if err != nil {
			return nil, err
		}
		// A link edge's label is the dense word id KeyOfID will later
		// resolve it by (query.go's tailText), which is the nested
		// trie's BFS/terminal-rank order — NOT uniq's lexicographic
		// sort order, since those two orders only coincide by
		// accident. Derive tailIdx from the nested trie itself so the
		// numbering always agrees with how it will actually be looked
		// up.
		nestedTrie := builtToTrie(nested)
		rank := make(map[string]int, len(uniq))
		for _, t := range uniq {
			id, _ := nestedTrie.WordID(t)
			rank[t] = int(id)
		}
		fillTailIdx(finalRoot, rank)
	}

	return assembleBFS(ctx, finalRoot, nested)
}

// builtToTrie constructs a queryable Trie directly from a Built's bit
// arrays, without a serialize/Load round trip — used to number tail
// sub-trie ids consistently with how Load will number them once the
// same bits are serialized and read back.
func builtToTrie(b *Built) *Trie {
	t := &Trie{
		wordCount: b.WordCount,
		nodeCount: b.NodeCount,
		terminal:  newBitVector(b.Terminal),
		link:      newBitVector(b.Link),
		labels:    b.Labels,
	}
	t.decodeTopology(newBitVector(b.Louds))
	if b.Tails != nil {
		t.tails = builtToTrie(b.Tails)
	}
	return t
}

// cancelBatchSize is how often assembleBFS checks ctx for cancellation
// while walking nodes (spec §5: "node batches (every 64k nodes)").
const cancelBatchSize = 64 * 1024

// compressNode converts a rawNode subtree into its path-compressed
// finalNode form. When collapse is false (depth exhausted) every edge
// stays a single code point, which also means no tails are produced at
// this level — the natural recursion base case.
func compressNode(n *rawNode, collapse bool, tailTexts *[]string) *finalNode {
	fn := &finalNode{terminal: n.terminal}
	for i, r := range n.childLabels {
		child := n.childNodes[i]
		if !collapse {
			fn.edges = append(fn.edges, finalEdge{label: r, target: compressNode(child, collapse, tailTexts)})
			continue
		}
		text := string(r)
		cur := child
		for !cur.terminal && len(cur.childLabels) == 1 {
			text += string(cur.childLabels[0])
			cur = cur.childNodes[0]
		}
		target := compressNode(cur, collapse, tailTexts)
		if len(text) > len(string(r)) {
			// Chain collapsed across more than the single entry rune.
			*tailTexts = append(*tailTexts, text)
			runes := []rune(text)
			fn.edges = append(fn.edges, finalEdge{isLink: true, label: runes[0], tailText: text, target: target})
		} else {
			fn.edges = append(fn.edges, finalEdge{label: r, target: target})
		}
	}
	return fn
}

func dedupeSorted(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	var uniq []string
	for _, t := range texts {
		if !seen[t] {
			seen[t] = true
			uniq = append(uniq, t)
		}
	}
	sort.Strings(uniq)
	return uniq
}

func fillTailIdx(n *finalNode, rank map[string]int) {
	for i := range n.edges {
		e := &n.edges[i]
		if e.isLink {
			e.tailIdx = rank[e.tailText]
		}
		fillTailIdx(e.target, rank)
	}
}

// Built is the in-memory result of buildTrie: the BFS/LOUDS-encoded
// bit arrays, the per-edge label array, and the recursive tail
// sub-trie (nil if this level carries no tail compression).
type Built struct {
	WordCount int
	NodeCount int
	Louds     []bool
	Terminal  []bool
	Link      []bool
	Labels    []uint32
	Tails     *Built
}

// assembleBFS performs the breadth-first traversal of §4.5 step 2,
// producing the three bitvectors and the label array in BFS order.
func assembleBFS(ctx context.Context, root *finalNode, tails *Built) (*Built, error) {
	type queued struct {
		node     *finalNode
		isLink   bool
		terminal bool
	}
	order := []queued{{node: root, isLink: false, terminal: root.terminal}}
	loudsBits := []bool{true, false} // super-root "10"
	var labels []uint32

	for i := 0; i < len(order); i++ {
		if i%cancelBatchSize == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		n := order[i].node
		deg := len(n.edges)
		for j := 0; j < deg; j++ {
			loudsBits = append(loudsBits, true)
		}
		loudsBits = append(loudsBits, false)
		for _, e := range n.edges {
			order = append(order, queued{node: e.target, isLink: e.isLink, terminal: e.target.terminal})
			if e.isLink {
				labels = append(labels, uint32(e.tailIdx))
			} else {
				labels = append(labels, uint32(e.label))
			}
		}
	}

	terminal := make([]bool, len(order))
	link := make([]bool, len(order))
	actualWordCount := 0
	for i, q := range order {
		terminal[i] = q.terminal
		link[i] = q.isLink
		if q.terminal {
			actualWordCount++
		}
	}

	return &Built{
		WordCount: actualWordCount,
		NodeCount: len(order),
		Louds:     loudsBits,
		Terminal:  terminal,
		Link:      link,
		Labels:    labels,
		Tails:     tails,
	}, nil
}
