// SPDX-License-Identifier: MIT

package trie

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/andybalholm/brotli"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
)

// Trie serves lookups directly from the decoded bitvector directories
// (spec §4.6) without ever materializing a pointer-based tree. The
// LOUDS bitvector's topology is decoded once at load time into plain
// childStart/childDegree/parent arrays — a linear, unambiguous pass
// over the degree sequence — rather than re-deriving node adjacency
// via rank/select arithmetic on every call; the rank/select directories
// (bitVector.rank1/select1) are still the mechanism used for the
// terminal-bit ⇔ word-id correspondence that spec §4.5/§4.6 define in
// those terms.
type Trie struct {
	wordCount int
	nodeCount int

	terminal *bitVector
	link     *bitVector
	labels   []uint32

	childStart  []int32
	childDegree []int32
	parent      []int32

	tails *Trie
}

// knownFlags lists every flag bit Load understands; spec §6.3 requires
// readers to reject unknown flag bits rather than silently ignore them.
const knownFlags = flagRecursive | flagBrotli

// Load parses a serialized trie blob (v7 or v8, spec §6.3). Bad magic,
// unknown versions, unknown flag bits, and truncated payloads are all
// reported as *lexicon.FormatError, per the reader contract of spec §6.3
// and §7's error taxonomy.
func Load(data []byte) (*Trie, error) {
	if len(data) < headerSize || string(data[0:6]) != magic {
		return nil, &lexicon.FormatError{Msg: "bad magic"}
	}
	version := binary.LittleEndian.Uint16(data[6:8])
	wordCount := int(binary.LittleEndian.Uint32(data[8:12]))
	nodeCount := int(binary.LittleEndian.Uint32(data[12:16]))
	flags := binary.LittleEndian.Uint32(data[16:20])

	if unknown := flags &^ uint32(knownFlags); unknown != 0 {
		return nil, &lexicon.FormatError{Msg: fmt.Sprintf("unknown flag bits %#x", unknown)}
	}
	if flags&flagRecursive == 0 {
		return nil, &lexicon.FormatError{Msg: "missing required recursive-tail flag"}
	}

	body := data[headerSize:]
	if flags&flagBrotli != 0 {
		if version != uint16(FormatV8) {
			return nil, &lexicon.FormatError{Msg: fmt.Sprintf("brotli payload requires version %d, got %d", FormatV8, version)}
		}
		if len(body) < 4 {
			return nil, &lexicon.FormatError{Msg: "truncated compressed length"}
		}
		compLen := int(binary.LittleEndian.Uint32(body[0:4]))
		if 4+compLen > len(body) {
			return nil, &lexicon.FormatError{Msg: "truncated compressed payload"}
		}
		r := brotli.NewReader(bytesReader(body[4 : 4+compLen]))
		decoded, err := io.ReadAll(r)
		if err != nil {
			return nil, &lexicon.FormatError{Msg: "brotli decode: " + err.Error()}
		}
		body = decoded
	} else if version != uint16(FormatV7) {
		return nil, &lexicon.FormatError{Msg: fmt.Sprintf("unrecognized version %d", version)}
	}

	t, _, err := parsePayload(body)
	if err != nil {
		return nil, err
	}
	if t.wordCount != wordCount || t.nodeCount != nodeCount {
		return nil, &lexicon.FormatError{Msg: fmt.Sprintf("header/payload mismatch (words %d/%d, nodes %d/%d)",
			wordCount, t.wordCount, nodeCount, t.nodeCount)}
	}
	return t, nil
}

func bytesReader(b []byte) io.Reader { return &simpleReader{b: b} }

type simpleReader struct {
	b   []byte
	pos int
}

func (r *simpleReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

func parsePayload(data []byte) (*Trie, int, error) {
	loudsBV, off, err := readBits(data, 0)
	if err != nil {
		return nil, 0, err
	}
	if err := loudsBV.verifyDirectory(); err != nil {
		return nil, 0, &lexicon.IntegrityError{Msg: "louds bitvector: " + err.Error()}
	}
	terminalBV, off, err := readBits(data, off)
	if err != nil {
		return nil, 0, err
	}
	if err := terminalBV.verifyDirectory(); err != nil {
		return nil, 0, &lexicon.IntegrityError{Msg: "terminal bitvector: " + err.Error()}
	}
	linkBV, off, err := readBits(data, off)
	if err != nil {
		return nil, 0, err
	}
	if err := linkBV.verifyDirectory(); err != nil {
		return nil, 0, &lexicon.IntegrityError{Msg: "link bitvector: " + err.Error()}
	}

	if off+4 > len(data) {
		return nil, 0, &lexicon.FormatError{Msg: "truncated label count"}
	}
	labelCount := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	labels := make([]uint32, labelCount)
	for i := 0; i < labelCount; i++ {
		var v uint32
		var ok bool
		v, off, ok = readVarint(data, off)
		if !ok {
			return nil, 0, &lexicon.FormatError{Msg: "truncated labels array"}
		}
		labels[i] = v
	}

	if off+4 > len(data) {
		return nil, 0, &lexicon.FormatError{Msg: "truncated tail size"}
	}
	tailSize := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4

	nodeCount := terminalBV.length
	wordCount := 0
	if nodeCount > 0 {
		wordCount = terminalBV.rank1(nodeCount - 1)
	}

	t := &Trie{
		wordCount: wordCount,
		nodeCount: nodeCount,
		terminal:  terminalBV,
		link:      linkBV,
		labels:    labels,
	}
	t.decodeTopology(loudsBV)

	if tailSize > 0 {
		if off+tailSize > len(data) {
			return nil, 0, &lexicon.FormatError{Msg: "truncated tail payload"}
		}
		nested, _, err := parsePayload(data[off : off+tailSize])
		if err != nil {
			return nil, 0, err
		}
		t.tails = nested
		off += tailSize
	}

	return t, off, nil
}

// decodeTopology performs the single linear pass over the LOUDS degree
// sequence described in builder.go's assembleBFS, recovering each
// node's child range and each child's parent.
func (t *Trie) decodeTopology(louds *bitVector) {
	n := t.nodeCount
	t.childStart = make([]int32, n)
	t.childDegree = make([]int32, n)
	t.parent = make([]int32, n)
	t.parent[0] = -1

	pos := 2 // skip the super-root "10"
	next := int32(1)
	for node := 0; node < n; node++ {
		start := next
		var deg int32
		for louds.get(pos) {
			deg++
			pos++
		}
		pos++ // skip the terminating 0
		if deg == 0 {
			t.childStart[node] = -1
		} else {
			t.childStart[node] = start
		}
		t.childDegree[node] = deg
		for k := int32(0); k < deg; k++ {
			t.parent[next] = int32(node)
			next++
		}
	}
}

func (t *Trie) isTerminal(node int) bool { return t.terminal.get(node) }
func (t *Trie) isLink(node int) bool     { return t.link.get(node) }
func (t *Trie) label(node int) uint32    { return t.labels[node-1] }

// findChild binary-searches node's sorted children for label r,
// returning the child node index or -1.
func (t *Trie) findChild(node int, r rune) int {
	start := t.childStart[node]
	if start < 0 {
		return -1
	}
	deg := int(t.childDegree[node])
	target := uint32(r)
	lo, hi := 0, deg-1
	for lo <= hi {
		mid := (lo + hi) / 2
		child := int(start) + mid
		var key uint32
		if t.isLink(child) {
			key = t.tailFirstRune(child)
		} else {
			key = t.label(child)
		}
		switch {
		case key == target:
			return child
		case key < target:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

func (t *Trie) tailFirstRune(node int) uint32 {
	text := t.tailText(node)
	for _, r := range text {
		return uint32(r)
	}
	return 0
}

func (t *Trie) tailText(node int) string {
	idx := int(t.label(node))
	if t.tails == nil {
		return ""
	}
	return t.tails.KeyOfID(uint32(idx))
}

// Has reports whether key is present in the trie (spec §4.6 `has`).
func (t *Trie) Has(key string) bool {
	node := 0
	runes := []rune(key)
	i := 0
	for i < len(runes) {
		child, consumed := t.descend(node, runes[i:])
		if child < 0 {
			return false
		}
		node = child
		i += consumed
	}
	return t.isTerminal(node)
}

// descend finds the child of node reached by the next character(s) of
// remaining, returning the child node index and how many runes of
// remaining were consumed along that edge (>1 for a tail/link edge).
func (t *Trie) descend(node int, remaining []rune) (int, int) {
	child := t.findChild(node, remaining[0])
	if child < 0 {
		return -1, 0
	}
	if !t.isLink(child) {
		return child, 1
	}
	tail := []rune(t.tailText(child))
	if len(tail) > len(remaining) {
		return -1, 0
	}
	for i, r := range tail {
		if remaining[i] != r {
			return -1, 0
		}
	}
	return child, len(tail)
}

// WordID returns the dense 0-based id of key, or false if key is
// absent (spec §4.6 `wordId`).
func (t *Trie) WordID(key string) (uint32, bool) {
	node := 0
	runes := []rune(key)
	i := 0
	for i < len(runes) {
		child, consumed := t.descend(node, runes[i:])
		if child < 0 {
			return 0, false
		}
		node = child
		i += consumed
	}
	if !t.isTerminal(node) {
		return 0, false
	}
	return uint32(t.terminal.rank1(node) - 1), true
}

// KeyOfID reconstructs the key for a dense word id (spec §4.6
// `keyOfId`). IDs outside [0, WordCount) return "".
func (t *Trie) KeyOfID(id uint32) string {
	if int(id) >= t.wordCount {
		return ""
	}
	pos := t.terminal.select1(int(id) + 1)
	if pos < 0 {
		return ""
	}
	var segments [][]rune
	node := pos
	for node != 0 {
		if t.isLink(node) {
			segments = append(segments, []rune(t.tailText(node)))
		} else {
			segments = append(segments, []rune{rune(t.label(node))})
		}
		node = int(t.parent[node])
	}
	var out []rune
	for i := len(segments) - 1; i >= 0; i-- {
		out = append(out, segments[i]...)
	}
	return string(out)
}

// PrefixEnum lists up to limit keys having prefix, in lexicographic
// order (spec §4.6 `prefixEnum`). limit <= 0 means unbounded.
func (t *Trie) PrefixEnum(prefix string, limit int) []string {
	node, rem, ok := t.descendPrefix(prefix)
	if !ok {
		return nil
	}
	var out []string
	t.dfsCollect(node, prefix+rem, limit, &out)
	return out
}

// descendPrefix walks prefix as far as it goes, returning the node
// reached. Since tails are collapsed runs of non-terminal, single-child
// nodes, a prefix can only ever stop strictly inside a tail (never
// exactly at a terminal); rem carries the unmatched remainder of that
// tail so callers can still treat node as "prefix + rem"'s node.
func (t *Trie) descendPrefix(prefix string) (node int, rem string, ok bool) {
	node = 0
	runes := []rune(prefix)
	i := 0
	for i < len(runes) {
		child := t.findChild(node, runes[i])
		if child < 0 {
			return 0, "", false
		}
		if !t.isLink(child) {
			node = child
			i++
			continue
		}
		tail := []rune(t.tailText(child))
		remaining := runes[i:]
		n := len(tail)
		if n > len(remaining) {
			n = len(remaining)
		}
		for k := 0; k < n; k++ {
			if tail[k] != remaining[k] {
				return 0, "", false
			}
		}
		if n < len(tail) {
			return child, string(tail[n:]), true
		}
		node = child
		i += len(tail)
	}
	return node, "", true
}

func (t *Trie) dfsCollect(node int, built string, limit int, out *[]string) {
	if limit > 0 && len(*out) >= limit {
		return
	}
	if t.isTerminal(node) {
		*out = append(*out, built)
		if limit > 0 && len(*out) >= limit {
			return
		}
	}
	start := t.childStart[node]
	if start < 0 {
		return
	}
	deg := int(t.childDegree[node])
	for k := 0; k < deg; k++ {
		child := int(start) + k
		var text string
		if t.isLink(child) {
			text = t.tailText(child)
		} else {
			text = string(rune(t.label(child)))
		}
		t.dfsCollect(child, built+text, limit, out)
		if limit > 0 && len(*out) >= limit {
			return
		}
	}
}

// NextLetters returns the sorted code points reachable by one step
// from prefix (spec §4.6 `nextLetters`); link edges contribute only
// their first code point.
func (t *Trie) NextLetters(prefix string) []rune {
	node, rem, ok := t.descendPrefix(prefix)
	if !ok {
		return nil
	}
	if rem != "" {
		for _, r := range rem {
			return []rune{r}
		}
	}
	start := t.childStart[node]
	if start < 0 {
		return nil
	}
	deg := int(t.childDegree[node])
	out := make([]rune, 0, deg)
	for k := 0; k < deg; k++ {
		child := int(start) + k
		if t.isLink(child) {
			out = append(out, rune(t.tailFirstRune(child)))
		} else {
			out = append(out, rune(t.label(child)))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WordCount returns the number of distinct keys indexed.
func (t *Trie) WordCount() int { return t.wordCount }

// NodeCount returns the number of nodes in the minimized tree.
func (t *Trie) NodeCount() int { return t.nodeCount }
