// SPDX-License-Identifier: MIT

package trie

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/orcaman/writerseeker"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
)

// Format selects the on-disk encoding (spec §6.3/§6.4).
type Format int

const (
	// FormatV7 is the uncompressed wire format.
	FormatV7 Format = 7
	// FormatV8 brotli-compresses the v7 payload.
	FormatV8 Format = 8
)

const (
	magic = "OWTRIE"

	flagRecursive = 0x08
	flagBrotli    = 0x20

	headerSize = 24
)

// Serialize writes b in the requested format to w, per spec §6.3's
// bit-exact header and payload layout.
func (b *Built) Serialize(w io.Writer, format Format) error {
	payload := b.encodePayload()

	flags := uint32(flagRecursive)
	var body []byte
	switch format {
	case FormatV7:
		body = payload
	case FormatV8:
		flags |= flagBrotli
		var ws writerseeker.WriterSeeker
		bw := brotli.NewWriterLevel(&ws, 11) // quality 11, per spec §4.5 step 6
		if _, err := bw.Write(payload); err != nil {
			return err
		}
		if err := bw.Close(); err != nil {
			return err
		}
		compressed, err := io.ReadAll(ws.Reader())
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		var lenPrefix [4]byte
		binary.LittleEndian.PutUint32(lenPrefix[:], uint32(len(compressed)))
		buf.Write(lenPrefix[:])
		buf.Write(compressed)
		body = buf.Bytes()
	default:
		return fmt.Errorf("trie: unsupported format %d", format)
	}

	header := make([]byte, headerSize)
	copy(header[0:6], magic)
	binary.LittleEndian.PutUint16(header[6:8], uint16(format))
	binary.LittleEndian.PutUint32(header[8:12], uint32(b.WordCount))
	binary.LittleEndian.PutUint32(header[12:16], uint32(b.NodeCount))
	binary.LittleEndian.PutUint32(header[16:20], flags)
	binary.LittleEndian.PutUint32(header[20:24], uint32(b.tailPayloadSize()))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func (b *Built) tailPayloadSize() int {
	if b.Tails == nil {
		return 0
	}
	return len(b.Tails.encodePayload()) + 4 // plus its own size prefix
}

// encodePayload writes the uncompressed LOUDS/terminal/link bitvectors,
// labels array, and recursive tail trie (spec §6.3 item 5).
func (b *Built) encodePayload() []byte {
	var buf bytes.Buffer
	writeBits(&buf, b.Louds)
	writeBits(&buf, b.Terminal)
	writeBits(&buf, b.Link)

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(b.Labels)))
	buf.Write(countBuf[:])
	var varbuf []byte
	for _, v := range b.Labels {
		varbuf = appendVarint(varbuf, v)
	}
	buf.Write(varbuf)

	if b.Tails == nil {
		var zero [4]byte
		buf.Write(zero[:])
	} else {
		tailPayload := b.Tails.encodePayload()
		var sizeBuf [4]byte
		binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(tailPayload)))
		buf.Write(sizeBuf[:])
		buf.Write(tailPayload)
	}
	return buf.Bytes()
}

// writeBits serializes a bitVector per spec §6.3 items 1-3: length(4) +
// packed little-endian 32-bit words + the superblock table (4-byte
// cumulative popcounts every 256 bits) + the block table (1-byte
// popcount-within-superblock every 32 bits) — the same rank/select
// directory bitVector.buildDirectory computes, written out bit-exact
// rather than left to be rebuilt on load.
func writeBits(buf *bytes.Buffer, bits []bool) {
	bv := newBitVector(bits)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(bv.length))
	buf.Write(lenBuf[:])

	wb := make([]byte, 4*len(bv.words))
	for i, w := range bv.words {
		binary.LittleEndian.PutUint32(wb[i*4:i*4+4], w)
	}
	buf.Write(wb)

	sb := make([]byte, 4*len(bv.superblocks))
	for i, s := range bv.superblocks {
		binary.LittleEndian.PutUint32(sb[i*4:i*4+4], s)
	}
	buf.Write(sb)

	buf.Write(bv.blocks)
}

// readBits parses the layout writeBits produces, reading the superblock
// and block tables directly off the wire instead of recomputing them —
// Load's post-build integrity pass cross-checks that they still agree
// with the packed words.
func readBits(data []byte, off int) (*bitVector, int, error) {
	if off+4 > len(data) {
		return nil, 0, &lexicon.FormatError{Msg: "truncated bitvector length"}
	}
	n := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4

	numWords := (n + 31) / 32
	if off+4*numWords > len(data) {
		return nil, 0, &lexicon.FormatError{Msg: "truncated bitvector body"}
	}
	words := make([]uint32, numWords)
	for i := 0; i < numWords; i++ {
		words[i] = binary.LittleEndian.Uint32(data[off+i*4 : off+i*4+4])
	}
	off += 4 * numWords

	numSuperblocks := (n + superblockBits - 1) / superblockBits
	if numSuperblocks == 0 {
		numSuperblocks = 1
	}
	if off+4*numSuperblocks > len(data) {
		return nil, 0, &lexicon.FormatError{Msg: "truncated superblock table"}
	}
	superblocks := make([]uint32, numSuperblocks)
	for i := 0; i < numSuperblocks; i++ {
		superblocks[i] = binary.LittleEndian.Uint32(data[off+i*4 : off+i*4+4])
	}
	off += 4 * numSuperblocks

	numBlocks := (n + blockBits - 1) / blockBits
	if numBlocks == 0 {
		numBlocks = 1
	}
	if off+numBlocks > len(data) {
		return nil, 0, &lexicon.FormatError{Msg: "truncated block table"}
	}
	blocks := make([]uint8, numBlocks)
	copy(blocks, data[off:off+numBlocks])
	off += numBlocks

	return newBitVectorFromSerialized(words, n, superblocks, blocks), off, nil
}
