package vopl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

const (
	packMagicStr = "VOPLPACK"
	packVersion1 = 1
	packVersion2 = 2
)

// PackLayout specifies how the content section encodes entries.
type PackLayout uint8

const (
	// LayoutRaw stores entries as independent payload blobs (v1 behavior).
	LayoutRaw PackLayout = 0
	// LayoutCDC stores a content-defined chunk dictionary and entries as sequences of chunk refs.
	LayoutCDC PackLayout = 1
)

// content-defined chunking parameters
const (
	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384
)

// PackEntry is a single payload inside the pack.
type PackEntry struct {
	Name    string
	Enc     uint8
	Payload []byte
}

// Pack holds the common header information and entries.
type Pack struct {
	Header  VOPLHeader // common across all entries
	Entries []PackEntry
}

// Marshal encodes using the v1 raw layout.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	return p.MarshalEx(LayoutRaw, comp)
}

// MarshalEx encodes the pack with the given layout and compression codec.
// LayoutCDC builds a block dictionary so identical chunk payloads, common in
// the interior of solid volumes, are stored once.
func (p *Pack) MarshalEx(layout PackLayout, comp PackCompression) ([]byte, error) {
	if p.Header.Ver != version {
		return nil, fmt.Errorf("only VOPL v%d entries can be packed", version)
	}
	// v1 for raw+none/zlib to stay readable by older tools; otherwise v2.
	ver := uint8(packVersion2)
	if layout == LayoutRaw && (comp == PackCompNone || comp == PackCompZlib) {
		ver = packVersion1
	}
	w := &packWriter{}
	w.u8(p.Header.Ver)
	w.u8(p.Header.BPP)
	w.u8(p.Header.W)
	w.u8(p.Header.H)
	w.u8(p.Header.D)
	w.u16(p.Header.Pal)

	switch layout {
	case LayoutRaw:
		if ver >= packVersion2 {
			w.u8(uint8(LayoutRaw))
		}
		w.u32(uint32(len(p.Entries)))
		for _, e := range p.Entries {
			if err := w.name(e.Name); err != nil {
				return nil, err
			}
			w.u8(e.Enc)
			w.u32(uint32(len(e.Payload)))
			w.buf.Write(e.Payload)
		}
	case LayoutCDC:
		w.u8(uint8(LayoutCDC))
		w.u32(cdcTarget)
		w.u32(cdcMin)
		w.u32(cdcMax)

		dict, sequences := buildCDCIndex(p.Entries, cdcTarget, cdcMin, cdcMax)
		w.u32(uint32(len(dict)))
		for _, blk := range dict {
			w.u32(uint32(len(blk)))
			w.buf.Write(blk)
		}
		w.u32(uint32(len(p.Entries)))
		for i, e := range p.Entries {
			if err := w.name(e.Name); err != nil {
				return nil, err
			}
			w.u8(e.Enc)
			w.u32(uint32(len(e.Payload))) // raw length
			w.u32(uint32(len(sequences[i])))
			for _, idx := range sequences[i] {
				w.u32(uint32(idx))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported pack layout %d", layout)
	}

	var content []byte
	switch comp {
	case PackCompNone:
		content = w.buf.Bytes()
	case PackCompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(w.buf.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		content = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		content = enc.EncodeAll(w.buf.Bytes(), nil)
	default:
		return nil, fmt.Errorf("unsupported pack compression %d", comp)
	}

	out := make([]byte, 0, len(packMagicStr)+2+len(content))
	out = append(out, packMagicStr...)
	out = append(out, ver, uint8(comp))
	return append(out, content...), nil
}

// UnmarshalPack parses a .voplpack and returns the pack and the compression
// it used.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagicStr)+2 || string(data[:len(packMagicStr)]) != packMagicStr {
		return nil, 0, fmt.Errorf("not a .voplpack")
	}
	ver := data[8]
	comp := PackCompression(data[9])
	content := data[10:]
	switch comp {
	case PackCompNone:
	case PackCompZlib:
		b, err := zlibDecompress(content)
		if err != nil {
			return nil, 0, err
		}
		content = b
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		b, err := dec.DecodeAll(content, nil)
		if err != nil {
			return nil, 0, err
		}
		content = b
	default:
		return nil, 0, fmt.Errorf("unsupported pack compression %d", comp)
	}

	r := &packReader{r: bytes.NewReader(content)}
	pack := &Pack{}
	pack.Header.Ver = r.u8()
	pack.Header.BPP = r.u8()
	pack.Header.W = r.u8()
	pack.Header.H = r.u8()
	pack.Header.D = r.u8()
	pack.Header.Pal = r.u16()

	// v1 has no layout byte
	layout := LayoutRaw
	switch {
	case ver >= packVersion2:
		layout = PackLayout(r.u8())
	case ver != packVersion1:
		return nil, 0, fmt.Errorf("unsupported pack version %d", ver)
	}

	switch layout {
	case LayoutRaw:
		n := r.u32()
		for i := uint32(0); i < n && r.err == nil; i++ {
			e := PackEntry{Name: r.name(), Enc: r.u8()}
			e.Payload = r.bytes(r.u32())
			pack.Entries = append(pack.Entries, e)
		}
	case LayoutCDC:
		r.u32() // target
		r.u32() // min
		maxSz := r.u32()
		nBlocks := r.u32()
		var blocks [][]byte
		for i := uint32(0); i < nBlocks && r.err == nil; i++ {
			blocks = append(blocks, r.bytes(r.u32()))
		}
		n := r.u32()
		for i := uint32(0); i < n && r.err == nil; i++ {
			e := PackEntry{Name: r.name(), Enc: r.u8()}
			rawLen := r.u32()
			seqLen := r.u32()
			var total uint64
			for j := uint32(0); j < seqLen && r.err == nil; j++ {
				idx := r.u32()
				if r.err != nil {
					break
				}
				if idx >= uint32(len(blocks)) {
					return nil, 0, fmt.Errorf("entry %q references block %d of %d", e.Name, idx, len(blocks))
				}
				total += uint64(len(blocks[idx]))
				if total > uint64(rawLen)+uint64(maxSz) {
					return nil, 0, fmt.Errorf("entry %q: block sequence longer than its payload", e.Name)
				}
				e.Payload = append(e.Payload, blocks[idx]...)
			}
			if uint32(len(e.Payload)) > rawLen {
				e.Payload = e.Payload[:rawLen]
			}
			pack.Entries = append(pack.Entries, e)
		}
	default:
		return nil, 0, fmt.Errorf("unknown pack layout %d", layout)
	}
	if r.err != nil {
		return nil, 0, fmt.Errorf("truncated pack: %w", r.err)
	}
	return pack, comp, nil
}

type packWriter struct {
	buf bytes.Buffer
}

func (w *packWriter) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *packWriter) u16(v uint16) { w.buf.Write(binary.LittleEndian.AppendUint16(nil, v)) }
func (w *packWriter) u32(v uint32) { w.buf.Write(binary.LittleEndian.AppendUint32(nil, v)) }

func (w *packWriter) name(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("entry name too long: %.32s...", s)
	}
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
	return nil
}

// packReader remembers the first error so callers can check once at the end.
type packReader struct {
	r   *bytes.Reader
	err error
}

func (r *packReader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.r.Len() {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	_, r.err = io.ReadFull(r.r, b)
	return b
}

func (r *packReader) u8() uint8 {
	if b := r.read(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *packReader) u16() uint16 {
	if b := r.read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *packReader) u32() uint32 {
	if b := r.read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *packReader) bytes(n uint32) []byte { return r.read(int(n)) }
func (r *packReader) name() string          { return string(r.read(int(r.u16()))) }

// buildCDCIndex performs content-defined chunking over all entry payloads,
// building a dictionary of unique blocks and returning for each entry the
// sequence of block indices.
func buildCDCIndex(entries []PackEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	// gear table seeded deterministically through xxhash
	gear := make([]uint64, 256)
	seed := xxhash.Sum64([]byte("vopl-cdc-gear-seed"))
	for i := range gear {
		var b [16]byte
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}

	blocks := make([][]byte, 0, 256)
	index := make(map[uint64]int, 1024)
	seqs := make([][]int, len(entries))

	// average block size ~= target, rounded to a power of two
	pow := 1 << int(math.Round(math.Log2(float64(target))))
	if pow <= 0 {
		pow = cdcTarget
	}
	mask := uint64(pow - 1)

	addBlock := func(b []byte) int {
		h := xxhash.Sum64(b)
		if idx, ok := index[h]; ok && bytes.Equal(blocks[idx], b) {
			return idx
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = idx
		return idx
	}

	for i, e := range entries {
		data := e.Payload
		var seq []int
		start := 0
		var h uint64
		for pos := 0; pos < len(data); pos++ {
			h = h<<1 + gear[data[pos]]
			if pos-start+1 < minSz {
				continue
			}
			if h&mask == 0 || pos-start+1 >= maxSz {
				seq = append(seq, addBlock(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seq = append(seq, addBlock(data[start:]))
		}
		seqs[i] = seq
	}
	return blocks, seqs
}
