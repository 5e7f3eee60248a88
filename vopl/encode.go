package vopl

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	encDense  = 0
	encSparse = 1
	// encRLE = 2, removed
	encSparse2 = 3 // occupancy bitmap + nonzero values
	// encRLE0 = 4, removed

	encZlib = 0x80 // flag: payload is zlib-compressed
)

type encoded struct {
	encoding int
	payload  []byte
}

func encodeDense(grid *VoxelGrid, bpp uint8) []byte {
	bw := newBitWriter()
	for _, c := range flatten(grid) {
		bw.writeBits(uint64(c), bpp)
	}
	return bw.bytes()
}

// encodeSparse writes a 16-bit count followed by (12-bit index, value) pairs.
func encodeSparse(grid *VoxelGrid, bpp uint8) []byte {
	bw := newBitWriter()
	stream := flatten(grid)
	count := 0
	for _, c := range stream {
		if c != 0 {
			count++
		}
	}
	bw.writeBits(uint64(count), 16)
	if count == 0 {
		return bw.bytes()
	}
	for i, c := range stream {
		if c == 0 {
			continue
		}
		bw.writeBits(uint64(i), 12)
		bw.writeBits(uint64(c), bpp)
	}
	return bw.bytes()
}

func encodeSparse2(grid *VoxelGrid, bpp uint8) []byte {
	stream := flatten(grid)
	// 4096-bit occupancy bitmap -> 512 bytes
	bitmap := make([]byte, chunkVoxels/8)
	nonzeros := make([]uint8, 0, len(stream))
	for i, v := range stream {
		if v != 0 {
			bitmap[i>>3] |= 1 << (uint(i) & 7)
			nonzeros = append(nonzeros, v)
		}
	}
	if len(nonzeros) == 0 {
		return bitmap
	}
	bw := newBitWriter()
	for _, c := range nonzeros {
		bw.writeBits(uint64(c), bpp)
	}
	return append(bitmap, bw.bytes()...)
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// bestEncoding tries every encoding, raw and compressed, and keeps the
// smallest payload.
func bestEncoding(grid *VoxelGrid, bpp uint8) encoded {
	candidates := []encoded{
		{encoding: encDense, payload: encodeDense(grid, bpp)},
		{encoding: encSparse, payload: encodeSparse(grid, bpp)},
		{encoding: encSparse2, payload: encodeSparse2(grid, bpp)},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.payload) < len(best.payload) {
			best = c
		}
	}
	for _, c := range candidates {
		zb := zlibCompress(c.payload)
		if len(zb) < len(best.payload) {
			best = encoded{encoding: c.encoding | encZlib, payload: zb}
		}
	}
	return best
}
