package vopl

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	magic   = "VOPL"
	version = 3

	headerSize = 16
)

// EncodeChunk encodes a grid as a complete .vopl file using bpp bits per
// voxel (1..8). Chunks of one pack must share bpp so their headers match.
func EncodeChunk(grid *VoxelGrid, bpp uint8) []byte {
	bpp = min(max(bpp, 1), 8)
	enc := bestEncoding(grid, bpp)
	return BuildVOPLFromHeaderAndPayload(headerForBPP(bpp), uint8(enc.encoding), enc.payload)
}

// DecodeChunk parses a complete .vopl file.
func DecodeChunk(data []byte) (*VoxelGrid, error) {
	hdr, payload, err := ParseVOPLHeaderFromBytes(data)
	if err != nil {
		return nil, err
	}
	if hdr.W != Width || hdr.H != Height || hdr.D != Depth {
		return nil, fmt.Errorf("chunk size %dx%dx%d is not supported", hdr.W, hdr.H, hdr.D)
	}
	if hdr.BPP < 1 || hdr.BPP > 8 {
		return nil, fmt.Errorf("bits per voxel %d out of range", hdr.BPP)
	}
	return decodePayload(data[5], hdr.BPP, payload)
}

func decodePayload(encByte, bpp uint8, payload []byte) (*VoxelGrid, error) {
	if encByte&encZlib != 0 {
		var err error
		payload, err = zlibDecompress(payload)
		if err != nil {
			return nil, err
		}
	}
	lin := make([]uint8, chunkVoxels)
	switch enc := int(encByte &^ encZlib); enc {
	case encDense:
		br := newBitReader(payload)
		for i := range lin {
			v, err := br.readBits(bpp)
			if err != nil {
				return nil, err
			}
			lin[i] = uint8(v)
		}
	case encSparse:
		br := newBitReader(payload)
		cnt, err := br.readBits(16)
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(cnt); i++ {
			idx, err := br.readBits(12)
			if err != nil {
				return nil, err
			}
			col, err := br.readBits(bpp)
			if err != nil {
				return nil, err
			}
			lin[int(idx)] = uint8(col)
		}
	case encSparse2:
		if len(payload) < chunkVoxels/8 {
			return nil, fmt.Errorf("sparse2 payload too short (%d bytes)", len(payload))
		}
		bitmap := payload[:chunkVoxels/8]
		br := newBitReader(payload[chunkVoxels/8:])
		for i := range lin {
			if (bitmap[i>>3]>>(uint(i)&7))&1 == 0 {
				continue
			}
			v, err := br.readBits(bpp)
			if err != nil {
				return nil, err
			}
			lin[i] = uint8(v)
		}
	default:
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}
	grid := new(VoxelGrid)
	applyOrder(grid, lin)
	return grid, nil
}

// ParseVOPLHeaderFromBytes parses the header of a full .vopl file and returns
// it with the payload slice.
func ParseVOPLHeaderFromBytes(data []byte) (VOPLHeader, []byte, error) {
	var hdr VOPLHeader
	if len(data) < headerSize || string(data[:4]) != magic {
		return hdr, nil, fmt.Errorf("not a VOPL file")
	}
	if data[4] != version {
		return hdr, nil, fmt.Errorf("unsupported VOPL version %d", data[4])
	}
	r := bytes.NewReader(data[6:headerSize])
	fields := []any{&hdr.BPP, &hdr.W, &hdr.H, &hdr.D, &hdr.Pal, &hdr.PLen}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return hdr, nil, err
		}
	}
	if uint32(len(data)-headerSize) != hdr.PLen {
		return hdr, nil, fmt.Errorf("payload length %d does not match header (%d)", len(data)-headerSize, hdr.PLen)
	}
	hdr.Ver = version
	return hdr, data[headerSize:], nil
}

// BuildVOPLFromHeaderAndPayload reconstructs a full .vopl file from the
// common header fields and the per-file encoding and payload.
func BuildVOPLFromHeaderAndPayload(h VOPLHeader, enc uint8, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, h.Ver)
	_ = binary.Write(&buf, binary.LittleEndian, enc)
	_ = binary.Write(&buf, binary.LittleEndian, h.BPP)
	_ = binary.Write(&buf, binary.LittleEndian, h.W)
	_ = binary.Write(&buf, binary.LittleEndian, h.H)
	_ = binary.Write(&buf, binary.LittleEndian, h.D)
	_ = binary.Write(&buf, binary.LittleEndian, h.Pal)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	_, _ = buf.Write(payload)
	return buf.Bytes()
}
