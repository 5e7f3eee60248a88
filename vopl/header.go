package vopl

// VOPLHeader holds the fields shared by every chunk of a pack. The per-chunk
// encoding byte is stored next to each payload instead.
type VOPLHeader struct {
	Ver  uint8
	BPP  uint8
	W    uint8
	H    uint8
	D    uint8
	Pal  uint16
	PLen uint32 // payload length, only set when parsing a full .vopl
}

// headerForBPP returns the common header of chunks encoded at bpp.
func headerForBPP(bpp uint8) VOPLHeader {
	return VOPLHeader{Ver: version, BPP: bpp, W: Width, H: Height, D: Depth, Pal: 1 << bpp}
}
