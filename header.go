package columnar

// AttributeHeader is the immutable per-attribute directory: how many
// blocks the attribute has, each block's file offset and row count, and
// the file-wide Settings (spec §3/§4.4's AttributeHeader_i). It is shared
// read-only across every Accessor opened against the same attribute
// (spec §3, Lifetimes).
type AttributeHeader struct {
	Name         string
	Type         AttrType
	TotalDocs    uint32
	blockOffsets []int64
	blockDocs    []uint32
	settings     Settings
}

// NewAttributeHeader builds a header from already-known per-block layout,
// the shape a writer would hand a reader after building the file; also
// used directly by tests that assemble a synthetic attribute in memory.
func NewAttributeHeader(name string, typ AttrType, totalDocs uint32, settings Settings, blockOffsets []int64, blockDocs []uint32) *AttributeHeader {
	return &AttributeHeader{
		Name:         name,
		Type:         typ,
		TotalDocs:    totalDocs,
		blockOffsets: blockOffsets,
		blockDocs:    blockDocs,
		settings:     settings,
	}
}

// LoadAttributeHeader reads the directory section for one attribute:
// a varint block count followed by (offset, numDocs) pairs, then Settings.
func LoadAttributeHeader(r *Reader, name string, typ AttrType, totalDocs uint32) (*AttributeHeader, error) {
	numBlocks, err := r.UnpackUint32()
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, numBlocks)
	docs := make([]uint32, numBlocks)
	var sumDocs uint64
	for i := uint32(0); i < numBlocks; i++ {
		off, err := r.UnpackUint32()
		if err != nil {
			return nil, err
		}
		n, err := r.UnpackUint32()
		if err != nil {
			return nil, err
		}
		offsets[i] = int64(off)
		docs[i] = n
		sumDocs += uint64(n)
	}
	if sumDocs != uint64(totalDocs) {
		return nil, ErrBadDirectory
	}
	var settings Settings
	if err := settings.Load(r); err != nil {
		return nil, err
	}
	return &AttributeHeader{
		Name: name, Type: typ, TotalDocs: totalDocs,
		blockOffsets: offsets, blockDocs: docs, settings: settings,
	}, nil
}

func (h *AttributeHeader) GetSettings() Settings { return h.settings }

func (h *AttributeHeader) NumBlocks() int { return len(h.blockOffsets) }

func (h *AttributeHeader) GetBlockOffset(blockId uint32) int64 { return h.blockOffsets[blockId] }

func (h *AttributeHeader) GetNumDocs(blockId uint32) uint32 { return h.blockDocs[blockId] }

// TotalSubblocks returns how many subblocks the whole attribute has at
// the given subblock size, used by Analyzer to size its outer loop.
func (h *AttributeHeader) TotalSubblocks(subblockSize int) int {
	total := 0
	for _, n := range h.blockDocs {
		total += numSubblocksFor(int(n), subblockSize)
	}
	return total
}

func numSubblocksFor(numDocs, subblockSize int) int {
	if numDocs == 0 {
		return 0
	}
	return (numDocs + subblockSize - 1) / subblockSize
}
