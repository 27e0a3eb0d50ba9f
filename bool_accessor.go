package columnar

// boolAccessor is Accessor_Bool_c (spec §4.4): holds the currently loaded
// block's decoder and knows how to jump to an arbitrary block.
type boolAccessor struct {
	header *AttributeHeader
	data   []byte
	traits StoredBlockTraits

	curBlockId int // -1 means nothing loaded yet
	packing    BoolPacking
	constBlk   storedBlockBoolConst
	bitmapBlk  *storedBlockBoolBitmap
}

func newBoolAccessor(header *AttributeHeader, data []byte) *boolAccessor {
	settings := header.GetSettings()
	return &boolAccessor{
		header:     header,
		data:       data,
		traits:     NewStoredBlockTraits(settings.SubblockSize),
		curBlockId: -1,
		bitmapBlk:  newStoredBlockBoolBitmap(settings.SubblockSize),
	}
}

// SetCurBlock loads blockId's header and dispatches on its packing tag
// (spec §4.4, Accessor_Bool_c::SetCurBlock).
func (a *boolAccessor) SetCurBlock(blockId uint32) error {
	if a.curBlockId == int(blockId) {
		return nil
	}
	a.curBlockId = int(blockId)
	a.traits.SetBlockId(blockId, a.header.GetNumDocs(blockId))

	r := NewReader(a.data)
	r.Seek(a.header.GetBlockOffset(blockId))
	tag, err := r.ReadU8()
	if err != nil {
		return err
	}
	a.packing = BoolPacking(tag)
	switch a.packing {
	case BoolConst:
		return a.constBlk.ReadHeader(r)
	case BoolBitmap:
		a.bitmapBlk.ReadHeader(r, a.traits.NumDocsInBlock())
		return nil
	default:
		return ErrUnknownPacking
	}
}

// GetValue returns the decoded value at rowOffsetInBlock within whichever
// block is currently loaded (spec §4.4's GetValue(tRowID)).
func (a *boolAccessor) GetValue(rowOffsetInBlock uint32) (int64, error) {
	switch a.packing {
	case BoolConst:
		return a.constBlk.GetValue(), nil
	case BoolBitmap:
		subblockId := a.traits.GetSubblockId(rowOffsetInBlock)
		r := NewReader(a.data)
		if err := a.bitmapBlk.ReadSubblock(subblockId, a.traits.GetNumSubblockValues(subblockId), r); err != nil {
			return 0, err
		}
		return a.bitmapBlk.GetValue(a.traits.GetValueIdInSubblock(rowOffsetInBlock)), nil
	default:
		return 0, ErrUnknownPacking
	}
}

// boolIterator is Iterator_Bool_c (spec §4.5): point lookups walking rows
// in ascending order, amortising SetCurBlock across consecutive calls
// within the same block.
type boolIterator struct {
	accessor *boolAccessor
}

func newBoolIterator(header *AttributeHeader, data []byte) *boolIterator {
	return &boolIterator{accessor: newBoolAccessor(header, data)}
}

// Get implements Iterator_i::Get (spec §4.5): decode the value at rowId.
func (it *boolIterator) Get(rowId RowId) (int64, error) {
	blockId := RowId2BlockId(rowId)
	if err := it.accessor.SetCurBlock(blockId); err != nil {
		return 0, err
	}
	rowOffsetInBlock := uint32(rowId) - uint32(it.accessor.traits.StartBlockRowId())
	return it.accessor.GetValue(rowOffsetInBlock)
}

func (it *boolIterator) AdvanceTo(rowId RowId) (int64, error) {
	return it.Get(rowId)
}
