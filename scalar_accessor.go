package columnar

// scalarAccessor is the Scalar family's Accessor (SPEC_FULL.md's
// supplemented UINT32/INT64 attributes): single values rather than MVA
// sets, sharing the same block/subblock traits and IntCodec plumbing.
type scalarAccessor[T MvaValue] struct {
	header *AttributeHeader
	data   []byte
	codec  IntCodec
	traits StoredBlockTraits

	curBlockId int
	packing    ScalarPacking
	constBlk   storedBlockScalarConst[T]
	tableBlk   *storedBlockScalarTable[T]
	pforBlk    *storedBlockScalarPFOR[T]
}

func newScalarAccessor[T MvaValue](header *AttributeHeader, data []byte) (*scalarAccessor[T], error) {
	settings := header.GetSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	if err != nil {
		return nil, err
	}
	return &scalarAccessor[T]{
		header:     header,
		data:       data,
		codec:      codec,
		traits:     NewStoredBlockTraits(settings.SubblockSize),
		curBlockId: -1,
		tableBlk:   newStoredBlockScalarTable[T](settings.SubblockSize),
		pforBlk:    newStoredBlockScalarPFOR[T](settings.SubblockSize),
	}, nil
}

func (a *scalarAccessor[T]) SetCurBlock(blockId uint32) error {
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
	a.packing = ScalarPacking(tag)
	switch a.packing {
	case ScalarConst:
		return a.constBlk.ReadHeader(r, a.codec)
	case ScalarTable:
		return a.tableBlk.ReadHeader(r, a.traits.NumDocsInBlock(), a.codec)
	case ScalarPFOR:
		return a.pforBlk.ReadHeader(r, a.traits.NumDocsInBlock(), a.codec)
	default:
		return ErrUnknownPacking
	}
}

func (a *scalarAccessor[T]) GetValue(rowOffsetInBlock uint32) (T, error) {
	switch a.packing {
	case ScalarConst:
		return a.constBlk.GetValue(rowOffsetInBlock), nil
	case ScalarTable:
		subblockId := a.traits.GetSubblockId(rowOffsetInBlock)
		numValues := a.traits.GetNumSubblockValues(subblockId)
		r := NewReader(a.data)
		if err := a.tableBlk.ReadSubblock(subblockId, numValues, r, a.codec); err != nil {
			var zero T
			return zero, err
		}
		return a.tableBlk.GetValue(a.traits.GetValueIdInSubblock(rowOffsetInBlock)), nil
	case ScalarPFOR:
		subblockId := a.traits.GetSubblockId(rowOffsetInBlock)
		numValues := a.traits.GetNumSubblockValues(subblockId)
		r := NewReader(a.data)
		if err := a.pforBlk.ReadSubblock(subblockId, numValues, r, a.codec); err != nil {
			var zero T
			return zero, err
		}
		return a.pforBlk.GetValue(a.traits.GetValueIdInSubblock(rowOffsetInBlock)), nil
	default:
		var zero T
		return zero, ErrUnknownPacking
	}
}

// scalarIterator is Iterator_i for a Scalar attribute (spec §4.5).
type scalarIterator[T MvaValue] struct {
	accessor *scalarAccessor[T]
}

func newScalarIterator[T MvaValue](header *AttributeHeader, data []byte) (*scalarIterator[T], error) {
	acc, err := newScalarAccessor[T](header, data)
	if err != nil {
		return nil, err
	}
	return &scalarIterator[T]{accessor: acc}, nil
}

func (it *scalarIterator[T]) Get(rowId RowId) (T, error) {
	blockId := RowId2BlockId(rowId)
	if err := it.accessor.SetCurBlock(blockId); err != nil {
		var zero T
		return zero, err
	}
	rowOffsetInBlock := uint32(rowId) - uint32(it.accessor.traits.StartBlockRowId())
	return it.accessor.GetValue(rowOffsetInBlock)
}

func (it *scalarIterator[T]) AdvanceTo(rowId RowId) (T, error) {
	return it.Get(rowId)
}
