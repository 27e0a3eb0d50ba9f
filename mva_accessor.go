package columnar

// mvaAccessor is Accessor_MVA_T<T> (spec §4.4): holds the currently loaded
// block's decoder, generalised over UINT32SET/INT64SET via Go generics
// instead of the original per-width template instantiation.
type mvaAccessor[T MvaValue] struct {
	header *AttributeHeader
	data   []byte
	codec  IntCodec
	traits StoredBlockTraits

	curBlockId int
	packing    MvaPacking
	constBlk   storedBlockMvaConst[T]
	constLen   *storedBlockMvaConstLen[T]
	table      *storedBlockMvaTable[T]
	pfor       *storedBlockMvaPFOR[T]
}

func newMvaAccessor[T MvaValue](header *AttributeHeader, data []byte) (*mvaAccessor[T], error) {
	settings := header.GetSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	if err != nil {
		return nil, err
	}
	return &mvaAccessor[T]{
		header:     header,
		data:       data,
		codec:      codec,
		traits:     NewStoredBlockTraits(settings.SubblockSizeMva),
		curBlockId: -1,
		constLen:   newStoredBlockMvaConstLen[T](settings.SubblockSizeMva),
		table:      newStoredBlockMvaTable[T](settings.SubblockSizeMva),
		pfor:       newStoredBlockMvaPFOR[T](settings.SubblockSizeMva),
	}, nil
}

// SetCurBlock loads blockId's header and dispatches on its packing tag
// (spec §4.4, Accessor_MVA_T::SetCurBlock).
func (a *mvaAccessor[T]) SetCurBlock(blockId uint32) error {
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
	a.packing = MvaPacking(tag)
	switch a.packing {
	case MvaConst:
		return a.constBlk.ReadHeader(r, a.codec)
	case MvaConstLen:
		return a.constLen.ReadHeader(r, a.traits.NumDocsInBlock(), a.codec)
	case MvaTable:
		return a.table.ReadHeader(r, a.traits.NumDocsInBlock(), a.codec)
	case MvaDeltaPFOR:
		return a.pfor.ReadHeader(r, a.traits.NumDocsInBlock(), a.codec)
	default:
		return ErrUnknownPacking
	}
}

// GetValues returns the decoded ascending vector for rowOffsetInBlock
// within whichever block is currently loaded.
func (a *mvaAccessor[T]) GetValues(rowOffsetInBlock uint32) ([]T, error) {
	subblockId := a.traits.GetSubblockId(rowOffsetInBlock)
	idInSubblock := a.traits.GetValueIdInSubblock(rowOffsetInBlock)
	numValues := a.traits.GetNumSubblockValues(subblockId)
	r := NewReader(a.data)

	switch a.packing {
	case MvaConst:
		return a.constBlk.GetValues(rowOffsetInBlock), nil
	case MvaConstLen:
		if err := a.constLen.ReadSubblock(subblockId, numValues, r, a.codec); err != nil {
			return nil, err
		}
		return a.constLen.GetValues(idInSubblock), nil
	case MvaTable:
		if err := a.table.ReadSubblock(subblockId, numValues, r, a.codec); err != nil {
			return nil, err
		}
		return a.table.GetValues(idInSubblock), nil
	case MvaDeltaPFOR:
		if err := a.pfor.ReadSubblock(subblockId, numValues, r, a.codec); err != nil {
			return nil, err
		}
		return a.pfor.GetValues(idInSubblock), nil
	default:
		return nil, ErrUnknownPacking
	}
}

// mvaIterator is Iterator_MVA_T<T> (spec §4.5): point lookups of an
// attribute's per-row ascending vector.
type mvaIterator[T MvaValue] struct {
	accessor *mvaAccessor[T]
}

func newMvaIterator[T MvaValue](header *AttributeHeader, data []byte) (*mvaIterator[T], error) {
	acc, err := newMvaAccessor[T](header, data)
	if err != nil {
		return nil, err
	}
	return &mvaIterator[T]{accessor: acc}, nil
}

func (it *mvaIterator[T]) Get(rowId RowId) ([]T, error) {
	blockId := RowId2BlockId(rowId)
	if err := it.accessor.SetCurBlock(blockId); err != nil {
		return nil, err
	}
	rowOffsetInBlock := uint32(rowId) - uint32(it.accessor.traits.StartBlockRowId())
	return it.accessor.GetValues(rowOffsetInBlock)
}

func (it *mvaIterator[T]) AdvanceTo(rowId RowId) ([]T, error) {
	return it.Get(rowId)
}
