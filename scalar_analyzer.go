package columnar

// scalarTestFunc decides whether one row's scalar value satisfies a
// filter's positive sense, the Scalar family's analogue of mvaTestFunc.
type scalarTestFunc func(value int64) bool

func buildScalarTestFunc(f *Filter) scalarTestFunc {
	switch f.Type {
	case FilterValues:
		return func(v int64) bool { return int64BinarySearch(f.Values, v) }
	case FilterRange, FilterFloatRange:
		return func(v int64) bool { return ValueInInterval(v, f) }
	default:
		return func(int64) bool { return true }
	}
}

// scalarAnalyzer is the Scalar family's Analyzer_i (spec §4.8), a
// vector-of-1 specialisation with no MVA aggregation to choose between.
type scalarAnalyzer[T MvaValue] struct {
	header *AttributeHeader
	data   []byte
	codec  IntCodec
	span   *blockSpan
	traits StoredBlockTraits
	hints  subblockHints

	test    scalarTestFunc
	exclude bool

	curGlobalSubblock int
	subblockCursor    int
	totalSubblocks    int
	processed         int64 // GetNumProcessed: rows examined so far, incl. whole-subblock skips

	curBlockId int
	packing    ScalarPacking
	constBlk   storedBlockScalarConst[T]
	tableBlk   *storedBlockScalarTable[T]
	pforBlk    *storedBlockScalarPFOR[T]

	tableEntryMatch []bool // scratch: per-entry match result for the loaded TABLE subblock
}

func newScalarAnalyzer[T MvaValue](header *AttributeHeader, data []byte, filter *Filter, hints subblockHints) (*scalarAnalyzer[T], error) {
	settings := header.GetSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	if err != nil {
		return nil, err
	}
	an := &scalarAnalyzer[T]{
		header:     header,
		data:       data,
		codec:      codec,
		span:       newBlockSpan(header, settings.SubblockSize),
		traits:     NewStoredBlockTraits(settings.SubblockSize),
		hints:      hints,
		test:       buildScalarTestFunc(filter),
		exclude:    filter.Exclude,
		curBlockId: -1,
		tableBlk:   newStoredBlockScalarTable[T](settings.SubblockSize),
		pforBlk:    newStoredBlockScalarPFOR[T](settings.SubblockSize),
	}
	an.totalSubblocks = header.TotalSubblocks(settings.SubblockSize)
	return an, nil
}

func (an *scalarAnalyzer[T]) accept(value T) bool {
	return an.test(int64(value)) != an.exclude
}

func (an *scalarAnalyzer[T]) loadBlock(blockId uint32) error {
	if an.curBlockId == int(blockId) {
		return nil
	}
	an.curBlockId = int(blockId)
	an.traits.SetBlockId(blockId, an.header.GetNumDocs(blockId))

	r := NewReader(an.data)
	r.Seek(an.header.GetBlockOffset(blockId))
	tag, err := r.ReadU8()
	if err != nil {
		return err
	}
	an.packing = ScalarPacking(tag)
	switch an.packing {
	case ScalarConst:
		return an.constBlk.ReadHeader(r, an.codec)
	case ScalarTable:
		return an.tableBlk.ReadHeader(r, an.traits.NumDocsInBlock(), an.codec)
	case ScalarPFOR:
		return an.pforBlk.ReadHeader(r, an.traits.NumDocsInBlock(), an.codec)
	default:
		return ErrUnknownPacking
	}
}

func (an *scalarAnalyzer[T]) blockIsSkippable() bool {
	if an.packing != ScalarConst {
		return false
	}
	return !an.accept(an.constBlk.GetValue(0))
}

// tableSubblockIsSkippable is the scalar analogue of mvaAnalyzer's method of
// the same name: decode the current global subblock's dictionary and report
// whether none of its entries can match.
func (an *scalarAnalyzer[T]) tableSubblockIsSkippable() (skippable bool, numValues int, err error) {
	subblockInBlock := an.span.GetSubblockIdInBlock(an.curGlobalSubblock)
	numValues = an.traits.GetNumSubblockValues(subblockInBlock)
	r := NewReader(an.data)
	if err := an.tableBlk.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
		return false, 0, err
	}
	an.refreshTableEntryMatch()
	for _, m := range an.tableEntryMatch {
		if m {
			return false, numValues, nil
		}
	}
	return true, numValues, nil
}

// MoveToBlock fast-forwards curGlobalSubblock across CONST blocks and TABLE
// subblocks that cannot contribute a match, without decoding their rows.
func (an *scalarAnalyzer[T]) MoveToBlock() error {
	for an.curGlobalSubblock < an.totalSubblocks {
		blockId := an.span.SubblockId2BlockId(an.curGlobalSubblock)
		if err := an.loadBlock(blockId); err != nil {
			return err
		}
		switch an.packing {
		case ScalarConst:
			if an.accept(an.constBlk.GetValue(0)) {
				return nil
			}
			an.processed += int64(an.traits.NumDocsInBlock())
			an.curGlobalSubblock = an.span.FirstSubblockOfBlock(blockId + 1)
		case ScalarTable:
			if an.subblockCursor != 0 {
				return nil
			}
			skippable, numValues, err := an.tableSubblockIsSkippable()
			if err != nil {
				return err
			}
			if !skippable {
				return nil
			}
			an.processed += int64(numValues)
			an.curGlobalSubblock++
		default:
			return nil
		}
	}
	return nil
}

// refreshTableEntryMatch precomputes, once per TABLE subblock, which
// dictionary entries satisfy the filter.
func (an *scalarAnalyzer[T]) refreshTableEntryMatch() {
	entries := an.tableBlk.entries
	if cap(an.tableEntryMatch) < len(entries) {
		an.tableEntryMatch = make([]bool, len(entries))
	}
	an.tableEntryMatch = an.tableEntryMatch[:len(entries)]
	for i, e := range entries {
		an.tableEntryMatch[i] = an.accept(e)
	}
}

// HintRowID is BlockIterator_i::HintRowID (spec §6): advance the cursor to
// the subblock containing rowId, never moving it backward.
func (an *scalarAnalyzer[T]) HintRowID(rowId RowId) bool {
	gsb, ok := an.span.GlobalSubblockForRow(an.header, rowId)
	if !ok {
		return false
	}
	if gsb > an.curGlobalSubblock {
		an.curGlobalSubblock = gsb
		an.subblockCursor = 0
	}
	return true
}

// GetNumProcessed is BlockIterator_i::GetNumProcessed (spec §6).
func (an *scalarAnalyzer[T]) GetNumProcessed() int64 { return an.processed }

func (an *scalarAnalyzer[T]) GetNextRowIdBlock(dst []RowId) (int, error) {
	n := 0
	for n < len(dst) {
		if an.hints != nil {
			next, ok := an.hints.Next(an.curGlobalSubblock)
			if !ok {
				break
			}
			an.curGlobalSubblock = next
		}
		if err := an.MoveToBlock(); err != nil {
			return n, err
		}
		if an.curGlobalSubblock >= an.totalSubblocks {
			break
		}

		subblockInBlock := an.span.GetSubblockIdInBlock(an.curGlobalSubblock)
		startRowId := an.traits.StartBlockRowId() + RowId(subblockInBlock*an.traits.subblockSize)
		numValues := an.traits.GetNumSubblockValues(subblockInBlock)

		switch an.packing {
		case ScalarConst:
			if !an.accept(an.constBlk.GetValue(0)) {
				an.processed += int64(numValues - an.subblockCursor)
				an.curGlobalSubblock++
				an.subblockCursor = 0
				continue
			}
			for an.subblockCursor < numValues && n < len(dst) {
				dst[n] = startRowId + RowId(an.subblockCursor)
				n++
				an.subblockCursor++
				an.processed++
			}
		case ScalarTable:
			r := NewReader(an.data)
			if err := an.tableBlk.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
				return n, err
			}
			if an.subblockCursor == 0 {
				an.refreshTableEntryMatch()
			}
			for an.subblockCursor < numValues && n < len(dst) {
				entry := an.tableBlk.rowEntry[an.subblockCursor]
				if an.tableEntryMatch[entry] {
					dst[n] = startRowId + RowId(an.subblockCursor)
					n++
				}
				an.subblockCursor++
				an.processed++
			}
		case ScalarPFOR:
			r := NewReader(an.data)
			if err := an.pforBlk.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
				return n, err
			}
			for an.subblockCursor < numValues && n < len(dst) {
				if an.accept(an.pforBlk.GetValue(an.subblockCursor)) {
					dst[n] = startRowId + RowId(an.subblockCursor)
					n++
				}
				an.subblockCursor++
				an.processed++
			}
		default:
			return n, ErrUnknownPacking
		}

		if an.subblockCursor == numValues {
			an.curGlobalSubblock++
			an.subblockCursor = 0
		}
	}
	return n, nil
}
