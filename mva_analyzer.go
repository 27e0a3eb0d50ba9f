package columnar

// mvaTestFunc decides whether one row's ascending MVA vector satisfies a
// filter's positive sense (spec §4.7; Exclude is applied by the caller
// afterwards). Building this closure once at construction, rather than
// re-branching on FilterType/MvaAggr per row, is the Go equivalent of the
// original library's CreateAnalyzerMVA compile-time dispatch (spec §9).
type mvaTestFunc[T MvaValue] func(values []T) bool

func buildMvaTestFunc[T MvaValue](f *Filter) mvaTestFunc[T] {
	c := f.closedness()
	switch f.MvaAggr {
	case MvaAggrAll:
		switch f.Type {
		case FilterValues:
			return func(values []T) bool { return mvaAllTestValues(values, f.Values) }
		case FilterRange, FilterFloatRange:
			min, max := f.effectiveMin(), f.effectiveMax()
			return func(values []T) bool { return mvaAllTestRange(values, min, max, c) }
		}
	default: // MvaAggrAny, and MvaAggrNone treated as ANY (spec §4.7 default)
		switch f.Type {
		case FilterValues:
			return func(values []T) bool { return mvaAnyTestValues(values, f.Values) }
		case FilterRange, FilterFloatRange:
			min, max := f.effectiveMin(), f.effectiveMax()
			return func(values []T) bool { return mvaAnyTestRange(values, min, max, c) }
		}
	}
	return func(values []T) bool { return true }
}

// mvaAnalyzer is Analyzer_MVA_T<T,T_COMP,FUNC,HAVE_MATCHING_BLOCKS>
// (spec §4.8): bulk filter evaluation over an MVA attribute.
type mvaAnalyzer[T MvaValue] struct {
	header *AttributeHeader
	data   []byte
	codec  IntCodec
	span   *blockSpan
	traits StoredBlockTraits
	hints  subblockHints

	test    mvaTestFunc[T]
	exclude bool

	curGlobalSubblock int
	subblockCursor    int
	totalSubblocks    int
	processed         int64 // GetNumProcessed: rows examined so far, incl. whole-subblock skips

	curBlockId int
	packing    MvaPacking
	constBlk   storedBlockMvaConst[T]
	constLen   *storedBlockMvaConstLen[T]
	table      *storedBlockMvaTable[T]
	pfor       *storedBlockMvaPFOR[T]

	tableEntryMatch []bool // scratch: per-entry match result for the loaded TABLE subblock
}

func newMvaAnalyzer[T MvaValue](header *AttributeHeader, data []byte, filter *Filter, hints subblockHints) (*mvaAnalyzer[T], error) {
	settings := header.GetSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	if err != nil {
		return nil, err
	}
	an := &mvaAnalyzer[T]{
		header:     header,
		data:       data,
		codec:      codec,
		span:       newBlockSpan(header, settings.SubblockSizeMva),
		traits:     NewStoredBlockTraits(settings.SubblockSizeMva),
		hints:      hints,
		test:       buildMvaTestFunc[T](filter),
		exclude:    filter.Exclude,
		curBlockId: -1,
		constLen:   newStoredBlockMvaConstLen[T](settings.SubblockSizeMva),
		table:      newStoredBlockMvaTable[T](settings.SubblockSizeMva),
		pfor:       newStoredBlockMvaPFOR[T](settings.SubblockSizeMva),
	}
	an.totalSubblocks = header.TotalSubblocks(settings.SubblockSizeMva)
	return an, nil
}

func (an *mvaAnalyzer[T]) accept(values []T) bool {
	return an.test(values) != an.exclude
}

func (an *mvaAnalyzer[T]) loadBlock(blockId uint32) error {
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
	an.packing = MvaPacking(tag)
	switch an.packing {
	case MvaConst:
		return an.constBlk.ReadHeader(r, an.codec)
	case MvaConstLen:
		return an.constLen.ReadHeader(r, an.traits.NumDocsInBlock(), an.codec)
	case MvaTable:
		return an.table.ReadHeader(r, an.traits.NumDocsInBlock(), an.codec)
	case MvaDeltaPFOR:
		return an.pfor.ReadHeader(r, an.traits.NumDocsInBlock(), an.codec)
	default:
		return ErrUnknownPacking
	}
}

// blockIsSkippable is the CONST fast path of MoveToBlock (spec §4.8):
// a CONST block's single shared vector decides the whole block at once.
func (an *mvaAnalyzer[T]) blockIsSkippable() bool {
	if an.packing != MvaConst {
		return false
	}
	return !an.accept(an.constBlk.GetValues(0))
}

// tableSubblockIsSkippable decodes the current global subblock's TABLE
// dictionary and reports whether none of its entries can match — the
// per-subblock equivalent of spec's "TABLE: precompute m_dMap; if any
// entry matches, leave the loop" (spec §4.8 MoveToBlock step 5). Unlike
// MvaConst, a TABLE block's dictionary is framed per subblock rather than
// once per block (spec §4.2's independent-subblock framing), so the skip
// decision is made one subblock at a time instead of for the whole block.
func (an *mvaAnalyzer[T]) tableSubblockIsSkippable() (skippable bool, numValues int, err error) {
	subblockInBlock := an.span.GetSubblockIdInBlock(an.curGlobalSubblock)
	numValues = an.traits.GetNumSubblockValues(subblockInBlock)
	r := NewReader(an.data)
	if err := an.table.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
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

// MoveToBlock fast-forwards curGlobalSubblock across CONST blocks and
// TABLE subblocks that cannot contribute a match, without decoding the
// row vectors they hold (spec §4.8, §8 property 9).
func (an *mvaAnalyzer[T]) MoveToBlock() error {
	for an.curGlobalSubblock < an.totalSubblocks {
		blockId := an.span.SubblockId2BlockId(an.curGlobalSubblock)
		if err := an.loadBlock(blockId); err != nil {
			return err
		}
		switch an.packing {
		case MvaConst:
			if an.accept(an.constBlk.GetValues(0)) {
				return nil
			}
			an.processed += int64(an.traits.NumDocsInBlock())
			an.curGlobalSubblock = an.span.FirstSubblockOfBlock(blockId + 1)
		case MvaTable:
			if an.subblockCursor != 0 {
				// already positioned mid-subblock from a prior call; this
				// subblock was confirmed non-skippable when we entered it.
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
// dictionary entries satisfy the filter so ProcessSubblock only has to
// test each row's entry index rather than re-testing its vector (spec
// §4.8's "TABLE" skip path).
func (an *mvaAnalyzer[T]) refreshTableEntryMatch() {
	entries := an.table.entries
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
func (an *mvaAnalyzer[T]) HintRowID(rowId RowId) bool {
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
func (an *mvaAnalyzer[T]) GetNumProcessed() int64 { return an.processed }

// GetNextRowIdBlock fills dst with up to len(dst) ascending matching row
// ids (spec §4.8), returning how many were written.
func (an *mvaAnalyzer[T]) GetNextRowIdBlock(dst []RowId) (int, error) {
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
		r := NewReader(an.data)

		switch an.packing {
		case MvaConst:
			accept := an.accept(an.constBlk.GetValues(0))
			if !accept {
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
		case MvaConstLen:
			if err := an.constLen.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
				return n, err
			}
			for an.subblockCursor < numValues && n < len(dst) {
				if an.accept(an.constLen.GetValues(an.subblockCursor)) {
					dst[n] = startRowId + RowId(an.subblockCursor)
					n++
				}
				an.subblockCursor++
				an.processed++
			}
		case MvaTable:
			if err := an.table.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
				return n, err
			}
			if an.subblockCursor == 0 {
				an.refreshTableEntryMatch()
			}
			for an.subblockCursor < numValues && n < len(dst) {
				entry := an.table.rowEntry[an.subblockCursor]
				if an.tableEntryMatch[entry] {
					dst[n] = startRowId + RowId(an.subblockCursor)
					n++
				}
				an.subblockCursor++
				an.processed++
			}
		case MvaDeltaPFOR:
			if err := an.pfor.ReadSubblock(subblockInBlock, numValues, r, an.codec); err != nil {
				return n, err
			}
			for an.subblockCursor < numValues && n < len(dst) {
				if an.accept(an.pfor.GetValues(an.subblockCursor)) {
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
