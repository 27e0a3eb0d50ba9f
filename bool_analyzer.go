package columnar

// subblockHints is the narrow slice of IteratorHints_t/MatchingSubblocks
// an Analyzer needs (spec §4.6): an ascending cursor over candidate
// subblock ids the caller already knows might match, letting
// GetNextRowIdBlock skip straight past subblocks no hint names.
type subblockHints interface {
	// Next returns the smallest candidate >= from, or ok=false when none remain.
	Next(from int) (id int, ok bool)
}

// boolAnalyzer is Analyzer_Bool_T<HAVE_MATCHING_BLOCKS> (spec §4.8): bulk
// filter evaluation over a BOOLEAN attribute, producing ascending row-id
// blocks of up to SubblockSize matches per call.
type boolAnalyzer struct {
	header *AttributeHeader
	data   []byte
	span   *blockSpan
	traits StoredBlockTraits
	hints  subblockHints

	acceptFalse, acceptTrue bool

	curGlobalSubblock int
	subblockCursor    int // how many values of curGlobalSubblock already emitted
	totalSubblocks    int
	processed         int64 // GetNumProcessed: rows examined so far, incl. whole-block skips

	curBlockId int // -1 means nothing loaded
	packing    BoolPacking
	constBlk   storedBlockBoolConst
	bitmapBlk  *storedBlockBoolBitmap
}

func newBoolAnalyzer(header *AttributeHeader, data []byte, filter *Filter, hints subblockHints) *boolAnalyzer {
	settings := header.GetSettings()
	acceptFalse, acceptTrue := analyzeBoolFilter(filter)
	an := &boolAnalyzer{
		header:       header,
		data:         data,
		span:         newBlockSpan(header, settings.SubblockSize),
		traits:       NewStoredBlockTraits(settings.SubblockSize),
		hints:        hints,
		acceptFalse:  acceptFalse,
		acceptTrue:   acceptTrue,
		curBlockId:   -1,
		bitmapBlk:    newStoredBlockBoolBitmap(settings.SubblockSize),
	}
	an.totalSubblocks = header.TotalSubblocks(settings.SubblockSize)
	return an
}

// analyzeBoolFilter is AnalyzeFilter for BOOL attributes (spec §4.8):
// reduce the filter to "does the analyzer need false rows / true rows".
func analyzeBoolFilter(f *Filter) (acceptFalse, acceptTrue bool) {
	switch f.Type {
	case FilterValues:
		acceptFalse = int64BinarySearch(f.Values, 0)
		acceptTrue = int64BinarySearch(f.Values, 1)
	case FilterRange, FilterFloatRange:
		acceptFalse = ValueInInterval(0, f)
		acceptTrue = ValueInInterval(1, f)
	default:
		acceptFalse, acceptTrue = true, true
	}
	if f.Exclude {
		acceptFalse = !acceptFalse
		acceptTrue = !acceptTrue
	}
	return
}

func (an *boolAnalyzer) loadBlock(blockId uint32) error {
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
	an.packing = BoolPacking(tag)
	switch an.packing {
	case BoolConst:
		return an.constBlk.ReadHeader(r)
	case BoolBitmap:
		an.bitmapBlk.ReadHeader(r, an.traits.NumDocsInBlock())
		return nil
	default:
		return ErrUnknownPacking
	}
}

// blockIsSkippable reports whether the whole currently loaded block can
// contribute zero matches, the CONST fast path MoveToBlock relies on
// (spec §4.8, MoveToBlock).
func (an *boolAnalyzer) blockIsSkippable() bool {
	if an.packing != BoolConst {
		return false
	}
	if an.constBlk.value {
		return !an.acceptTrue
	}
	return !an.acceptFalse
}

// MoveToBlock fast-forwards curGlobalSubblock across any run of leading
// CONST blocks that cannot match, without decoding a single subblock
// (spec §4.8). A whole-block skip still counts its rows as processed
// (spec §8 scenario B).
func (an *boolAnalyzer) MoveToBlock() error {
	for an.curGlobalSubblock < an.totalSubblocks {
		blockId := an.span.SubblockId2BlockId(an.curGlobalSubblock)
		if err := an.loadBlock(blockId); err != nil {
			return err
		}
		if !an.blockIsSkippable() {
			return nil
		}
		an.processed += int64(an.traits.NumDocsInBlock())
		an.curGlobalSubblock = an.span.FirstSubblockOfBlock(blockId + 1)
	}
	return nil
}

// HintRowID is BlockIterator_i::HintRowID (spec §6): advance the cursor to
// the subblock containing rowId. It never moves the cursor backward, since
// emitted row ids must stay strictly ascending (spec §8 property 2).
func (an *boolAnalyzer) HintRowID(rowId RowId) bool {
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
func (an *boolAnalyzer) GetNumProcessed() int64 { return an.processed }

// GetNextRowIdBlock is Analyzer_i::GetNextRowIdBlock (spec §4.8): fills
// dst with up to len(dst) ascending matching row ids, returning how many
// were written (0 meaning exhausted).
func (an *boolAnalyzer) GetNextRowIdBlock(dst []RowId) (int, error) {
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
		case BoolConst:
			accept := an.constBlk.value && an.acceptTrue || !an.constBlk.value && an.acceptFalse
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
			if an.subblockCursor == numValues {
				an.curGlobalSubblock++
				an.subblockCursor = 0
			}
		case BoolBitmap:
			r := NewReader(an.data)
			if err := an.bitmapBlk.ReadSubblock(subblockInBlock, numValues, r); err != nil {
				return n, err
			}
			values := an.bitmapBlk.GetValues()
			for an.subblockCursor < len(values) && n < len(dst) {
				v := values[an.subblockCursor]
				if (v != 0 && an.acceptTrue) || (v == 0 && an.acceptFalse) {
					dst[n] = startRowId + RowId(an.subblockCursor)
					n++
				}
				an.subblockCursor++
				an.processed++
			}
			if an.subblockCursor == len(values) {
				an.curGlobalSubblock++
				an.subblockCursor = 0
			}
		default:
			return n, ErrUnknownPacking
		}
	}
	return n, nil
}
