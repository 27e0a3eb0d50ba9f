package columnar

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/v2pro/plz/countlog"
)

// Analyzer is the shared BlockIterator_i surface (spec §6) every attribute
// family's analyzer (bool_analyzer.go/mva_analyzer.go/scalar_analyzer.go)
// implements: bulk filter evaluation producing ascending row-id blocks,
// plus the row-id hint and progress-counter methods callers use to skip
// ahead and to observe how much work has actually run.
type Analyzer interface {
	// HintRowID advances the analyzer's cursor to the subblock containing
	// rowId, returning false if rowId is outside the attribute's row-id
	// domain. It never moves the cursor backward.
	HintRowID(rowId RowId) bool
	GetNextRowIdBlock(dst []RowId) (int, error)
	// GetNumProcessed returns a monotonic count of rows examined so far,
	// counting a wholesale-skipped block's rows even though none of them
	// were individually decoded (spec §8 scenario B).
	GetNumProcessed() int64
}

// attrEntry is one row of the attribute table of contents: where its
// AttributeHeader lives, and optionally where its BlockTester min/max
// summary lives.
type attrEntry struct {
	typ           AttrType
	headerOffset  int64
	minMaxOffset  int64 // 0 means "no BlockTester for this attribute"
	minMaxLeaves  int
}

// ColumnarStorageReader is the Columnar_i equivalent (spec §4.4/§4.6): the
// open handle over one chunk's attribute file, from which Iterators and
// Analyzers are created. Loaded AttributeHeaders are cached with an LRU
// (spec §5's "directory parsing should not repeat per Iterator") the way
// the teacher caches parsed segment metadata.
type ColumnarStorageReader struct {
	file      *attributeFile
	totalDocs uint32
	attrs     map[string]attrEntry

	headerCache *lru.Cache
	testerCache *lru.Cache
}

const headerCacheSize = 256

// CreateColumnarStorageReader opens path and reads its attribute table of
// contents (spec §6, CreateColumnarStorageReader). The file format here is
// this reader's own: a chunk's writer is explicitly out of scope (spec
// §1's external collaborators), so the TOC layout below exists only to
// drive this read path and is not a claim about the original wire format.
func CreateColumnarStorageReader(path string, totalDocs uint32) (*ColumnarStorageReader, error) {
	af, err := openAttributeFile(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(af.bytes())

	numAttrs, err := r.UnpackUint32()
	if err != nil {
		af.Close()
		return nil, err
	}
	attrs := make(map[string]attrEntry, numAttrs)
	for i := uint32(0); i < numAttrs; i++ {
		name, err := readString(r)
		if err != nil {
			af.Close()
			return nil, err
		}
		typByte, err := r.ReadU8()
		if err != nil {
			af.Close()
			return nil, err
		}
		headerOffset, err := r.UnpackUint32()
		if err != nil {
			af.Close()
			return nil, err
		}
		minMaxOffset, err := r.UnpackUint32()
		if err != nil {
			af.Close()
			return nil, err
		}
		minMaxLeaves, err := r.UnpackUint32()
		if err != nil {
			af.Close()
			return nil, err
		}
		attrs[name] = attrEntry{
			typ:          AttrType(typByte),
			headerOffset: int64(headerOffset),
			minMaxOffset: int64(minMaxOffset),
			minMaxLeaves: int(minMaxLeaves),
		}
	}

	headerCache, _ := lru.New(headerCacheSize)
	testerCache, _ := lru.New(headerCacheSize)
	return &ColumnarStorageReader{
		file: af, totalDocs: totalDocs, attrs: attrs,
		headerCache: headerCache, testerCache: testerCache,
	}, nil
}

// Close unmaps the backing attribute file (spec §5's "scoped acquisition
// of the backing file handle with guaranteed release when the top-level
// reader object is destroyed"). The reader owns the mmap for its whole
// lifetime; every Iterator/Analyzer/Accessor it has handed out borrows a
// slice into that mmap and must not be used after Close.
func (c *ColumnarStorageReader) Close() error {
	return c.file.Close()
}

func (c *ColumnarStorageReader) getEntry(name string) (attrEntry, error) {
	e, ok := c.attrs[name]
	if !ok {
		return attrEntry{}, ErrAttributeMissing
	}
	return e, nil
}

func (c *ColumnarStorageReader) getHeader(name string, e attrEntry) (*AttributeHeader, error) {
	if cached, ok := c.headerCache.Get(name); ok {
		return cached.(*AttributeHeader), nil
	}
	r := NewReader(c.file.bytes())
	r.Seek(e.headerOffset)
	header, err := LoadAttributeHeader(r, name, e.typ, c.totalDocs)
	if err != nil {
		countlog.Error("event!columnar.failed to load attribute header", "name", name, "err", err)
		return nil, err
	}
	c.headerCache.Add(name, header)
	return header, nil
}

func (c *ColumnarStorageReader) getTester(name string, e attrEntry) (*BlockTester, error) {
	if e.minMaxOffset == 0 {
		return nil, nil
	}
	if cached, ok := c.testerCache.Get(name); ok {
		return cached.(*BlockTester), nil
	}
	r := NewReader(c.file.bytes())
	r.Seek(e.minMaxOffset)
	header, err := c.getHeader(name, e)
	if err != nil {
		return nil, err
	}
	tester, err := LoadBlockTester(r, header.GetSettings().MinMaxLeafSize, e.minMaxLeaves)
	if err != nil {
		return nil, err
	}
	c.testerCache.Add(name, tester)
	return tester, nil
}

// EarlyReject is Columnar_i's EarlyReject (spec §6): a whole-attribute
// coarse check a caller can run before paying for CreateAnalyzerOrPrefilter
// at all.
func (c *ColumnarStorageReader) EarlyReject(name string, f *Filter) (bool, error) {
	e, err := c.getEntry(name)
	if err != nil {
		return false, err
	}
	tester, err := c.getTester(name, e)
	if err != nil || tester == nil {
		return false, err
	}
	for leaf := 0; leaf < tester.NumLeaves(); leaf++ {
		if !tester.EarlyReject(leaf, f) {
			return false, nil
		}
	}
	return true, nil
}

// EarlyRejectBatch is Columnar_i's batch EarlyReject(filters, blockTester,
// getAttrId) → bool (spec §6): true iff the whole combination of filters is
// provably empty, i.e. any single one of them is individually provably
// empty. Each filter carries its own attribute name (Filter.Name plays the
// role of getAttrId), so this is just EarlyReject folded over the batch.
func (c *ColumnarStorageReader) EarlyRejectBatch(filters []*Filter) (bool, error) {
	for _, f := range filters {
		rejected, err := c.EarlyReject(f.Name, f)
		if err != nil {
			return false, err
		}
		if rejected {
			return true, nil
		}
	}
	return false, nil
}

// CreateAnalyzerOrPrefilter is Columnar_i's CreateAnalyzerOrPrefilter
// (spec §4.6/§4.8): build the right Analyzer for name's stored type.
func (c *ColumnarStorageReader) CreateAnalyzerOrPrefilter(name string, filter *Filter, hints *MatchingSubblocks) (Analyzer, error) {
	e, err := c.getEntry(name)
	if err != nil {
		return nil, err
	}
	header, err := c.getHeader(name, e)
	if err != nil {
		return nil, err
	}
	data := c.file.bytes()
	var h subblockHints
	if hints != nil {
		h = hints
	}
	switch e.typ {
	case AttrBoolean:
		return newBoolAnalyzer(header, data, filter, h), nil
	case AttrUint32Set:
		return newMvaAnalyzer[uint32](header, data, filter, h)
	case AttrInt64Set:
		return newMvaAnalyzer[uint64](header, data, filter, h)
	case AttrUint32, AttrTimestamp, AttrFloat:
		return newScalarAnalyzer[uint32](header, data, filter, h)
	case AttrInt64:
		return newScalarAnalyzer[uint64](header, data, filter, h)
	default:
		return nil, ErrUnknownPacking
	}
}

// CreateAnalyzerOrPrefilterBatch is Columnar_i's batch CreateAnalyzerOrPrefilter
// (spec §6): for each filter, either folds it entirely into its attribute's
// BlockTester (recording its index into the returned deletedFilterIndices
// when every leaf is decided by min/max alone, spec's "fully absorbed") or
// returns an Analyzer the caller drives directly. hints, when non-nil, is
// shared across every returned Analyzer the way a single caller-supplied
// MatchingSubblocks is threaded through one filter chain in spec §4.8.
func (c *ColumnarStorageReader) CreateAnalyzerOrPrefilterBatch(filters []*Filter, hints *MatchingSubblocks) (analyzers []Analyzer, deletedFilterIndices []int, err error) {
	analyzers = make([]Analyzer, 0, len(filters))
	for i, f := range filters {
		e, err := c.getEntry(f.Name)
		if err != nil {
			return nil, nil, err
		}
		tester, err := c.getTester(f.Name, e)
		if err != nil {
			return nil, nil, err
		}
		if tester != nil && tester.FullyAbsorbs(f) {
			deletedFilterIndices = append(deletedFilterIndices, i)
			continue
		}
		an, err := c.CreateAnalyzerOrPrefilter(f.Name, f, hints)
		if err != nil {
			return nil, nil, err
		}
		analyzers = append(analyzers, an)
	}
	return analyzers, deletedFilterIndices, nil
}

// CreateBoolIterator opens a point-lookup Iterator over a BOOLEAN attribute.
func (c *ColumnarStorageReader) CreateBoolIterator(name string) (*boolIterator, error) {
	header, err := c.headerFor(name, AttrBoolean)
	if err != nil {
		return nil, err
	}
	return newBoolIterator(header, c.file.bytes()), nil
}

// CreateUint32SetIterator opens an Iterator over a UINT32SET MVA attribute.
func (c *ColumnarStorageReader) CreateUint32SetIterator(name string) (*mvaIterator[uint32], error) {
	header, err := c.headerFor(name, AttrUint32Set)
	if err != nil {
		return nil, err
	}
	return newMvaIterator[uint32](header, c.file.bytes())
}

// CreateInt64SetIterator opens an Iterator over an INT64SET MVA attribute.
func (c *ColumnarStorageReader) CreateInt64SetIterator(name string) (*mvaIterator[uint64], error) {
	header, err := c.headerFor(name, AttrInt64Set)
	if err != nil {
		return nil, err
	}
	return newMvaIterator[uint64](header, c.file.bytes())
}

// CreateUint32Iterator opens an Iterator over a scalar UINT32/TIMESTAMP/FLOAT attribute.
func (c *ColumnarStorageReader) CreateUint32Iterator(name string) (*scalarIterator[uint32], error) {
	e, err := c.getEntry(name)
	if err != nil {
		return nil, err
	}
	header, err := c.getHeader(name, e)
	if err != nil {
		return nil, err
	}
	return newScalarIterator[uint32](header, c.file.bytes())
}

// CreateInt64Iterator opens an Iterator over a scalar INT64 attribute.
func (c *ColumnarStorageReader) CreateInt64Iterator(name string) (*scalarIterator[uint64], error) {
	header, err := c.headerFor(name, AttrInt64)
	if err != nil {
		return nil, err
	}
	return newScalarIterator[uint64](header, c.file.bytes())
}

// CreateStringAccessor opens the minimal STRING accessor (GetLength/GetStringHash).
func (c *ColumnarStorageReader) CreateStringAccessor(name string) (*stringAccessor, error) {
	header, err := c.headerFor(name, AttrString)
	if err != nil {
		return nil, err
	}
	return newStringAccessor(header, c.file.bytes())
}

func (c *ColumnarStorageReader) headerFor(name string, want AttrType) (*AttributeHeader, error) {
	e, err := c.getEntry(name)
	if err != nil {
		return nil, err
	}
	if e.typ != want {
		return nil, ErrAttributeMissing
	}
	return c.getHeader(name, e)
}
