package columnar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildSingleBoolAttributeFile assembles a minimal on-disk layout with one
// TOC entry, one attribute directory and one BITMAP block, wiring
// together the same pieces CreateColumnarStorageReader expects to read
// (spec §6's end-to-end scenario A: open a reader, iterate a filter).
func buildSingleBoolAttributeFile(t *testing.T, predicate func(i int) bool, numDocs int) string {
	settings := DefaultSettings()
	_, blockData := buildBoolBitmapAttribute(numDocs, predicate)

	toc := func(headerOffset uint32) []byte {
		buf := PackUint32(nil, 1) // numAttrs
		buf = writeString(buf, "flag")
		buf = append(buf, byte(AttrBoolean))
		buf = PackUint32(buf, headerOffset)
		buf = PackUint32(buf, 0) // minMaxOffset: none
		buf = PackUint32(buf, 0) // minMaxLeaves
		return buf
	}
	tocLen := len(toc(0))
	require.Less(t, tocLen, 128, "test assumes single-byte varint offsets")

	directory := func(blockOffset uint32) []byte {
		buf := PackUint32(nil, 1) // numBlocks
		buf = PackUint32(buf, blockOffset)
		buf = PackUint32(buf, uint32(numDocs))
		buf = settings.Save(buf)
		return buf
	}
	dirLen := len(directory(0))
	require.Less(t, dirLen, 128, "test assumes single-byte varint offsets")

	blockOffset := uint32(tocLen + dirLen)
	file := append(toc(uint32(tocLen)), directory(blockOffset)...)
	file = append(file, blockData...)

	dir := t.TempDir()
	path := filepath.Join(dir, "attrs.bin")
	require.NoError(t, os.WriteFile(path, file, 0644))
	return path
}

func Test_columnar_storage_reader_end_to_end(t *testing.T) {
	should := require.New(t)
	predicate := func(i int) bool { return i%5 == 0 }
	path := buildSingleBoolAttributeFile(t, predicate, 300)

	reader, err := CreateColumnarStorageReader(path, 300)
	should.NoError(err)
	defer reader.Close()

	should.Equal(LibVersion, GetColumnarLibVersion())

	it, err := reader.CreateBoolIterator("flag")
	should.NoError(err)
	v, err := it.Get(5)
	should.NoError(err)
	should.Equal(int64(1), v)
	v, err = it.Get(7)
	should.NoError(err)
	should.Equal(int64(0), v)

	filter := &Filter{Type: FilterValues, Values: []int64{1}}
	an, err := reader.CreateAnalyzerOrPrefilter("flag", filter, nil)
	should.NoError(err)

	var matches []RowId
	buf := make([]RowId, 32)
	for {
		n, err := an.GetNextRowIdBlock(buf)
		should.NoError(err)
		if n == 0 {
			break
		}
		matches = append(matches, buf[:n]...)
	}
	var want []RowId
	for i := 0; i < 300; i++ {
		if predicate(i) {
			want = append(want, RowId(i))
		}
	}
	should.Equal(want, matches)

	_, err = reader.CreateBoolIterator("missing")
	should.Equal(ErrAttributeMissing, err)
}

// buildSingleScalarAttributeFileWithTester assembles a TOC + directory +
// BlockTester leaf + PFOR block for one scalar attribute, covering the
// minMaxOffset path CreateAnalyzerOrPrefilterBatch/EarlyRejectBatch rely on
// (spec §6's blockTester/getAttrId-driven batch entry points).
func buildSingleScalarAttributeFileWithTester(t *testing.T, name string, values []uint32) string {
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	require.NoError(t, err)
	chunk := encodeValuesPFOR32(codec, values)
	blockData := append([]byte{byte(ScalarPFOR)}, writeOffsetTable(codec, [][]byte{chunk})...)

	var lo, hi int64 = int64(values[0]), int64(values[0])
	for _, v := range values {
		if int64(v) < lo {
			lo = int64(v)
		}
		if int64(v) > hi {
			hi = int64(v)
		}
	}
	minmax := writeZigzag(nil, lo)
	minmax = writeZigzag(minmax, hi)

	toc := func(headerOffset, minMaxOffset uint32) []byte {
		buf := PackUint32(nil, 1) // numAttrs
		buf = writeString(buf, name)
		buf = append(buf, byte(AttrUint32))
		buf = PackUint32(buf, headerOffset)
		buf = PackUint32(buf, minMaxOffset)
		buf = PackUint32(buf, 1) // minMaxLeaves
		return buf
	}
	tocLen := len(toc(0, 0))
	require.Less(t, tocLen, 128, "test assumes single-byte varint offsets")

	directory := func(blockOffset uint32) []byte {
		buf := PackUint32(nil, 1) // numBlocks
		buf = PackUint32(buf, blockOffset)
		buf = PackUint32(buf, uint32(len(values)))
		buf = settings.Save(buf)
		return buf
	}
	dirLen := len(directory(0))
	require.Less(t, dirLen, 128, "test assumes single-byte varint offsets")

	minMaxOffset := uint32(tocLen + dirLen)
	blockOffset := uint32(tocLen + dirLen + len(minmax))
	file := append(toc(uint32(tocLen), minMaxOffset), directory(blockOffset)...)
	file = append(file, minmax...)
	file = append(file, blockData...)

	dir := t.TempDir()
	path := filepath.Join(dir, "attrs.bin")
	require.NoError(t, os.WriteFile(path, file, 0644))
	return path
}

func Test_create_analyzer_or_prefilter_batch(t *testing.T) {
	should := require.New(t)
	values := []uint32{10, 20, 30, 40, 50}
	path := buildSingleScalarAttributeFileWithTester(t, "score", values)

	reader, err := CreateColumnarStorageReader(path, uint32(len(values)))
	should.NoError(err)
	defer reader.Close()

	// fully inside [10,50]: every leaf is wholly accepted by min/max alone.
	absorbed := &Filter{Name: "score", Type: FilterRange, MinValue: 10, MaxValue: 50, LeftClosed: true, RightClosed: true}
	// straddles the leaf's min/max: needs row-by-row decoding.
	needsAnalyzer := &Filter{Name: "score", Type: FilterRange, MinValue: 20, MaxValue: 30, LeftClosed: true, RightClosed: true}

	analyzers, deleted, err := reader.CreateAnalyzerOrPrefilterBatch([]*Filter{absorbed, needsAnalyzer}, nil)
	should.NoError(err)
	should.Equal([]int{0}, deleted)
	should.Len(analyzers, 1)

	buf := make([]RowId, 10)
	n, err := analyzers[0].GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal([]RowId{1, 2}, buf[:n])

	rejected, err := reader.EarlyRejectBatch([]*Filter{absorbed, needsAnalyzer})
	should.NoError(err)
	should.False(rejected)

	impossible := &Filter{Name: "score", Type: FilterRange, MinValue: 1000, MaxValue: 2000, LeftClosed: true, RightClosed: true}
	rejected, err = reader.EarlyRejectBatch([]*Filter{absorbed, impossible})
	should.NoError(err)
	should.True(rejected)
}

func Test_setup_columnar_is_idempotent(t *testing.T) {
	SetupColumnar()
	SetupColumnar()
}
