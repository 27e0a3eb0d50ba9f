package columnar

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/esdb/columnar/ref"
	"github.com/v2pro/plz/countlog"
)

// attributeFile owns the mmap'd backing bytes for one attribute file. It
// is reference counted the way the teacher's top-level store scopes
// acquisition of its segment files (ref/ref.go), though today the only
// holder is the ColumnarStorageReader that opened it: the mmap is unmapped
// when that reader's Close runs (spec §5, "guaranteed release when the
// top-level reader object is destroyed"). Iterators/Analyzers/Accessors
// created from the reader borrow a slice into this mmap directly and do
// not extend its lifetime; they must not be used after the reader closes.
type attributeFile struct {
	*ref.ReferenceCounted
	path string
	file *os.File
	mm   mmap.MMap
}

func openAttributeFile(path string) (*attributeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		countlog.Error("event!file.failed to open attribute file", "path", path, "err", err)
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		countlog.Error("event!file.failed to mmap attribute file", "path", path, "err", err)
		return nil, err
	}
	af := &attributeFile{path: path, file: f, mm: m}
	af.ReferenceCounted = ref.NewReferenceCounted(
		fmt.Sprintf("attributeFile(%s)", path), mmapCloser{m}, f)
	return af, nil
}

// bytes returns the backing slice for a fresh Reader over this file.
func (af *attributeFile) bytes() []byte {
	return af.mm
}

// mmapCloser adapts mmap.MMap (whose Unmap method isn't named Close) to
// io.Closer so it can be handed to ref.NewReferenceCounted.
type mmapCloser struct {
	mm mmap.MMap
}

func (c mmapCloser) Close() error {
	return c.mm.Unmap()
}
