package columnar

import (
	"sync"

	"github.com/v2pro/plz"
	"github.com/v2pro/plz/countlog"
)

var setupOnce sync.Once

// SetupColumnar is the library-wide init entry point (spec §6,
// SetupColumnar): the host process calls it exactly once before opening
// any ColumnarStorageReader. It wires up the ambient logging/concurrency
// plumbing the same way the teacher's test bootstrap does with
// plz.PlugAndPlay(), except here it runs once for the life of the process
// rather than once per test binary.
func SetupColumnar() {
	setupOnce.Do(func() {
		plz.PlugAndPlay()
		countlog.Trace("event!columnar.setup complete", "libVersion", GetColumnarLibVersion())
	})
}

// GetColumnarLibVersion is the library-wide version entry point (spec §6).
func GetColumnarLibVersion() int {
	return LibVersion
}
