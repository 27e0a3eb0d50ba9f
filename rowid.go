package columnar

// RowId identifies a document within an attribute's row-id domain.
type RowId = uint32

// InvalidRowId marks "unset" the way the original columnar format does.
const InvalidRowId RowId = 0xFFFFFFFF

// AttrType enumerates the attribute types this read path understands.
// UINT32, TIMESTAMP, INT64, FLOAT are folded into ScalarInt (see
// scalar_block.go); STRING is handled by stringattr.go.
type AttrType int

const (
	AttrNone AttrType = iota
	AttrUint32
	AttrTimestamp
	AttrInt64
	AttrBoolean
	AttrFloat
	AttrString
	AttrUint32Set
	AttrInt64Set
)

// LibVersion mirrors original columnar.h's LIB_VERSION.
const LibVersion = 4
