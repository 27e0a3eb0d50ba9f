package columnar

import "errors"

// File-level errors (spec §7, FileIO / FormatCorruption).
var (
	ErrReadPastEnd      = errors.New("columnar: read past end of file")
	ErrSeekOutOfRange   = errors.New("columnar: seek out of range")
	ErrUnknownPacking   = errors.New("columnar: unknown packing tag")
	ErrAttributeMissing = errors.New("columnar: attribute not found")
	ErrBadDirectory     = errors.New("columnar: corrupt attribute directory")
	ErrCodecUnknown     = errors.New("columnar: unknown int codec")
)
