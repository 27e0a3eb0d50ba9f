package columnar

// decodeValuesPFORGeneric dispatches decodeValuesPFOR32/64 by T's
// underlying width, letting mva_block.go share one code path across
// UINT32SET and INT64SET instead of duplicating it per width the way the
// original library does with C++ templates (spec §3/§9).
func decodeValuesPFORGeneric[T MvaValue](r *Reader, codec IntCodec, count int) ([]T, error) {
	var zero T
	switch any(zero).(type) {
	case uint32:
		vals, err := decodeValuesPFOR32(r, codec, count)
		if err != nil {
			return nil, err
		}
		return castUint32Slice[T](vals), nil
	case uint64:
		vals, err := decodeValuesPFOR64(r, codec, count)
		if err != nil {
			return nil, err
		}
		return castUint64Slice[T](vals), nil
	default:
		return nil, ErrUnknownPacking
	}
}

func castUint32Slice[T MvaValue](src []uint32) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = T(v)
	}
	return out
}

func castUint64Slice[T MvaValue](src []uint64) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = T(v)
	}
	return out
}

// readOffsetTable reads a numSubblocks-entry table of per-subblock byte
// lengths, PFOR-coded as first differences of the running cumulative
// offset through the attribute's IntCodec (decodeValuesDeltaPFOR32), and
// returns cumulative offsets (length numSubblocks+1) relative to the
// reader's position right after the table. This is the framing every
// per-subblock MVA packing (ConstLen/Table/DeltaPFOR) and the Scalar
// supplement's PFOR/Table packings use so an Accessor can seek straight to
// an arbitrary subblock without decoding the ones before it (spec §4.2's
// "subblocks are independently addressable").
func readOffsetTable(r *Reader, numSubblocks int, codec IntCodec) ([]int64, error) {
	cumulative, err := decodeValuesDeltaPFOR32(r, codec, numSubblocks)
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, numSubblocks+1)
	for i, c := range cumulative {
		offsets[i+1] = int64(c)
	}
	return offsets, nil
}

func writeOffsetTable(codec IntCodec, chunks [][]byte) []byte {
	cumulative := make([]uint32, len(chunks))
	var running uint32
	for i, c := range chunks {
		running += uint32(len(c))
		cumulative[i] = running
	}
	buf := encodeValuesDeltaPFOR32(codec, cumulative)
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return buf
}
