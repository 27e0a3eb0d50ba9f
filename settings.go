package columnar

// Settings mirrors original columnar.h's Settings_t: the per-file knobs
// persisted alongside the attribute directory (spec §6).
type Settings struct {
	SubblockSize      int
	SubblockSizeMva   int
	MinMaxLeafSize    int
	CompressionUint32 string
	CompressionUint64 string
}

// DefaultSettings matches the original library's compiled-in defaults.
func DefaultSettings() Settings {
	return Settings{
		SubblockSize:      128,
		SubblockSizeMva:   128,
		MinMaxLeafSize:    128,
		CompressionUint32: "simdfastpfor128",
		CompressionUint64: "fastpfor128",
	}
}

// Load reads Settings from the directory header of an open attribute file.
func (s *Settings) Load(r *Reader) error {
	subblockSize, err := r.UnpackUint32()
	if err != nil {
		return err
	}
	subblockSizeMva, err := r.UnpackUint32()
	if err != nil {
		return err
	}
	minMaxLeafSize, err := r.UnpackUint32()
	if err != nil {
		return err
	}
	codec32, err := readString(r)
	if err != nil {
		return err
	}
	codec64, err := readString(r)
	if err != nil {
		return err
	}
	s.SubblockSize = int(subblockSize)
	s.SubblockSizeMva = int(subblockSizeMva)
	s.MinMaxLeafSize = int(minMaxLeafSize)
	s.CompressionUint32 = codec32
	s.CompressionUint64 = codec64
	return nil
}

// Save is the encode-side counterpart used by test helpers that build
// synthetic attribute files.
func (s Settings) Save(buf []byte) []byte {
	buf = PackUint32(buf, uint32(s.SubblockSize))
	buf = PackUint32(buf, uint32(s.SubblockSizeMva))
	buf = PackUint32(buf, uint32(s.MinMaxLeafSize))
	buf = writeString(buf, s.CompressionUint32)
	buf = writeString(buf, s.CompressionUint64)
	return buf
}

func readString(r *Reader) (string, error) {
	n, err := r.UnpackUint32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeString(buf []byte, s string) []byte {
	buf = PackUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
