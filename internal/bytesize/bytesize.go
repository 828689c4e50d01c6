// Package bytesize provides a byte-count type for configuration values and
// CLI output. Frame-size limits in config files accept spellings like
// "100MB", "256Mi", or plain byte counts, and the type marshals back to the
// same spelling family so a saved config stays readable.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes.
type ByteSize uint64

// Decimal (SI) and binary (IEC) units.
const (
	B  ByteSize = 1
	KB ByteSize = 1000 * B
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024 * B
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// suffixes maps lowercased unit spellings to multipliers. The bare "k", "m",
// ... forms are decimal; the kubernetes-style "ki", "mi", ... forms are
// binary, with or without a trailing "b".
var suffixes = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"t": TB, "tb": TB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
	"ti": TiB, "tib": TiB,
}

// ParseByteSize parses a human-readable byte count: a number, optionally
// fractional, followed by an optional unit suffix. Whitespace around and
// between the two parts is ignored and the suffix is case-insensitive.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	cut := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if cut == 0 {
		return 0, fmt.Errorf("byte size %q does not start with a number", s)
	}
	num, unit := s, ""
	if cut > 0 {
		num, unit = s[:cut], strings.TrimSpace(s[cut:])
	}

	mul, ok := suffixes[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("byte size %q has unknown unit %q", s, unit)
	}

	if strings.ContainsRune(num, '.') {
		// ParseFloat tolerates a trailing dot, "1.Mi" should not.
		if strings.HasSuffix(num, ".") {
			return 0, fmt.Errorf("byte size %q has a malformed number", s)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("byte size %q has a malformed number", s)
		}
		return ByteSize(f * float64(mul)), nil
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("byte size %q has a malformed number", s)
	}
	return ByteSize(n) * mul, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText implements encoding.TextMarshaler, so configs written with
// yaml.Marshal keep human-readable sizes instead of raw byte counts.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// exactUnits is ordered largest first so String picks the biggest unit that
// divides the value evenly.
var exactUnits = []struct {
	mul    ByteSize
	suffix string
}{
	{TiB, "TiB"}, {TB, "TB"},
	{GiB, "GiB"}, {GB, "GB"},
	{MiB, "MiB"}, {MB, "MB"},
	{KiB, "KiB"}, {KB, "KB"},
}

// String renders the size with the largest unit that represents it exactly,
// falling back to raw bytes. The output always round-trips through
// ParseByteSize unchanged, which is what lets MarshalText use it.
func (b ByteSize) String() string {
	for _, u := range exactUnits {
		if b >= u.mul && b%u.mul == 0 {
			return strconv.FormatUint(uint64(b/u.mul), 10) + u.suffix
		}
	}
	return strconv.FormatUint(uint64(b), 10) + "B"
}

// Format renders a raw byte count for humans, rounding to one decimal of the
// largest binary unit. Unlike String it trades precision for readability, so
// it suits file listings rather than config values.
func Format(n int64) string {
	if n < 0 {
		return strconv.FormatInt(n, 10) + "B"
	}
	b := ByteSize(n)
	switch {
	case b >= TiB:
		return approx(float64(b)/float64(TiB), "TiB")
	case b >= GiB:
		return approx(float64(b)/float64(GiB), "GiB")
	case b >= MiB:
		return approx(float64(b)/float64(MiB), "MiB")
	case b >= KiB:
		return approx(float64(b)/float64(KiB), "KiB")
	default:
		return strconv.FormatUint(uint64(b), 10) + "B"
	}
}

func approx(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + unit
}

// Uint64 returns the size as a plain uint64.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}
