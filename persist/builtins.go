package persist

import (
	"math"
	"strings"
	"time"
)

// parsePersistTag reads a `persist:"name,opt1,opt2"` struct tag. An empty
// tag keeps the Go field name; a bare "-" ignores the field entirely; any
// other first segment renames the leaf. The only recognized option today is
// timestamp=ns|us|ms, overriding the field's logical type.
func parsePersistTag(tag, fieldName string) (name string, ignore bool, unit TimeUnit, hasTimestamp bool) {
	if tag == "" {
		return fieldName, false, 0, false
	}
	if tag == "-" {
		return "", true, 0, false
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = fieldName
	}

	for _, opt := range parts[1:] {
		unitStr, ok := strings.CutPrefix(opt, "timestamp=")
		if !ok {
			continue
		}
		hasTimestamp = true
		switch unitStr {
		case "ns":
			unit = UnitNanos
		case "us":
			unit = UnitMicros
		case "ms":
			unit = UnitMillis
		default:
			schemaErrorf("persist: field %s has unknown timestamp unit %q", fieldName, unitStr)
		}
	}
	return name, false, unit, hasTimestamp
}

// safeUnixNano converts t to nanoseconds since the Unix epoch, the same way
// the original record type did: time.Time's own UnixNano is documented as
// undefined outside roughly 1678-2262, so this falls back to 0 rather than
// propagating an undefined value. Callers can't distinguish a genuine epoch
// timestamp from an overflow — carried forward unchanged from the original
// (see SPEC_FULL.md §9).
func safeUnixNano(t time.Time) uint64 {
	if t.Before(time.Unix(0, math.MinInt64)) || t.After(time.Unix(0, math.MaxInt64)) {
		return 0
	}
	return uint64(t.UnixNano())
}
