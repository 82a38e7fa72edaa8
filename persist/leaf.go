package persist

// PhysicalType mirrors the small set of Parquet primitive physical types this
// engine emits. It's a closed set deliberately: the engine never needs nested
// group or repeated-group physical types (see SPEC_FULL.md §1 Non-goals).
type PhysicalType uint8

const (
	PhysicalBool PhysicalType = iota
	PhysicalInt32
	PhysicalInt64
	PhysicalFloat
	PhysicalDouble
	PhysicalByteArray
)

func (p PhysicalType) String() string {
	switch p {
	case PhysicalBool:
		return "BOOL"
	case PhysicalInt32:
		return "INT32"
	case PhysicalInt64:
		return "INT64"
	case PhysicalFloat:
		return "FLOAT"
	case PhysicalDouble:
		return "DOUBLE"
	case PhysicalByteArray:
		return "BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// Repetition is REQUIRED unless a field sits behind a pointer (Go's stand-in
// for Option<T>), in which case every descendant leaf becomes OPTIONAL.
type Repetition uint8

const (
	Required Repetition = iota
	Optional
)

func (r Repetition) String() string {
	if r == Optional {
		return "OPTIONAL"
	}
	return "REQUIRED"
}

// TimeUnit is the resolution of a TIMESTAMP logical type.
type TimeUnit uint8

const (
	UnitNanos TimeUnit = iota
	UnitMicros
	UnitMillis
)

// LogicalKind distinguishes the handful of logical type annotations this
// engine derives. The zero value, LogicalNone, means "no logical annotation".
type LogicalKind uint8

const (
	LogicalNone LogicalKind = iota
	LogicalString
	LogicalTimestamp
)

// LogicalType is the optional annotation layered over a leaf's physical type.
type LogicalType struct {
	Kind          LogicalKind
	Unit          TimeUnit
	AdjustedToUTC bool
}

// StringLogical is the STRING logical type paired with BYTE_ARRAY columns.
var StringLogical = LogicalType{Kind: LogicalString}

// TimestampLogical builds a UTC-adjusted TIMESTAMP logical type at the given
// unit, the only variant this engine's built-ins ever produce.
func TimestampLogical(unit TimeUnit) LogicalType {
	return LogicalType{Kind: LogicalTimestamp, Unit: unit, AdjustedToUTC: true}
}

// Leaf is one column in the derived schema: a name, its physical
// representation, its nullability, and any logical annotation.
type Leaf struct {
	Name       string
	Physical   PhysicalType
	Repetition Repetition
	Logical    LogicalType
}

func (l Leaf) String() string {
	return l.Name + ":" + l.Physical.String()
}
