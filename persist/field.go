package persist

// FieldKind tags the physical shape of a Field value. The RowBuffer carries Field
// values rather than typed columns directly so that a single lane can be
// built up before the backing column writer's physical type is known to the
// caller (it's fixed by the schema, but the buffer itself stays untyped).
type FieldKind uint8

const (
	KindNull FieldKind = iota
	KindBool
	KindInt
	KindUInt
	KindLong
	KindULong
	KindFloat
	KindDouble
	KindStr
)

// Field is a tagged union over the value kinds a leaf column can carry.
// Exactly one of the typed accessors is meaningful, selected by Kind.
type Field struct {
	kind FieldKind
	b    bool
	i32  int32
	u32  uint32
	i64  int64
	u64  uint64
	f32  float32
	f64  float64
	s    string
}

func NullField() Field           { return Field{kind: KindNull} }
func BoolField(v bool) Field     { return Field{kind: KindBool, b: v} }
func IntField(v int32) Field     { return Field{kind: KindInt, i32: v} }
func UIntField(v uint32) Field   { return Field{kind: KindUInt, u32: v} }
func LongField(v int64) Field    { return Field{kind: KindLong, i64: v} }
func ULongField(v uint64) Field  { return Field{kind: KindULong, u64: v} }
func FloatField(v float32) Field { return Field{kind: KindFloat, f32: v} }
func DoubleField(v float64) Field { return Field{kind: KindDouble, f64: v} }
func StrField(v string) Field    { return Field{kind: KindStr, s: v} }

func (f Field) Kind() FieldKind { return f.kind }
func (f Field) IsNull() bool { return f.kind == KindNull }
func (f Field) Bool() bool   { return f.b }
func (f Field) Int() int32   { return f.i32 }
func (f Field) UInt() uint32 { return f.u32 }
func (f Field) Long() int64  { return f.i64 }
func (f Field) ULong() uint64 { return f.u64 }
func (f Field) Float32() float32 { return f.f32 }
func (f Field) Float64() float64 { return f.f64 }
func (f Field) Str() string  { return f.s }
