package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a resolved, typed operand: the concrete payload behind every
// ResolvedValue node in the executable tree and every collected field.
// Exactly one of the typed fields is meaningful, selected by Type.
type Value struct {
	Type   DataType
	Bool   bool
	Int    int64
	Float  float64
	Str    string         // string, version, evr_string textual form
	Bin    []byte
	Record map[string]any // record_data: opaque structured payload
	// Missing marks a contract-optional field that a collector did not
	// populate for a particular item (§4.9): present but unset.
	Missing bool
}

func String(s string) Value    { return Value{Type: TypeString, Str: s} }
func Int64(i int64) Value      { return Value{Type: TypeInt, Int: i} }
func Float64(f float64) Value  { return Value{Type: TypeFloat, Float: f} }
func Bool_(b bool) Value       { return Value{Type: TypeBoolean, Bool: b} }
func Binary(b []byte) Value    { return Value{Type: TypeBinary, Bin: b} }
func Record(m map[string]any) Value { return Value{Type: TypeRecordData, Record: m} }
func Version(s string) Value   { return Value{Type: TypeVersion, Str: s} }
func EvrString(s string) Value { return Value{Type: TypeEvrString, Str: s} }

// MissingValue represents a contract-optional field absent from a
// collected item.
func MissingValue(dt DataType) Value { return Value{Type: dt, Missing: true} }

func (v Value) String() string {
	if v.Missing {
		return "<missing>"
	}
	switch v.Type {
	case TypeString, TypeVersion, TypeEvrString:
		return v.Str
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeBinary:
		return fmt.Sprintf("<%d bytes>", len(v.Bin))
	case TypeRecordData:
		return fmt.Sprintf("<record %d fields>", len(v.Record))
	default:
		return ""
	}
}

// Equal implements the `equals`/`not_equal` operations for every DataType.
func Equal(a, b Value) bool {
	if a.Missing || b.Missing {
		return a.Missing == b.Missing
	}
	switch a.Type {
	case TypeString, TypeVersion, TypeEvrString:
		return a.Str == b.Str
	case TypeInt:
		return a.Int == b.Int
	case TypeFloat:
		return a.Float == b.Float
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeBinary:
		return string(a.Bin) == string(b.Bin)
	case TypeRecordData:
		return recordEqual(a.Record, b.Record)
	default:
		return false
	}
}

func recordEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if fmt.Sprint(av) != fmt.Sprint(bv) {
			return false
		}
	}
	return true
}

// Compare implements the four ordering relations (greater_than, less_than,
// gte, lte) for the DataTypes that support them: int/float compare
// arithmetically, version/evr_string compare by segmented comparison.
// Returns -1, 0, or 1; err is non-nil for unorderable types.
func Compare(a, b Value) (int, error) {
	if a.Type != b.Type {
		return 0, fmt.Errorf("cannot compare mismatched types %s and %s", a.Type, b.Type)
	}
	switch a.Type {
	case TypeInt:
		return cmpInt64(a.Int, b.Int), nil
	case TypeFloat:
		return cmpFloat64(a.Float, b.Float), nil
	case TypeVersion:
		return compareSegments(a.Str, b.Str, false), nil
	case TypeEvrString:
		return compareEvr(a.Str, b.Str), nil
	default:
		return 0, fmt.Errorf("type %s does not support ordering comparisons", a.Type)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareSegments implements version comparison: the string is split on
// '.', '-' and '+', and each segment is compared numerically when both sides
// parse as integers, falling back to lexicographic comparison otherwise.
// Shorter sequences are padded with implicit zero segments.
func compareSegments(a, b string, evr bool) int {
	as := splitVersionSegments(a)
	bs := splitVersionSegments(b)
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		sa, sb := "0", "0"
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}
		if c := compareSegment(sa, sb); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		return cmpInt64(ai, bi)
	}
	return strings.Compare(a, b)
}

func splitVersionSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '+'
	})
}

// compareEvr implements EVR (epoch:version-release) comparison: the epoch
// segment (before an optional leading "N:") takes precedence over the
// version-release segments, which are then compared segment-by-segment.
func compareEvr(a, b string) int {
	aEpoch, aRest := splitEpoch(a)
	bEpoch, bRest := splitEpoch(b)
	if c := cmpInt64(aEpoch, bEpoch); c != 0 {
		return c
	}
	return compareSegments(aRest, bRest, true)
}

func splitEpoch(s string) (int64, string) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		if epoch, err := strconv.ParseInt(s[:idx], 10, 64); err == nil {
			return epoch, s[idx+1:]
		}
	}
	return 0, s
}

// StringMatch implements the string-only operations: contains,
// not_contains, starts_with, ends_with. pattern_match is implemented by
// internal/exec, which owns the compiled-regex cache.
func StringMatch(op Operation, value, operand string) (bool, error) {
	switch op {
	case OpContains:
		return strings.Contains(value, operand), nil
	case OpNotContains:
		return !strings.Contains(value, operand), nil
	case OpStartsWith:
		return strings.HasPrefix(value, operand), nil
	case OpEndsWith:
		return strings.HasSuffix(value, operand), nil
	default:
		return false, fmt.Errorf("operation %s is not a string-match operation", op)
	}
}
