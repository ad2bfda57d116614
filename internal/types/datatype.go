// Package types defines the closed, immutable type system shared by every
// stage of the compiler and the execution engine: the DataType and
// Operation enums and the compatibility relation between them.
package types

// DataType is the closed set of primitive types an ESP value may carry.
// Values are matched case-sensitively by their spelling, so DataType is
// kept as a distinct string type rather than an int enum: diagnostics and
// serialized IR render it directly.
type DataType string

const (
	TypeString     DataType = "string"
	TypeInt        DataType = "int"
	TypeFloat      DataType = "float"
	TypeBoolean    DataType = "boolean"
	TypeBinary     DataType = "binary"
	TypeRecordData DataType = "record_data"
	TypeVersion    DataType = "version"
	TypeEvrString  DataType = "evr_string"
)

// AllDataTypes enumerates the closed set in declaration order, used by
// DataType.Valid.
var AllDataTypes = []DataType{
	TypeString, TypeInt, TypeFloat, TypeBoolean,
	TypeBinary, TypeRecordData, TypeVersion, TypeEvrString,
}

// Valid reports whether d is a member of the closed DataType set.
func (d DataType) Valid() bool {
	for _, t := range AllDataTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Operation is the closed set of comparators a state assertion may use.
type Operation string

const (
	OpEquals      Operation = "equals"
	OpNotEqual    Operation = "not_equal"
	OpGreaterThan Operation = "greater_than"
	OpLessThan    Operation = "less_than"
	OpGte         Operation = "gte"
	OpLte         Operation = "lte"
	OpContains    Operation = "contains"
	OpNotContains Operation = "not_contains"
	OpStartsWith  Operation = "starts_with"
	OpEndsWith    Operation = "ends_with"
	OpPatternMatch Operation = "pattern_match"
)

// AllOperations enumerates the closed Operation set.
var AllOperations = []Operation{
	OpEquals, OpNotEqual, OpGreaterThan, OpLessThan, OpGte, OpLte,
	OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpPatternMatch,
}

// Valid reports whether o is a member of the closed Operation set.
func (o Operation) Valid() bool {
	for _, v := range AllOperations {
		if v == o {
			return true
		}
	}
	return false
}

var ordering = []Operation{OpEquals, OpNotEqual, OpGreaterThan, OpLessThan, OpGte, OpLte}
var equality = []Operation{OpEquals, OpNotEqual}
var stringOps = []Operation{OpEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpPatternMatch}

// sdkValidOperations is the immutable DataType x Operation compatibility
// relation. It is the single source of truth consulted by semantic
// analysis; nothing mutates it after package init.
//
// Grounded on the conservative RecordData/binary whitelist from the
// original Rust sdk_valid_operations() table: equality only, no
// speculative "future contains" support.
var sdkValidOperations = map[DataType][]Operation{
	TypeString:     stringOps,
	TypeInt:        ordering,
	TypeFloat:      ordering,
	TypeVersion:    ordering,
	TypeEvrString:  ordering,
	TypeBoolean:    equality,
	TypeBinary:     equality,
	TypeRecordData: equality,
}

// ValidOperations returns the allowed operations for dt, or nil if dt is not
// a recognized DataType.
func ValidOperations(dt DataType) []Operation {
	ops := sdkValidOperations[dt]
	out := make([]Operation, len(ops))
	copy(out, ops)
	return out
}

// Compatible reports whether op may be applied to a value of type dt. This
// is the single gate consulted by semantic analysis (§4.6).
func Compatible(dt DataType, op Operation) bool {
	for _, allowed := range sdkValidOperations[dt] {
		if allowed == op {
			return true
		}
	}
	return false
}
