// Package token defines the lexical token kinds the lexer emits and the
// reserved-keyword table consulted to retag identifiers (§4.1).
package token

import "github.com/espsec/espc/internal/span"

// Kind discriminates the token categories the lexer can produce.
type Kind int

const (
	Illegal Kind = iota
	EOF

	Ident // [A-Za-z_][A-Za-z0-9_]*, not a reserved keyword

	// Literals
	StringLit
	IntLit
	FloatLit

	// Punctuation
	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Colon     // :
	Comma     // ,
	Dot       // .
	Equals    // =
	Star      // * (multiplication)
	Plus      // +
	Minus     // -
	Slash     // /

	keywordStart
	KwMetadata
	KwVariable
	KwSet
	KwObject
	KwState
	KwCriterion
	KwModule
	KwParameter
	KwSelect
	KwBehavior
	KwFilter
	KwSetRef
	KwField
	KwTrue
	KwFalse
	KwUnion
	KwIntersection
	KwDifference
	KwAdd
	KwSubtract
	KwMultiply
	KwDivide
	KwObjectRef
	KwStateRef
	KwJoin
	KwExists
	KwNotExists
	KwCountOp
	KwAtLeast
	KwAll
	KwAny
	KwNone
	KwAnd
	KwOr
	KwSeverity
	// DataType keywords
	KwString
	KwInt
	KwFloat
	KwBoolean
	KwBinary
	KwRecordData
	KwVersion
	KwEvrString
	// Operation keywords (used as field-assertion operators)
	KwEquals
	KwNotEqual
	KwGreaterThan
	KwLessThan
	KwGte
	KwLte
	KwContains
	KwNotContains
	KwStartsWith
	KwEndsWith
	KwPatternMatch
	keywordEnd
)

var names = map[Kind]string{
	Illegal: "ILLEGAL", EOF: "EOF", Ident: "IDENT",
	StringLit: "STRING", IntLit: "INT", FloatLit: "FLOAT",
	LBrace: "{", RBrace: "}", LParen: "(", RParen: ")",
	LBracket: "[", RBracket: "]", Colon: ":", Comma: ",",
	Dot: ".", Equals: "=", Star: "*", Plus: "+", Minus: "-", Slash: "/",
}

// keywords is the reserved-keyword table: case-sensitive spelling to Kind.
// Consulted by the lexer to retag an identifier-shaped lexeme (§4.1).
var keywords = map[string]Kind{
	"metadata": KwMetadata, "variable": KwVariable, "set": KwSet,
	"object": KwObject, "state": KwState, "criterion": KwCriterion,
	"module": KwModule, "parameter": KwParameter, "select": KwSelect,
	"behavior": KwBehavior, "filter": KwFilter, "set_ref": KwSetRef,
	"field": KwField, "true": KwTrue, "false": KwFalse,
	"union": KwUnion, "intersection": KwIntersection, "difference": KwDifference,
	"add": KwAdd, "subtract": KwSubtract, "multiply": KwMultiply, "divide": KwDivide,
	"object_ref": KwObjectRef, "state_ref": KwStateRef, "join": KwJoin,
	"exists": KwExists, "not_exists": KwNotExists, "count_op_k": KwCountOp,
	"at_least": KwAtLeast, "all": KwAll, "any": KwAny, "none": KwNone,
	"and": KwAnd, "or": KwOr, "severity": KwSeverity,
	"string": KwString, "int": KwInt, "float": KwFloat, "boolean": KwBoolean,
	"binary": KwBinary, "record_data": KwRecordData, "version": KwVersion,
	"evr_string": KwEvrString,
	"equals": KwEquals, "not_equal": KwNotEqual, "greater_than": KwGreaterThan,
	"less_than": KwLessThan, "gte": KwGte, "lte": KwLte,
	"contains": KwContains, "not_contains": KwNotContains,
	"starts_with": KwStartsWith, "ends_with": KwEndsWith,
	"pattern_match": KwPatternMatch,
}

func init() {
	for lit, k := range keywords {
		names[k] = lit
	}
}

// Lookup retags an identifier-shaped lexeme as a keyword Kind, or Ident if
// lit is not reserved.
func Lookup(lit string) Kind {
	if k, ok := keywords[lit]; ok {
		return k
	}
	return Ident
}

// IsKeyword reports whether k is one of the reserved-keyword kinds.
func IsKeyword(k Kind) bool { return k > keywordStart && k < keywordEnd }

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token is one lexed unit: its kind, literal text, and source span.
type Token struct {
	Kind    Kind
	Literal string
	Span    span.Span
}
