// Package ast defines the syntax tree the parser builds from ESP source:
// an EspFile is an ordered sequence of declarations plus a metadata block,
// per §3 of the data model. Every node carries a span back into the
// originating source file.
package ast

import (
	"github.com/espsec/espc/internal/span"
	"github.com/espsec/espc/internal/types"
)

// EspFile is the root of one compilation unit. Declaration order is
// preserved; it drives symbol-table population order (§4.3) and is
// significant for deterministic IR serialization (§8 property 1).
type EspFile struct {
	Path         string
	Span         span.Span
	Metadata     []MetadataEntry
	Declarations []Decl
}

// MetadataEntry is one free-form key/value pair in the file's metadata
// block.
type MetadataEntry struct {
	Key, Value string
	Span       span.Span
}

// DeclKind discriminates the closed set of top-level declarations (§6).
type DeclKind string

const (
	DeclVariable  DeclKind = "variable"
	DeclSet       DeclKind = "set"
	DeclObject    DeclKind = "object"
	DeclState     DeclKind = "state"
	DeclCriterion DeclKind = "criterion"
)

// Decl is implemented by every top-level declaration node.
type Decl interface {
	Kind() DeclKind
	DeclName() string
	DeclSpan() span.Span
}

// VariableDecl declares a named, typed value: either an immediate literal
// or a runtime operation over other variables (§3, §4.4).
type VariableDecl struct {
	Name     string
	DataType types.DataType
	Init     Expr
	Span     span.Span
}

func (d *VariableDecl) Kind() DeclKind      { return DeclVariable }
func (d *VariableDecl) DeclName() string    { return d.Name }
func (d *VariableDecl) DeclSpan() span.Span { return d.Span }

// SetDecl declares a named set: either a literal element list or a
// set-theoretic runtime operation over other sets (§4.4, §4.5).
type SetDecl struct {
	Name string
	Expr SetExpr
	Span span.Span
}

func (d *SetDecl) Kind() DeclKind      { return DeclSet }
func (d *SetDecl) DeclName() string    { return d.Name }
func (d *SetDecl) DeclSpan() span.Span { return d.Span }

// SetExpr is implemented by every set-valued expression.
type SetExpr interface {
	setExprNode()
	Span() span.Span
}

// SetLiteral is an explicit, ordered element list.
type SetLiteral struct {
	Elements []string
	Sp       span.Span
}

func (s *SetLiteral) setExprNode()    {}
func (s *SetLiteral) Span() span.Span { return s.Sp }

// SetRef references another declared set by name.
type SetRef struct {
	Name string
	Sp   span.Span
}

func (s *SetRef) setExprNode()    {}
func (s *SetRef) Span() span.Span { return s.Sp }

// SetOp applies a set-theoretic runtime operation (union/intersection/
// difference) to two set expressions, left-associative (§4.4).
type SetOp struct {
	Op          types.RuntimeOperationType
	Left, Right SetExpr
	Sp          span.Span
}

func (s *SetOp) setExprNode()    {}
func (s *SetOp) Span() span.Span { return s.Sp }

// ObjectDecl declares a named object: an ordered list of ObjectElements
// describing the CTN module and its probed fields (§3, §4.8).
type ObjectDecl struct {
	Name     string
	Elements []ObjectElement
	Span     span.Span
}

func (d *ObjectDecl) Kind() DeclKind      { return DeclObject }
func (d *ObjectDecl) DeclName() string    { return d.Name }
func (d *ObjectDecl) DeclSpan() span.Span { return d.Span }

// ObjectElementKind discriminates the closed set of object element variants.
type ObjectElementKind string

const (
	ElementModule    ObjectElementKind = "module"
	ElementParameter ObjectElementKind = "parameter"
	ElementSelect    ObjectElementKind = "select"
	ElementBehavior  ObjectElementKind = "behavior"
	ElementFilter    ObjectElementKind = "filter"
	ElementSetRef    ObjectElementKind = "set_ref"
	ElementField     ObjectElementKind = "field"
)

// ObjectElement is implemented by every object-element variant.
type ObjectElement interface {
	ElementKind() ObjectElementKind
	ElementSpan() span.Span
}

// ModuleElement names the CTN kind that binds collector/executor/contract
// to this object (§4.8).
type ModuleElement struct {
	Ctn  string
	Span span.Span
}

func (e *ModuleElement) ElementKind() ObjectElementKind { return ElementModule }
func (e *ModuleElement) ElementSpan() span.Span         { return e.Span }

// ParameterElement supplies an input field the collector needs to locate
// the object (e.g. a filesystem path).
type ParameterElement struct {
	Name  string
	Value Expr
	Span  span.Span
}

func (e *ParameterElement) ElementKind() ObjectElementKind { return ElementParameter }
func (e *ParameterElement) ElementSpan() span.Span         { return e.Span }

// SelectElement names one contract field the collector should populate.
type SelectElement struct {
	Field string
	Span  span.Span
}

func (e *SelectElement) ElementKind() ObjectElementKind { return ElementSelect }
func (e *SelectElement) ElementSpan() span.Span         { return e.Span }

// BehaviorElement tunes collection behavior (e.g. recursive=true).
type BehaviorElement struct {
	Name  string
	Value Expr
	Span  span.Span
}

func (e *BehaviorElement) ElementKind() ObjectElementKind { return ElementBehavior }
func (e *BehaviorElement) ElementSpan() span.Span         { return e.Span }

// FilterElement narrows which collected items are kept (§4.7 requires the
// referenced field to resolve against a declared state).
type FilterElement struct {
	Field string
	Op    types.Operation
	Value Expr
	Span  span.Span
}

func (e *FilterElement) ElementKind() ObjectElementKind { return ElementFilter }
func (e *FilterElement) ElementSpan() span.Span         { return e.Span }

// SetRefElement expands a declared set's elements into the object (§4.5).
type SetRefElement struct {
	SetName string
	Span    span.Span
}

func (e *SetRefElement) ElementKind() ObjectElementKind { return ElementSetRef }
func (e *SetRefElement) ElementSpan() span.Span         { return e.Span }

// FieldElement is a free-form computed/static field on the object.
type FieldElement struct {
	Name  string
	Value Expr
	Span  span.Span
}

func (e *FieldElement) ElementKind() ObjectElementKind { return ElementField }
func (e *FieldElement) ElementSpan() span.Span         { return e.Span }

// StateDecl declares a named set of field assertions (§3).
type StateDecl struct {
	Name       string
	Assertions []FieldAssertion
	Span       span.Span
}

func (d *StateDecl) Kind() DeclKind      { return DeclState }
func (d *StateDecl) DeclName() string    { return d.Name }
func (d *StateDecl) DeclSpan() span.Span { return d.Span }

// FieldAssertion is one `field op operand` triple inside a state.
type FieldAssertion struct {
	Field   string
	Op      types.Operation
	Operand Expr
	Span    span.Span
}

// CriterionDecl binds an object and a state together with a join operator
// and existence test, yielding one compliance Finding (§3, §4.10).
type CriterionDecl struct {
	Name        string
	ObjectRef   string
	ObjectSpan  span.Span
	StateRef    string
	StateSpan   span.Span
	Join        JoinSpec
	Existence   *ExistenceSpec // nil when the criterion has no existence test
	StateJoin   types.StateJoinOp
	Severity    string // supplemented: see SPEC_FULL.md severity-on-findings
	Span        span.Span
}

func (d *CriterionDecl) Kind() DeclKind      { return DeclCriterion }
func (d *CriterionDecl) DeclName() string    { return d.Name }
func (d *CriterionDecl) DeclSpan() span.Span { return d.Span }

// JoinSpec aggregates per-item verdicts (§4.10 step 3).
type JoinSpec struct {
	Op   types.JoinOp
	K    int // meaningful only when Op == JoinAtLeast
	Span span.Span
}

// ExistenceSpec is a predicate over collected item count (§4.10 step 4).
type ExistenceSpec struct {
	Op   types.ExistenceOp
	Cmp  types.Operation // meaningful only when Op == CountOpK
	K    int             // meaningful only when Op == CountOpK
	Span span.Span
}

// Expr is implemented by every scalar-valued expression node: literals,
// identifiers referencing a variable, and runtime operations over them.
type Expr interface {
	exprNode()
	ExprSpan() span.Span
}

// Literal is an immediate value of one of the primitive DataTypes.
type Literal struct {
	Value types.Value
	Span  span.Span
}

func (e *Literal) exprNode()           {}
func (e *Literal) ExprSpan() span.Span { return e.Span }

// Ident references a declared variable by name; resolution replaces it
// with the variable's memoized ResolvedValue.
type Ident struct {
	Name string
	Span span.Span
}

func (e *Ident) exprNode()           {}
func (e *Ident) ExprSpan() span.Span { return e.Span }

// RuntimeOp applies an arithmetic runtime operation to two operand
// expressions (§4.4, §9 "Runtime operation dispatch").
type RuntimeOp struct {
	Op          types.RuntimeOperationType
	Left, Right Expr
	Span        span.Span
}

func (e *RuntimeOp) exprNode()           {}
func (e *RuntimeOp) ExprSpan() span.Span { return e.Span }
