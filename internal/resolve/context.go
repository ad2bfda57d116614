// Package resolve implements the reference resolver (§4.4): it builds a
// resolution DAG over variables, sets, and runtime operands, detects
// cycles with a three-color depth-first traversal, and substitutes every
// reference in topological order, memoizing each node's ResolvedValue.
//
// The three-color state lives on the recursion stack rather than as an
// explicit arena of integer-indexed nodes (§9 allows either); memoization
// on first completion gives the same "visit once, in reverse topological
// order" guarantee as an explicit toposort would.
package resolve

import (
	"fmt"
	"strings"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/span"
	"github.com/espsec/espc/internal/symbols"
	"github.com/espsec/espc/internal/types"
)

type nodeState int

const (
	unvisited nodeState = iota
	inProgress
	done
)

// Context holds the work-in-progress memo table for one file's
// resolution pass. It never mutates the AST; resolved values are cached
// alongside it and read out into the executable tree by Build (§4.4
// "State").
type Context struct {
	file     string
	symbols  *symbols.Table
	varDecls map[string]*ast.VariableDecl
	setDecls map[string]*ast.SetDecl

	state   map[string]nodeState
	path    []string
	memoVar map[string]types.Value
	memoSet map[string][]string

	diags []diag.Diagnostic
}

// NewContext builds a resolution Context over a symbol-discovered file.
func NewContext(file *ast.EspFile, table *symbols.Table) *Context {
	c := &Context{
		file:     file.Path,
		symbols:  table,
		varDecls: make(map[string]*ast.VariableDecl),
		setDecls: make(map[string]*ast.SetDecl),
		state:    make(map[string]nodeState),
		memoVar:  make(map[string]types.Value),
		memoSet:  make(map[string][]string),
	}
	for _, d := range file.Declarations {
		switch decl := d.(type) {
		case *ast.VariableDecl:
			c.varDecls[decl.Name] = decl
		case *ast.SetDecl:
			c.setDecls[decl.Name] = decl
		}
	}
	return c
}

// Diagnostics returns every diagnostic accumulated so far.
func (c *Context) Diagnostics() []diag.Diagnostic { return c.diags }

func (c *Context) addDiag(d diag.Diagnostic) { c.diags = append(c.diags, d) }

func (c *Context) unknownReference(name string, sp ast.Expr) {
	known := c.symbols.Names()
	c.addDiag(diag.Diagnostic{
		Code: diag.CodeSymbolUnknownRef, Kind: diag.SymbolError, Severity: diag.SeverityError,
		File: c.file, Span: sp.ExprSpan(),
		Message: fmt.Sprintf("reference to undeclared name %q", name),
		Hints:   hintsFor(name, known),
	})
}

func hintsFor(name string, known []string) []string {
	s := diag.Suggest(name, known, 3)
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = "did you mean " + c + "?"
	}
	return out
}

// cyclePath returns the cycle member list in traversal order, e.g.
// `[a, b, a]` when a depends on b which depends back on a (§4.4, scenario
// S1).
func (c *Context) cyclePath(repeat string) []string {
	idx := 0
	for i, n := range c.path {
		if n == repeat {
			idx = i
			break
		}
	}
	cycle := append([]string{}, c.path[idx:]...)
	cycle = append(cycle, repeat)
	return cycle
}

func (c *Context) reportCycle(name string) {
	cycle := c.cyclePath(name)
	c.addDiag(diag.Diagnostic{
		Code: diag.CodeResolutionCycle, Kind: diag.ResolutionError, Severity: diag.SeverityError,
		File: c.file, Span: c.declSpan(name),
		Message: fmt.Sprintf("cycle detected: [%s]", strings.Join(cycle, ", ")),
	})
}

func (c *Context) declSpan(name string) span.Span {
	if v, ok := c.varDecls[name]; ok {
		return v.DeclSpan()
	}
	if s, ok := c.setDecls[name]; ok {
		return s.DeclSpan()
	}
	return span.Span{}
}

// ResolveVariable resolves a single variable to its memoized value,
// running its dependency chain on demand. Returns false if resolution
// failed (a diagnostic has already been recorded).
func (c *Context) ResolveVariable(name string) (types.Value, bool) {
	switch c.state[name] {
	case done:
		return c.memoVar[name], true
	case inProgress:
		c.reportCycle(name)
		return types.Value{}, false
	}

	decl, ok := c.varDecls[name]
	if !ok {
		return types.Value{}, false
	}

	c.state[name] = inProgress
	c.path = append(c.path, name)
	defer func() {
		c.path = c.path[:len(c.path)-1]
	}()

	val, err := c.resolveExpr(decl.Init, decl.DataType)
	if err != nil {
		c.addDiag(diag.Diagnostic{
			Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
			File: c.file, Span: decl.Span, Message: err.Error(),
		})
		c.state[name] = done
		c.memoVar[name] = types.Value{}
		return types.Value{}, false
	}
	coerced, err := coerce(val, decl.DataType)
	if err != nil {
		c.addDiag(diag.Diagnostic{
			Code: diag.CodeResolutionCoercionFailed, Kind: diag.ResolutionError, Severity: diag.SeverityError,
			File: c.file, Span: decl.Span, Message: err.Error(),
		})
		c.state[name] = done
		return types.Value{}, false
	}
	c.state[name] = done
	c.memoVar[name] = coerced
	return coerced, true
}

// ResolveSet resolves a set declaration to its ordered element list.
func (c *Context) ResolveSet(name string) ([]string, bool) {
	switch c.state[name] {
	case done:
		return c.memoSet[name], true
	case inProgress:
		c.reportCycle(name)
		return nil, false
	}

	decl, ok := c.setDecls[name]
	if !ok {
		return nil, false
	}

	c.state[name] = inProgress
	c.path = append(c.path, name)
	defer func() {
		c.path = c.path[:len(c.path)-1]
	}()

	elements, ok := c.resolveSetExpr(decl.Expr)
	c.state[name] = done
	if !ok {
		c.memoSet[name] = nil
		return nil, false
	}
	c.memoSet[name] = elements
	return elements, true
}

func (c *Context) resolveSetExpr(e ast.SetExpr) ([]string, bool) {
	switch expr := e.(type) {
	case *ast.SetLiteral:
		return append([]string{}, expr.Elements...), true
	case *ast.SetRef:
		if _, isSet := c.setDecls[expr.Name]; !isSet {
			c.addDiag(diag.Diagnostic{
				Code: diag.CodeSymbolUnknownRef, Kind: diag.SymbolError, Severity: diag.SeverityError,
				File: c.file, Span: expr.Sp,
				Message: fmt.Sprintf("reference to undeclared set %q", expr.Name),
				Hints:   hintsFor(expr.Name, c.symbols.Names()),
			})
			return nil, false
		}
		return c.ResolveSet(expr.Name)
	case *ast.SetOp:
		left, ok1 := c.resolveSetExpr(expr.Left)
		right, ok2 := c.resolveSetExpr(expr.Right)
		if !ok1 || !ok2 {
			return nil, false
		}
		return applySetOp(expr.Op, left, right), true
	default:
		return nil, false
	}
}

// applySetOp implements the ordering contract of §4.4: union appends
// operands in declaration order and de-duplicates by stable first-seen;
// intersection and difference both preserve left-operand order. Empty
// operands: intersection with an empty operand is empty; union/difference
// of nothing are handled naturally by the usual slice semantics.
func applySetOp(op types.RuntimeOperationType, left, right []string) []string {
	switch op {
	case types.RuntimeUnion:
		return dedupeStable(append(append([]string{}, left...), right...))
	case types.RuntimeIntersection:
		if len(left) == 0 || len(right) == 0 {
			return []string{}
		}
		rightSet := toSet(right)
		out := make([]string, 0, len(left))
		for _, v := range left {
			if rightSet[v] {
				out = append(out, v)
			}
		}
		return out
	case types.RuntimeDifference:
		rightSet := toSet(right)
		out := make([]string, 0, len(left))
		for _, v := range left {
			if !rightSet[v] {
				out = append(out, v)
			}
		}
		return out
	default:
		return nil
	}
}

func toSet(elems []string) map[string]bool {
	m := make(map[string]bool, len(elems))
	for _, e := range elems {
		m[e] = true
	}
	return m
}

func dedupeStable(elems []string) []string {
	seen := make(map[string]bool, len(elems))
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// resolveExpr resolves a scalar expression to a concrete Value. hint is
// the declared type context (a variable's own DataType, or the contract
// field type when resolving an object/state operand); it only affects
// literal coercion, never a referenced variable's own type.
func (c *Context) resolveExpr(e ast.Expr, hint types.DataType) (types.Value, error) {
	switch expr := e.(type) {
	case *ast.Literal:
		return coerce(expr.Value, hint)
	case *ast.Ident:
		if _, isVar := c.varDecls[expr.Name]; !isVar {
			c.unknownReference(expr.Name, expr)
			return types.Value{}, fmt.Errorf("unresolved reference %q", expr.Name)
		}
		val, ok := c.ResolveVariable(expr.Name)
		if !ok {
			return types.Value{}, fmt.Errorf("failed to resolve %q", expr.Name)
		}
		return val, nil
	case *ast.RuntimeOp:
		left, err := c.resolveExpr(expr.Left, hint)
		if err != nil {
			return types.Value{}, err
		}
		right, err := c.resolveExpr(expr.Right, hint)
		if err != nil {
			return types.Value{}, err
		}
		return applyArithmetic(expr.Op, left, right)
	default:
		return types.Value{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

// applyArithmetic implements the add/subtract/multiply/divide runtime
// operations. Mixed int/float operands promote to float; division by
// zero is an error, never a silent zero (§4.4).
func applyArithmetic(op types.RuntimeOperationType, a, b types.Value) (types.Value, error) {
	if a.Type == types.TypeInt && b.Type == types.TypeInt {
		switch op {
		case types.RuntimeAdd:
			return types.Int64(a.Int + b.Int), nil
		case types.RuntimeSubtract:
			return types.Int64(a.Int - b.Int), nil
		case types.RuntimeMultiply:
			return types.Int64(a.Int * b.Int), nil
		case types.RuntimeDivide:
			if b.Int == 0 {
				return types.Value{}, fmt.Errorf("division by zero")
			}
			return types.Int64(a.Int / b.Int), nil
		}
	}

	af, err := coerce(a, types.TypeFloat)
	if err != nil {
		return types.Value{}, fmt.Errorf("runtime operation %s: %w", op, err)
	}
	bf, err := coerce(b, types.TypeFloat)
	if err != nil {
		return types.Value{}, fmt.Errorf("runtime operation %s: %w", op, err)
	}
	switch op {
	case types.RuntimeAdd:
		return types.Float64(af.Float + bf.Float), nil
	case types.RuntimeSubtract:
		return types.Float64(af.Float - bf.Float), nil
	case types.RuntimeMultiply:
		return types.Float64(af.Float * bf.Float), nil
	case types.RuntimeDivide:
		if bf.Float == 0 {
			return types.Value{}, fmt.Errorf("division by zero")
		}
		return types.Float64(af.Float / bf.Float), nil
	default:
		return types.Value{}, fmt.Errorf("unsupported runtime operation %s", op)
	}
}
