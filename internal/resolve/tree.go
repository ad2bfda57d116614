package resolve

import (
	"fmt"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/span"
	"github.com/espsec/espc/internal/types"
)

// ResolvedObject is an object declaration with every element's value
// substituted: literals coerced to the binding contract field's declared
// type where one exists, variable references replaced by their memoized
// value, and SetRef elements expanded into the object's select list
// (§4.5).
type ResolvedObject struct {
	Name       string
	Ctn        string
	CtnSpan    span.Span
	Parameters map[string]types.Value
	Selects    []string
	Behaviors  map[string]types.Value
	Filters    []ResolvedFilter
	Fields     map[string]types.Value
	Span       span.Span
}

// ResolvedFilter is one FilterElement with its operand resolved.
type ResolvedFilter struct {
	Field string
	Op    types.Operation
	Value types.Value
	Span  span.Span
}

// ResolvedAssertion is one FieldAssertion with its operand resolved.
type ResolvedAssertion struct {
	Field   string
	Op      types.Operation
	Operand types.Value
	Span    span.Span
}

// ResolvedState is a state declaration with every assertion operand
// resolved.
type ResolvedState struct {
	Name       string
	Assertions []ResolvedAssertion
	Span       span.Span
}

// Tree is the executable tree for one file (§3): every declaration with
// its references substituted, ready for semantic/structural validation
// and, ultimately, execution.
type Tree struct {
	Objects  map[string]*ResolvedObject
	States   map[string]*ResolvedState
	Criteria []*ast.CriterionDecl
}

// Build walks file's object and state declarations, resolving every
// contained expression through ctx, and returns the executable tree
// alongside any diagnostics accumulated during the walk (on top of
// whatever ctx.Diagnostics() already holds from variable/set resolution).
// contracts is consulted to type ObjectElement values against their
// binding CTN's declared field types; an object naming an unregistered
// CTN gets a ContractError diagnostic here and its values are resolved
// with best-effort natural typing.
func Build(file *ast.EspFile, ctx *Context, contracts *contract.Registry) (*Tree, []diag.Diagnostic) {
	tree := &Tree{
		Objects: make(map[string]*ResolvedObject),
		States:  make(map[string]*ResolvedState),
	}
	var diags []diag.Diagnostic

	for _, d := range file.Declarations {
		switch decl := d.(type) {
		case *ast.ObjectDecl:
			obj, ds := ctx.resolveObject(decl, contracts)
			tree.Objects[decl.Name] = obj
			diags = append(diags, ds...)
		case *ast.StateDecl:
			st, ds := ctx.resolveState(decl)
			tree.States[decl.Name] = st
			diags = append(diags, ds...)
		case *ast.CriterionDecl:
			tree.Criteria = append(tree.Criteria, decl)
		}
	}

	diags = append(diags, ctx.Diagnostics()...)
	return tree, diags
}

// naturalHint returns the type a literal operand already carries, or a
// string fallback for anything else — used when no contract field type
// is available to drive coercion (module/behavior values have no fixed
// declared type in the contract).
func naturalHint(e ast.Expr) types.DataType {
	if lit, ok := e.(*ast.Literal); ok {
		return lit.Value.Type
	}
	return types.TypeString
}

func (c *Context) resolveValue(e ast.Expr, hint types.DataType) (types.Value, error) {
	return c.resolveExpr(e, hint)
}

func (c *Context) resolveObject(decl *ast.ObjectDecl, contracts *contract.Registry) (*ResolvedObject, []diag.Diagnostic) {
	obj := &ResolvedObject{
		Name:       decl.Name,
		Parameters: make(map[string]types.Value),
		Behaviors:  make(map[string]types.Value),
		Fields:     make(map[string]types.Value),
		Span:       decl.Span,
	}
	var diags []diag.Diagnostic

	var ctn contract.Contract
	var ctnOK bool
	for _, el := range decl.Elements {
		if m, ok := el.(*ast.ModuleElement); ok {
			obj.Ctn = m.Ctn
			obj.CtnSpan = m.Span
			ctn, ctnOK = contracts.Get(m.Ctn)
			if !ctnOK {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeContractUnknownCtn, Kind: diag.ContractError, Severity: diag.SeverityError,
					File: c.file, Span: m.Span,
					Message: fmt.Sprintf("unknown criterion type name %q", m.Ctn),
				})
			}
			break
		}
	}

	for _, el := range decl.Elements {
		switch e := el.(type) {
		case *ast.ModuleElement:
			// handled above
		case *ast.ParameterElement:
			hint := naturalHint(e.Value)
			if ctnOK {
				if dt, ok := ctn.RequiredObjectField(e.Name); ok {
					hint = dt
				}
			}
			val, err := c.resolveValue(e.Value, hint)
			if err != nil {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
					File: c.file, Span: e.Span, Message: err.Error(),
				})
				continue
			}
			obj.Parameters[e.Name] = val
		case *ast.SelectElement:
			obj.Selects = append(obj.Selects, e.Field)
		case *ast.BehaviorElement:
			val, err := c.resolveValue(e.Value, naturalHint(e.Value))
			if err != nil {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
					File: c.file, Span: e.Span, Message: err.Error(),
				})
				continue
			}
			obj.Behaviors[e.Name] = val
		case *ast.FilterElement:
			hint := naturalHint(e.Value)
			if ctnOK {
				if f, ok := ctn.StateFieldByName(e.Field); ok {
					hint = f.DataType
				}
			}
			val, err := c.resolveValue(e.Value, hint)
			if err != nil {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
					File: c.file, Span: e.Span, Message: err.Error(),
				})
				continue
			}
			obj.Filters = append(obj.Filters, ResolvedFilter{Field: e.Field, Op: e.Op, Value: val, Span: e.Span})
		case *ast.SetRefElement:
			elements, ok := c.ResolveSet(e.SetName)
			if !ok {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
					File: c.file, Span: e.Span,
					Message: fmt.Sprintf("could not expand set %q into object %q", e.SetName, decl.Name),
				})
				continue
			}
			obj.Selects = append(obj.Selects, elements...)
		case *ast.FieldElement:
			val, err := c.resolveValue(e.Value, naturalHint(e.Value))
			if err != nil {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
					File: c.file, Span: e.Span, Message: err.Error(),
				})
				continue
			}
			obj.Fields[e.Name] = val
		}
	}

	return obj, diags
}

func (c *Context) resolveState(decl *ast.StateDecl) (*ResolvedState, []diag.Diagnostic) {
	state := &ResolvedState{Name: decl.Name, Span: decl.Span}
	var diags []diag.Diagnostic

	for _, a := range decl.Assertions {
		hint := naturalHint(a.Operand)
		val, err := c.resolveValue(a.Operand, hint)
		if err != nil {
			diags = append(diags, diag.Diagnostic{
				Code: diag.CodeResolutionUnresolvable, Kind: diag.ResolutionError, Severity: diag.SeverityError,
				File: c.file, Span: a.Span, Message: err.Error(),
			})
			continue
		}
		state.Assertions = append(state.Assertions, ResolvedAssertion{
			Field: a.Field, Op: a.Op, Operand: val, Span: a.Span,
		})
	}

	return state, diags
}
