// Package validate implements structural validation (§4.7): the last
// compiler stage before execution. It checks that every criterion's
// object/state references actually resolved, that every contract's
// required object fields were supplied, that every state assertion names
// a field the bound contract actually whitelists, and that no object or
// state declares the same field name twice.
//
// Grounded on the teacher's internal/core/contracts.go structural-check
// shape: a flat list of independent checks run over an already-built tree,
// each producing its own diagnostic rather than aborting the whole pass.
package validate

import (
	"fmt"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/resolve"
)

// Check runs every structural validation over tree and returns the
// diagnostics produced. file is stamped on every diagnostic produced.
func Check(file string, rawFile *ast.EspFile, tree *resolve.Tree, contracts *contract.Registry) []diag.Diagnostic {
	var diags []diag.Diagnostic

	diags = append(diags, checkDuplicateObjectFields(file, rawFile)...)
	diags = append(diags, checkDuplicateStateFields(file, rawFile)...)

	for _, crit := range tree.Criteria {
		diags = append(diags, checkCriterion(file, crit, tree, contracts)...)
	}

	return diags
}

func checkCriterion(file string, crit *ast.CriterionDecl, tree *resolve.Tree, contracts *contract.Registry) []diag.Diagnostic {
	var diags []diag.Diagnostic

	obj, objOK := tree.Objects[crit.ObjectRef]
	if !objOK {
		diags = append(diags, diag.Diagnostic{
			Code: diag.CodeStructuralOrphanRef, Kind: diag.StructuralError, Severity: diag.SeverityError,
			File: file, Span: crit.ObjectSpan,
			Message: fmt.Sprintf("criterion %q references undeclared object %q", crit.Name, crit.ObjectRef),
		})
	}
	state, stateOK := tree.States[crit.StateRef]
	if !stateOK {
		diags = append(diags, diag.Diagnostic{
			Code: diag.CodeStructuralOrphanRef, Kind: diag.StructuralError, Severity: diag.SeverityError,
			File: file, Span: crit.StateSpan,
			Message: fmt.Sprintf("criterion %q references undeclared state %q", crit.Name, crit.StateRef),
		})
	}
	if !objOK || !stateOK {
		return diags
	}

	ctn, ok := contracts.Get(obj.Ctn)
	if !ok {
		diags = append(diags, diag.Diagnostic{
			Code: diag.CodeContractUnknownCtn, Kind: diag.ContractError, Severity: diag.SeverityError,
			File: file, Span: obj.CtnSpan,
			Message: fmt.Sprintf("object %q binds unknown criterion type name %q", obj.Name, obj.Ctn),
		})
		return diags
	}

	for name, dt := range ctn.ObjectFields {
		if _, ok := obj.Parameters[name]; !ok {
			diags = append(diags, diag.Diagnostic{
				Code: diag.CodeContractFieldMissing, Kind: diag.ContractError, Severity: diag.SeverityError,
				File: file, Span: obj.Span,
				Message: fmt.Sprintf("object %q is missing required field %q (type %s) for criterion type %q", obj.Name, name, dt, ctn.Kind),
			})
		}
	}

	for _, a := range state.Assertions {
		if _, ok := ctn.StateFieldByName(a.Field); !ok {
			diags = append(diags, diag.Diagnostic{
				Code: diag.CodeContractFieldMissing, Kind: diag.ContractError, Severity: diag.SeverityError,
				File: file, Span: a.Span,
				Message: fmt.Sprintf("state %q asserts field %q, which criterion type %q does not whitelist", state.Name, a.Field, ctn.Kind),
			})
		}
	}

	for _, f := range obj.Filters {
		if _, ok := ctn.StateFieldByName(f.Field); !ok {
			diags = append(diags, diag.Diagnostic{
				Code: diag.CodeContractFieldMissing, Kind: diag.ContractError, Severity: diag.SeverityError,
				File: file, Span: f.Span,
				Message: fmt.Sprintf("object %q filters on field %q, which criterion type %q does not whitelist", obj.Name, f.Field, ctn.Kind),
			})
		}
	}

	return diags
}

func checkDuplicateObjectFields(file string, rawFile *ast.EspFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, d := range rawFile.Declarations {
		obj, ok := d.(*ast.ObjectDecl)
		if !ok {
			continue
		}
		seen := make(map[string]int)
		for i, el := range obj.Elements {
			name, has := fieldNameOf(el)
			if !has {
				continue
			}
			if firstIdx, dup := seen[name]; dup {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeStructuralDuplicateField, Kind: diag.StructuralError, Severity: diag.SeverityError,
					File: file, Span: el.ElementSpan(),
					Message: fmt.Sprintf("object %q declares field %q more than once (first declared at %s)",
						obj.Name, name, obj.Elements[firstIdx].ElementSpan()),
				})
				continue
			}
			seen[name] = i
		}
	}
	return diags
}

func fieldNameOf(el ast.ObjectElement) (string, bool) {
	switch e := el.(type) {
	case *ast.ParameterElement:
		return "parameter:" + e.Name, true
	case *ast.BehaviorElement:
		return "behavior:" + e.Name, true
	case *ast.FieldElement:
		return "field:" + e.Name, true
	case *ast.SelectElement:
		return "select:" + e.Field, true
	default:
		return "", false
	}
}

func checkDuplicateStateFields(file string, rawFile *ast.EspFile) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, d := range rawFile.Declarations {
		st, ok := d.(*ast.StateDecl)
		if !ok {
			continue
		}
		seen := make(map[string]int)
		for i, a := range st.Assertions {
			if firstIdx, dup := seen[a.Field]; dup {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeStructuralDuplicateField, Kind: diag.StructuralError, Severity: diag.SeverityError,
					File: file, Span: a.Span,
					Message: fmt.Sprintf("state %q asserts field %q more than once (first asserted at %s)",
						st.Name, a.Field, st.Assertions[firstIdx].Span),
				})
				continue
			}
			seen[a.Field] = i
		}
	}
	return diags
}
