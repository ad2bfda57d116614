// Package semantic enforces the immutable DataType × Operation
// compatibility relation over every resolved state assertion and object
// filter once it has been bound to a criterion's object/state pair
// (§4.6). Field-path well-formedness is delegated to internal/fieldpath;
// whether a field belongs to a CTN's contract at all is internal/validate's
// concern (ContractError), not this package's — semantic analysis only
// asks "is this Operation even defined for this DataType".
package semantic

import (
	"fmt"

	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/fieldpath"
	"github.com/espsec/espc/internal/resolve"
	"github.com/espsec/espc/internal/types"
)

// Check walks every criterion's bound object/state pair and reports a
// SemanticError for each assertion or filter whose Operation is not
// defined for its field's declared DataType (the global compatibility
// relation, not the narrower per-contract whitelist). Criteria whose
// object or state reference did not resolve are skipped; that failure
// was already reported upstream (symbol/resolution stage) or will be
// reported by internal/validate as a structural error.
func Check(file string, tree *resolve.Tree, contracts *contract.Registry) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, crit := range tree.Criteria {
		obj, ok := tree.Objects[crit.ObjectRef]
		if !ok {
			continue
		}
		state, ok := tree.States[crit.StateRef]
		if !ok {
			continue
		}
		ctn, ok := contracts.Get(obj.Ctn)
		if !ok {
			continue
		}

		for _, a := range state.Assertions {
			if _, err := fieldpath.Parse(a.Field); err != nil {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeSemanticMalformedFieldPath, Kind: diag.SemanticError, Severity: diag.SeverityError,
					File: file, Span: a.Span, Message: err.Error(),
				})
				continue
			}
			field, ok := ctn.StateFieldByName(a.Field)
			if !ok {
				// Unknown to this contract: internal/validate reports it
				// as a structural/contract error, not a semantic one.
				continue
			}
			if !field.DataType.Valid() {
				continue
			}
			if !types.Compatible(field.DataType, a.Op) {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeSemanticOperationNotSupported, Kind: diag.SemanticError, Severity: diag.SeverityError,
					File: file, Span: a.Span,
					Message: fmt.Sprintf("operation %s is not supported for field %q of type %s", a.Op, a.Field, field.DataType),
				})
			}
		}

		for _, f := range obj.Filters {
			field, ok := ctn.StateFieldByName(f.Field)
			if !ok {
				continue
			}
			if !types.Compatible(field.DataType, f.Op) {
				diags = append(diags, diag.Diagnostic{
					Code: diag.CodeSemanticOperationNotSupported, Kind: diag.SemanticError, Severity: diag.SeverityError,
					File: file, Span: f.Span,
					Message: fmt.Sprintf("operation %s is not supported for filter field %q of type %s", f.Op, f.Field, field.DataType),
				})
			}
		}
	}

	return diags
}
