// Package parser implements the recursive-descent ESP grammar (§4.2). One
// token of lookahead suffices for every production. Each production
// records the starting and ending span on the node it builds.
//
// Grammar (textual rendering, fixed per §6):
//
//	File          := MetadataBlock? Decl*
//	MetadataBlock := "metadata" "{" (ident ":" string ","?)* "}"
//	Decl          := VariableDecl | SetDecl | ObjectDecl | StateDecl | CriterionDecl
//	VariableDecl  := "variable" ident ":" DataType "=" Expr
//	SetDecl       := "set" ident "=" SetExpr
//	SetExpr       := SetPrimary (SetOp SetPrimary)*
//	SetPrimary    := "[" (string ","?)* "]" | ident
//	SetOp         := "union" | "intersection" | "difference"
//	ObjectDecl    := "object" ident "{" ObjectElement* "}"
//	ObjectElement := "module" ":" string
//	               | "parameter" ident "=" Expr
//	               | "select" ident
//	               | "behavior" ident "=" Expr
//	               | "filter" ident Operation Expr
//	               | "set_ref" ident
//	               | "field" ident "=" Expr
//	StateDecl     := "state" ident "{" FieldAssertion* "}"
//	FieldAssertion:= "field" ident Operation Expr
//	CriterionDecl := "criterion" ident "{"
//	                   "object_ref" ":" ident
//	                   "state_ref" ":" ident
//	                   "join" ":" JoinSpec
//	                   ExistenceSpec?
//	                   ("severity" ":" string)?
//	                 "}"
//	JoinSpec      := "all" | "any" | "none" | "at_least" "(" int ")"
//	ExistenceSpec := "exists" | "not_exists" | "count_op_k" "(" Operation "," int ")"
//	Expr          := Term (("+" | "-") Term)*
//	Term          := Factor (("*" | "/") Factor)*
//	Factor        := ident | int | float | string | "true" | "false" | "(" Expr ")"
//	DataType      := "string" | "int" | "float" | "boolean" | "binary"
//	               | "record_data" | "version" | "evr_string"
//	Operation     := "equals" | "not_equal" | "greater_than" | "less_than"
//	               | "gte" | "lte" | "contains" | "not_contains"
//	               | "starts_with" | "ends_with" | "pattern_match"
package parser

import (
	"fmt"

	"github.com/espsec/espc/internal/ast"
	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/span"
	"github.com/espsec/espc/internal/token"
	"github.com/espsec/espc/internal/types"
)

// Parser holds the token stream for one file and the diagnostics
// accumulated while parsing it.
type Parser struct {
	file   string
	toks   []token.Token
	pos    int
	sm     *span.Map
	diags  []diag.Diagnostic
}

// New constructs a Parser over a complete token stream (EOF included),
// produced by internal/lexer for the same file.
func New(file string, toks []token.Token, sm *span.Map) *Parser {
	return &Parser{file: file, toks: toks, sm: sm}
}

// syntaxError is the internal panic payload used to unwind to the nearest
// declaration-boundary recovery point (§4.2: "it does not attempt to
// continue inside a malformed declaration").
type syntaxError struct {
	diagnostic diag.Diagnostic
}

func (p *Parser) fail(code diag.Code, sp span.Span, format string, args ...any) {
	panic(syntaxError{diag.Diagnostic{
		Code:     code,
		Kind:     diag.SyntaxError,
		Severity: diag.SeverityError,
		File:     p.file,
		Span:     sp,
		Message:  fmt.Sprintf(format, args...),
	}})
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool       { return p.cur().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur().Kind != k {
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected %s, found %s %q", k, p.cur().Kind, p.cur().Literal)
	}
	return p.advance()
}

// ParseFile parses the whole token stream into an EspFile. Diagnostics
// accumulated during recovery are returned alongside any partial tree;
// per §4.2, the caller must treat a non-empty diagnostic list as fatal
// and not hand the tree to later stages.
func (p *Parser) ParseFile() (*ast.EspFile, []diag.Diagnostic) {
	file := &ast.EspFile{Path: p.file}
	start := p.cur().Span

	for !p.atEOF() {
		if p.cur().Kind == token.KwMetadata && file.Metadata == nil && len(file.Declarations) == 0 {
			p.parseMetadataBlock(file)
			continue
		}
		p.parseDeclRecovering(file)
	}
	end := p.toks[len(p.toks)-1].Span
	file.Span = span.Join(start, end)
	return file, p.diags
}

// parseDeclRecovering parses one top-level declaration, recovering to the
// next top-level boundary on a syntax error instead of propagating it
// (§4.2).
func (p *Parser) parseDeclRecovering(file *ast.EspFile) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(syntaxError)
			if !ok {
				panic(r)
			}
			p.diags = append(p.diags, se.diagnostic)
			p.recoverToBoundary()
		}
	}()

	switch p.cur().Kind {
	case token.KwVariable:
		file.Declarations = append(file.Declarations, p.parseVariableDecl())
	case token.KwSet:
		file.Declarations = append(file.Declarations, p.parseSetDecl())
	case token.KwObject:
		file.Declarations = append(file.Declarations, p.parseObjectDecl())
	case token.KwState:
		file.Declarations = append(file.Declarations, p.parseStateDecl())
	case token.KwCriterion:
		file.Declarations = append(file.Declarations, p.parseCriterionDecl())
	case token.KwMetadata:
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"metadata block must be the first declaration in the file")
	default:
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected a declaration (variable, set, object, state, criterion), found %s %q",
			p.cur().Kind, p.cur().Literal)
	}
}

// recoverToBoundary advances the token cursor to the next top-level
// declaration keyword or EOF, discarding everything in between.
func (p *Parser) recoverToBoundary() {
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.KwVariable, token.KwSet, token.KwObject, token.KwState, token.KwCriterion:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseMetadataBlock(file *ast.EspFile) {
	start := p.expect(token.KwMetadata).Span
	p.expect(token.LBrace)
	for p.cur().Kind != token.RBrace {
		keyTok := p.expect(token.Ident)
		p.expect(token.Colon)
		valTok := p.expect(token.StringLit)
		file.Metadata = append(file.Metadata, ast.MetadataEntry{
			Key: keyTok.Literal, Value: valTok.Literal,
			Span: span.Join(keyTok.Span, valTok.Span),
		})
		if p.cur().Kind == token.Comma {
			p.advance()
		}
	}
	end := p.expect(token.RBrace).Span
	_ = span.Join(start, end)
}

func dataTypeFromKeyword(k token.Kind) (types.DataType, bool) {
	switch k {
	case token.KwString:
		return types.TypeString, true
	case token.KwInt:
		return types.TypeInt, true
	case token.KwFloat:
		return types.TypeFloat, true
	case token.KwBoolean:
		return types.TypeBoolean, true
	case token.KwBinary:
		return types.TypeBinary, true
	case token.KwRecordData:
		return types.TypeRecordData, true
	case token.KwVersion:
		return types.TypeVersion, true
	case token.KwEvrString:
		return types.TypeEvrString, true
	default:
		return "", false
	}
}

func operationFromKeyword(k token.Kind) (types.Operation, bool) {
	switch k {
	case token.KwEquals:
		return types.OpEquals, true
	case token.KwNotEqual:
		return types.OpNotEqual, true
	case token.KwGreaterThan:
		return types.OpGreaterThan, true
	case token.KwLessThan:
		return types.OpLessThan, true
	case token.KwGte:
		return types.OpGte, true
	case token.KwLte:
		return types.OpLte, true
	case token.KwContains:
		return types.OpContains, true
	case token.KwNotContains:
		return types.OpNotContains, true
	case token.KwStartsWith:
		return types.OpStartsWith, true
	case token.KwEndsWith:
		return types.OpEndsWith, true
	case token.KwPatternMatch:
		return types.OpPatternMatch, true
	default:
		return "", false
	}
}

func (p *Parser) parseDataType() types.DataType {
	dt, ok := dataTypeFromKeyword(p.cur().Kind)
	if !ok {
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected a data type, found %s %q", p.cur().Kind, p.cur().Literal)
	}
	p.advance()
	return dt
}

func (p *Parser) parseOperation() types.Operation {
	op, ok := operationFromKeyword(p.cur().Kind)
	if !ok {
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected an operation, found %s %q", p.cur().Kind, p.cur().Literal)
	}
	p.advance()
	return op
}

func (p *Parser) parseVariableDecl() *ast.VariableDecl {
	start := p.expect(token.KwVariable).Span
	name := p.expect(token.Ident)
	p.expect(token.Colon)
	dt := p.parseDataType()
	p.expect(token.Equals)
	init := p.parseExpr()
	return &ast.VariableDecl{
		Name: name.Literal, DataType: dt, Init: init,
		Span: span.Join(start, init.ExprSpan()),
	}
}

func (p *Parser) parseSetDecl() *ast.SetDecl {
	start := p.expect(token.KwSet).Span
	name := p.expect(token.Ident)
	p.expect(token.Equals)
	expr := p.parseSetExpr()
	return &ast.SetDecl{Name: name.Literal, Expr: expr, Span: span.Join(start, expr.Span())}
}

func setOpFromKeyword(k token.Kind) (types.RuntimeOperationType, bool) {
	switch k {
	case token.KwUnion:
		return types.RuntimeUnion, true
	case token.KwIntersection:
		return types.RuntimeIntersection, true
	case token.KwDifference:
		return types.RuntimeDifference, true
	default:
		return "", false
	}
}

func (p *Parser) parseSetExpr() ast.SetExpr {
	left := p.parseSetPrimary()
	for {
		op, ok := setOpFromKeyword(p.cur().Kind)
		if !ok {
			return left
		}
		p.advance()
		right := p.parseSetPrimary()
		left = &ast.SetOp{Op: op, Left: left, Right: right, Sp: span.Join(left.Span(), right.Span())}
	}
}

func (p *Parser) parseSetPrimary() ast.SetExpr {
	if p.cur().Kind == token.Ident {
		t := p.advance()
		return &ast.SetRef{Name: t.Literal, Sp: t.Span}
	}
	start := p.expect(token.LBracket).Span
	var elements []string
	for p.cur().Kind != token.RBracket {
		s := p.expect(token.StringLit)
		elements = append(elements, s.Literal)
		if p.cur().Kind == token.Comma {
			p.advance()
		}
	}
	end := p.expect(token.RBracket).Span
	return &ast.SetLiteral{Elements: elements, Sp: span.Join(start, end)}
}

func (p *Parser) parseObjectDecl() *ast.ObjectDecl {
	start := p.expect(token.KwObject).Span
	name := p.expect(token.Ident)
	p.expect(token.LBrace)
	var elements []ast.ObjectElement
	for p.cur().Kind != token.RBrace {
		elements = append(elements, p.parseObjectElement())
	}
	end := p.expect(token.RBrace).Span
	return &ast.ObjectDecl{Name: name.Literal, Elements: elements, Span: span.Join(start, end)}
}

func (p *Parser) parseObjectElement() ast.ObjectElement {
	switch p.cur().Kind {
	case token.KwModule:
		start := p.advance().Span
		p.expect(token.Colon)
		ctn := p.expect(token.StringLit)
		return &ast.ModuleElement{Ctn: ctn.Literal, Span: span.Join(start, ctn.Span)}
	case token.KwParameter:
		start := p.advance().Span
		name := p.expect(token.Ident)
		p.expect(token.Equals)
		val := p.parseExpr()
		return &ast.ParameterElement{Name: name.Literal, Value: val, Span: span.Join(start, val.ExprSpan())}
	case token.KwSelect:
		start := p.advance().Span
		field := p.expect(token.Ident)
		return &ast.SelectElement{Field: field.Literal, Span: span.Join(start, field.Span)}
	case token.KwBehavior:
		start := p.advance().Span
		name := p.expect(token.Ident)
		p.expect(token.Equals)
		val := p.parseExpr()
		return &ast.BehaviorElement{Name: name.Literal, Value: val, Span: span.Join(start, val.ExprSpan())}
	case token.KwFilter:
		start := p.advance().Span
		field := p.expect(token.Ident)
		op := p.parseOperation()
		val := p.parseExpr()
		return &ast.FilterElement{Field: field.Literal, Op: op, Value: val, Span: span.Join(start, val.ExprSpan())}
	case token.KwSetRef:
		start := p.advance().Span
		setName := p.expect(token.Ident)
		return &ast.SetRefElement{SetName: setName.Literal, Span: span.Join(start, setName.Span)}
	case token.KwField:
		start := p.advance().Span
		name := p.expect(token.Ident)
		p.expect(token.Equals)
		val := p.parseExpr()
		return &ast.FieldElement{Name: name.Literal, Value: val, Span: span.Join(start, val.ExprSpan())}
	default:
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected an object element (module, parameter, select, behavior, filter, set_ref, field), found %s %q",
			p.cur().Kind, p.cur().Literal)
		panic("unreachable")
	}
}

func (p *Parser) parseStateDecl() *ast.StateDecl {
	start := p.expect(token.KwState).Span
	name := p.expect(token.Ident)
	p.expect(token.LBrace)
	var assertions []ast.FieldAssertion
	for p.cur().Kind != token.RBrace {
		assertions = append(assertions, p.parseFieldAssertion())
	}
	end := p.expect(token.RBrace).Span
	return &ast.StateDecl{Name: name.Literal, Assertions: assertions, Span: span.Join(start, end)}
}

func (p *Parser) parseFieldAssertion() ast.FieldAssertion {
	start := p.expect(token.KwField).Span
	field := p.expect(token.Ident)
	op := p.parseOperation()
	val := p.parseExpr()
	return ast.FieldAssertion{Field: field.Literal, Op: op, Operand: val, Span: span.Join(start, val.ExprSpan())}
}

func (p *Parser) parseCriterionDecl() *ast.CriterionDecl {
	start := p.expect(token.KwCriterion).Span
	name := p.expect(token.Ident)
	p.expect(token.LBrace)

	d := &ast.CriterionDecl{Name: name.Literal, StateJoin: types.StateJoinAnd}
	for p.cur().Kind != token.RBrace {
		switch p.cur().Kind {
		case token.KwObjectRef:
			p.advance()
			p.expect(token.Colon)
			ref := p.expect(token.Ident)
			d.ObjectRef, d.ObjectSpan = ref.Literal, ref.Span
		case token.KwStateRef:
			p.advance()
			p.expect(token.Colon)
			ref := p.expect(token.Ident)
			d.StateRef, d.StateSpan = ref.Literal, ref.Span
		case token.KwJoin:
			p.advance()
			p.expect(token.Colon)
			d.Join = p.parseJoinSpec()
		case token.KwExists, token.KwNotExists, token.KwCountOp:
			spec := p.parseExistenceSpec()
			d.Existence = &spec
		case token.KwSeverity:
			p.advance()
			p.expect(token.Colon)
			sev := p.expect(token.StringLit)
			d.Severity = sev.Literal
		default:
			p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
				"unexpected token in criterion body: %s %q", p.cur().Kind, p.cur().Literal)
		}
	}
	end := p.expect(token.RBrace).Span
	d.Span = span.Join(start, end)
	return d
}

func (p *Parser) parseJoinSpec() ast.JoinSpec {
	switch p.cur().Kind {
	case token.KwAll:
		t := p.advance()
		return ast.JoinSpec{Op: types.JoinAll, Span: t.Span}
	case token.KwAny:
		t := p.advance()
		return ast.JoinSpec{Op: types.JoinAny, Span: t.Span}
	case token.KwNone:
		t := p.advance()
		return ast.JoinSpec{Op: types.JoinNone, Span: t.Span}
	case token.KwAtLeast:
		start := p.advance().Span
		p.expect(token.LParen)
		k := p.expect(token.IntLit)
		end := p.expect(token.RParen).Span
		return ast.JoinSpec{Op: types.JoinAtLeast, K: mustAtoi(k.Literal), Span: span.Join(start, end)}
	default:
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected a join operator (all, any, none, at_least), found %s %q", p.cur().Kind, p.cur().Literal)
		panic("unreachable")
	}
}

func (p *Parser) parseExistenceSpec() ast.ExistenceSpec {
	switch p.cur().Kind {
	case token.KwExists:
		t := p.advance()
		return ast.ExistenceSpec{Op: types.ExistsOp, Span: t.Span}
	case token.KwNotExists:
		t := p.advance()
		return ast.ExistenceSpec{Op: types.NotExistsOp, Span: t.Span}
	case token.KwCountOp:
		start := p.advance().Span
		p.expect(token.LParen)
		op := p.parseOperation()
		p.expect(token.Comma)
		k := p.expect(token.IntLit)
		end := p.expect(token.RParen).Span
		return ast.ExistenceSpec{Op: types.CountOpK, Cmp: op, K: mustAtoi(k.Literal), Span: span.Join(start, end)}
	default:
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected an existence check (exists, not_exists, count_op_k)")
		panic("unreachable")
	}
}

// parseExpr / parseTerm / parseFactor implement standard left-associative
// arithmetic precedence over runtime operations (§4.4, §9).
func (p *Parser) parseExpr() ast.Expr {
	left := p.parseTerm()
	for p.cur().Kind == token.Plus || p.cur().Kind == token.Minus {
		opTok := p.advance()
		op := types.RuntimeAdd
		if opTok.Kind == token.Minus {
			op = types.RuntimeSubtract
		}
		right := p.parseTerm()
		left = &ast.RuntimeOp{Op: op, Left: left, Right: right, Span: span.Join(left.ExprSpan(), right.ExprSpan())}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.cur().Kind == token.Star || p.cur().Kind == token.Slash {
		opTok := p.advance()
		op := types.RuntimeMultiply
		if opTok.Kind == token.Slash {
			op = types.RuntimeDivide
		}
		right := p.parseFactor()
		left = &ast.RuntimeOp{Op: op, Left: left, Right: right, Span: span.Join(left.ExprSpan(), right.ExprSpan())}
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	switch p.cur().Kind {
	case token.Ident:
		t := p.advance()
		return &ast.Ident{Name: t.Literal, Span: t.Span}
	case token.IntLit:
		t := p.advance()
		return &ast.Literal{Value: types.Int64(mustAtoi64(t.Literal)), Span: t.Span}
	case token.FloatLit:
		t := p.advance()
		return &ast.Literal{Value: types.Float64(mustParseFloat(t.Literal)), Span: t.Span}
	case token.StringLit:
		t := p.advance()
		return &ast.Literal{Value: types.String(t.Literal), Span: t.Span}
	case token.KwTrue:
		t := p.advance()
		return &ast.Literal{Value: types.Bool_(true), Span: t.Span}
	case token.KwFalse:
		t := p.advance()
		return &ast.Literal{Value: types.Bool_(false), Span: t.Span}
	case token.LParen:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RParen)
		return e
	default:
		p.fail(diag.CodeSyntaxUnexpectedToken, p.cur().Span,
			"expected an expression, found %s %q", p.cur().Kind, p.cur().Literal)
		panic("unreachable")
	}
}
