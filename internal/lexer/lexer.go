// Package lexer implements the ESP lexical analyzer (§4.1): it consumes
// UTF-8 source text and produces an ordered token stream, eliding
// whitespace and comments while keeping spans faithful to the original
// byte offsets.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/espsec/espc/internal/diag"
	"github.com/espsec/espc/internal/span"
	"github.com/espsec/espc/internal/token"
)

// Metrics records counters useful for batch reporting and tests, without
// requiring a caller to re-walk the token stream.
type Metrics struct {
	Tokens   int
	Lines    int
	Comments int
}

// Lexer scans one source file's worth of text. A Lexer is restartable
// between files (construct a new one per file) but carries no state
// across files (§4.1).
type Lexer struct {
	file    string
	src     []byte
	sourceMap *span.Map
	offset  int // byte offset of the next unread rune
	metrics Metrics
}

// New constructs a Lexer over src, attributed to file for diagnostics.
// tabWidth is an optional trailing argument forwarded to span.NewMap
// (ESP_LEX_TAB_WIDTH, §6 "Configuration"): when given and positive, it
// controls how far a tab advances the column reported in diagnostics.
func New(file string, src []byte, tabWidth ...int) *Lexer {
	return &Lexer{
		file:      file,
		src:       src,
		sourceMap: span.NewMap(file, src, tabWidth...),
		metrics:   Metrics{Lines: 1},
	}
}

// SourceMap returns the position decoder built for this file, so later
// stages can attribute their own spans without re-scanning.
func (l *Lexer) SourceMap() *span.Map { return l.sourceMap }

// Metrics returns a snapshot of scanning counters.
func (l *Lexer) Metrics() Metrics { return l.metrics }

// Error is a coded lexical failure with its offending span (§4.1 failure
// modes: unterminated string, invalid escape, stray character).
type Error struct {
	Code    diag.Code
	Message string
	Span    span.Span
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Span, e.Message) }

// Tokenize scans the full input and returns every token (EOF included) or
// the first lexical error encountered. The lexer does not attempt
// recovery past a lexical error; that is the parser's job at the
// declaration boundary (§4.2).
func (l *Lexer) Tokenize() ([]token.Token, *Error) {
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		l.metrics.Tokens++
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) peekByte() (byte, bool) {
	if l.offset >= len(l.src) {
		return 0, false
	}
	return l.src[l.offset], true
}

func (l *Lexer) peekByteAt(ahead int) (byte, bool) {
	if l.offset+ahead >= len(l.src) {
		return 0, false
	}
	return l.src[l.offset+ahead], true
}

func (l *Lexer) advance() {
	if l.offset < len(l.src) && l.src[l.offset] == '\n' {
		l.metrics.Lines++
	}
	l.offset++
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		b, ok := l.peekByte()
		if !ok {
			return
		}
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '#':
			l.metrics.Comments++
			for {
				b, ok := l.peekByte()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
		case b == '/' && peekIs(l, 1, '/'):
			l.metrics.Comments++
			for {
				b, ok := l.peekByte()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

func peekIs(l *Lexer, ahead int, want byte) bool {
	b, ok := l.peekByteAt(ahead)
	return ok && b == want
}

func (l *Lexer) next() (token.Token, *Error) {
	l.skipWhitespaceAndComments()

	start := l.offset
	b, ok := l.peekByte()
	if !ok {
		return l.tok(token.EOF, "", start), nil
	}

	switch {
	case isIdentStart(b):
		return l.scanIdentOrKeyword(start), nil
	case isDigit(b):
		return l.scanNumber(start)
	case b == '"':
		return l.scanString(start)
	}

	single := map[byte]token.Kind{
		'{': token.LBrace, '}': token.RBrace,
		'(': token.LParen, ')': token.RParen,
		'[': token.LBracket, ']': token.RBracket,
		':': token.Colon, ',': token.Comma, '.': token.Dot,
		'=': token.Equals, '*': token.Star,
		'+': token.Plus, '-': token.Minus, '/': token.Slash,
	}
	if kind, ok := single[b]; ok {
		l.advance()
		return l.tok(kind, string(b), start), nil
	}

	// Validate the byte forms a decodable rune for a useful message, but
	// the token itself is still an illegal single-byte/rune lexeme.
	r, size := utf8.DecodeRune(l.src[l.offset:])
	l.offset += size
	return token.Token{}, &Error{
		Code:    diag.CodeLexStrayCharacter,
		Message: fmt.Sprintf("stray character %q", r),
		Span:    l.sourceMap.Span(start, l.offset),
	}
}

func (l *Lexer) tok(kind token.Kind, lit string, start int) token.Token {
	return token.Token{Kind: kind, Literal: lit, Span: l.sourceMap.Span(start, l.offset)}
}

func (l *Lexer) scanIdentOrKeyword(start int) token.Token {
	for {
		b, ok := l.peekByte()
		if !ok || !isIdentCont(b) {
			break
		}
		l.advance()
	}
	lit := string(l.src[start:l.offset])
	kind := token.Lookup(lit)
	return l.tok(kind, lit, start)
}

// scanNumber distinguishes integer and float literals by the presence of
// a decimal point or exponent (§4.1).
func (l *Lexer) scanNumber(start int) (token.Token, *Error) {
	isFloat := false
	for {
		b, ok := l.peekByte()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peekByte(); ok && b == '.' {
		if next, ok2 := l.peekByteAt(1); ok2 && isDigit(next) {
			isFloat = true
			l.advance() // consume '.'
			for {
				b, ok := l.peekByte()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	if b, ok := l.peekByte(); ok && (b == 'e' || b == 'E') {
		save := l.offset
		l.advance()
		if b, ok := l.peekByte(); ok && (b == '+' || b == '-') {
			l.advance()
		}
		if b, ok := l.peekByte(); ok && isDigit(b) {
			isFloat = true
			for {
				b, ok := l.peekByte()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		} else {
			l.offset = save // not actually an exponent; back out
		}
	}
	lit := string(l.src[start:l.offset])
	if isFloat {
		return l.tok(token.FloatLit, lit, start), nil
	}
	return l.tok(token.IntLit, lit, start), nil
}

// scanString supports the standard escapes \" \\ \n \t \r \0 and rejects
// anything else as an invalid escape; an EOF before the closing quote is
// an unterminated string (§4.1).
func (l *Lexer) scanString(start int) (token.Token, *Error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		b, ok := l.peekByte()
		if !ok {
			return token.Token{}, &Error{
				Code:    diag.CodeLexUnterminatedString,
				Message: "unterminated string literal",
				Span:    l.sourceMap.Span(start, l.offset),
			}
		}
		if b == '"' {
			l.advance()
			return l.tok(token.StringLit, sb.String(), start), nil
		}
		if b == '\\' {
			escStart := l.offset
			l.advance()
			eb, ok := l.peekByte()
			if !ok {
				return token.Token{}, &Error{
					Code:    diag.CodeLexUnterminatedString,
					Message: "unterminated string literal",
					Span:    l.sourceMap.Span(start, l.offset),
				}
			}
			var decoded byte
			switch eb {
			case '"':
				decoded = '"'
			case '\\':
				decoded = '\\'
			case 'n':
				decoded = '\n'
			case 't':
				decoded = '\t'
			case 'r':
				decoded = '\r'
			case '0':
				decoded = 0
			default:
				l.advance()
				return token.Token{}, &Error{
					Code:    diag.CodeLexInvalidEscape,
					Message: fmt.Sprintf("invalid escape sequence \\%c", eb),
					Span:    l.sourceMap.Span(escStart, l.offset),
				}
			}
			sb.WriteByte(decoded)
			l.advance()
			continue
		}
		sb.WriteByte(b)
		l.advance()
	}
}
