package parser

import "strconv"

// mustAtoi/mustAtoi64/mustParseFloat convert a numeric lexeme the lexer has
// already validated as digits-only; a conversion failure here would mean
// the lexer and parser disagree about what a number looks like, which is
// a bug, not a user-facing error.

func mustAtoi(lit string) int {
	n, err := strconv.Atoi(lit)
	if err != nil {
		panic("parser: malformed integer literal accepted by lexer: " + lit)
	}
	return n
}

func mustAtoi64(lit string) int64 {
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		panic("parser: malformed integer literal accepted by lexer: " + lit)
	}
	return n
}

func mustParseFloat(lit string) float64 {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		panic("parser: malformed float literal accepted by lexer: " + lit)
	}
	return f
}
