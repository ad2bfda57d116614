// Package span tracks byte offsets and line/column positions for every node
// produced by the compiler pipeline, so diagnostics can always point back at
// source text.
package span

import "fmt"

// Position is a single point in a source file: a byte offset plus its
// decoded 1-based line and column.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open byte range [Start, End) in one source file.
type Span struct {
	File  string
	Start Position
	End   Position
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", s.File, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s:%s-%s", s.File, s.Start, s.End)
}

// Join returns the smallest span covering both a and b. Either may be the
// zero Span, in which case the other is returned unchanged.
func Join(a, b Span) Span {
	if a == (Span{}) {
		return b
	}
	if b == (Span{}) {
		return a
	}
	out := a
	if b.Start.Offset < a.Start.Offset {
		out.Start = b.Start
	}
	if b.End.Offset > a.End.Offset {
		out.End = b.End
	}
	return out
}

// Map decodes byte offsets into line/column positions for one source file.
// It is built once per file and is stateless thereafter, so it may be shared
// freely across goroutines once construction has completed.
type Map struct {
	file        string
	src         []byte
	lineStarts  []int // byte offset of the first byte of each line
	sourceBytes int
	tabWidth    int // columns a tab advances to the next stop; 1 if unset
}

// NewMap indexes the newline offsets of src so that Position can later be
// computed in O(log n) plus a same-line tab scan. tabWidth is an optional
// trailing argument (ESP_LEX_TAB_WIDTH, §6 "Configuration"): when given and
// positive, a tab character advances the column to the next multiple of
// tabWidth instead of counting as a single column, matching how the
// rendered diagnostic is meant to line up in a terminal using that tab
// stop. Omitting it (or passing a non-positive value) preserves the
// original byte-for-byte column counting.
func NewMap(file string, src []byte, tabWidth ...int) *Map {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	width := 1
	if len(tabWidth) > 0 && tabWidth[0] > 0 {
		width = tabWidth[0]
	}
	return &Map{file: file, src: src, lineStarts: starts, sourceBytes: len(src), tabWidth: width}
}

// File returns the name this map was built for.
func (m *Map) File() string { return m.file }

// Position resolves a byte offset to a 1-based line/column pair. Offsets
// past the end of the source clamp to the final known position.
func (m *Map) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > m.sourceBytes {
		offset = m.sourceBytes
	}
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(m.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo + 1
	col := 1
	for i := m.lineStarts[lo]; i < offset; i++ {
		if m.src[i] == '\t' {
			col += m.tabWidth - ((col - 1) % m.tabWidth)
		} else {
			col++
		}
	}
	return Position{Offset: offset, Line: line, Column: col}
}

// Span builds a Span for the half-open byte range [startOffset, endOffset).
func (m *Map) Span(startOffset, endOffset int) Span {
	return Span{File: m.file, Start: m.Position(startOffset), End: m.Position(endOffset)}
}
