package parser

import "fmt"

// Span is a half-open byte range [Start, End) into the original source.
// Spans are attached to every node and diagnostic and are never mutated
// after construction.
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.Start >= s.End
}

// Slice returns the portion of source covered by the span. The end is
// clamped to len(source) so spans produced by EOF recovery stay safe.
func (s Span) Slice(source string) string {
	end := s.End
	if end > len(source) {
		end = len(source)
	}
	if s.Start >= end {
		return ""
	}
	return source[s.Start:end]
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
