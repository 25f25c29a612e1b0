package parser

import "strings"

// NodeKind identifies the concrete variant behind a Node.
//
// The set is closed: traversal code is expected to switch exhaustively
// over these four kinds.
type NodeKind uint8

const (
	KindText NodeKind = iota
	KindEscape
	KindCall
	KindArgument
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindEscape:
		return "Escape"
	case KindCall:
		return "Call"
	case KindArgument:
		return "Argument"
	default:
		return "Unknown"
	}
}

// Node is the common interface of all syntax tree variants. The node()
// method seals the interface to this package.
type Node interface {
	Kind() NodeKind
	// Pos returns the start byte offset of the node in the source.
	Pos() int
	// End returns the byte offset just past the node.
	End() int

	node()
}

// Text is a literal run of characters, newlines included. Content is a
// verbatim slice of the source; no escaping has been applied.
type Text struct {
	Content string
	Span    Span
}

func (t *Text) Kind() NodeKind { return KindText }
func (t *Text) Pos() int       { return t.Span.Start }
func (t *Text) End() int       { return t.Span.End }
func (t *Text) node()          {}

// Escape is a recognized escape sequence together with its resolved
// literal value. For an unrecognized code the parser records an
// InvalidEscape diagnostic and sets Resolved to Raw so consumers can
// still proceed.
type Escape struct {
	Raw      string
	Resolved string
	Span     Span
}

func (e *Escape) Kind() NodeKind { return KindEscape }
func (e *Escape) Pos() int       { return e.Span.Start }
func (e *Escape) End() int       { return e.Span.End }
func (e *Escape) node()          {}

// Call is a parsed function invocation $name[...]. Name preserves the
// case as written; lookups against metadata are case-insensitive.
type Call struct {
	Name     string
	NameSpan Span
	Args     []*Argument
	Span     Span
}

func (c *Call) Kind() NodeKind { return KindCall }
func (c *Call) Pos() int       { return c.Span.Start }
func (c *Call) End() int       { return c.Span.End }
func (c *Call) node()          {}

// Argument is one separator-delimited slot between a call's brackets.
// Its nodes may contain nested calls.
type Argument struct {
	Nodes []Node
	Span  Span
}

func (a *Argument) Kind() NodeKind { return KindArgument }
func (a *Argument) Pos() int       { return a.Span.Start }
func (a *Argument) End() int       { return a.Span.End }
func (a *Argument) node()          {}

// IsEmpty reports whether the argument holds no content beyond
// whitespace-only text.
func (a *Argument) IsEmpty() bool {
	for _, n := range a.Nodes {
		t, ok := n.(*Text)
		if !ok {
			return false
		}
		if strings.TrimSpace(t.Content) != "" {
			return false
		}
	}
	return true
}

// Text returns the resolved literal value of the argument when it
// consists purely of text and escape nodes. The second result is false
// when the argument contains a nested call, meaning its value is not
// known statically.
func (a *Argument) Text() (string, bool) {
	var b strings.Builder
	for _, n := range a.Nodes {
		switch n := n.(type) {
		case *Text:
			b.WriteString(n.Content)
		case *Escape:
			b.WriteString(n.Resolved)
		default:
			return "", false
		}
	}
	return b.String(), true
}

// Document is the root of a parse: an ordered sequence of top-level
// nodes covering the entire source. When no diagnostics were produced
// the nodes cover [0, len(source)) with no gaps or overlaps.
type Document struct {
	Nodes []Node
	Span  Span
}
