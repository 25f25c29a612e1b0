// Package visitor provides pre-order traversal over parsed documents
// and the read-only analyses built on top of it. All operations are
// total over a well-formed Document: they never fail and never report
// parse errors (those belong to the parser).
package visitor

import "github.com/forgescript/forgekit/parser"

// Visitor is invoked once per node in document order. A Call is visited
// before its arguments; arguments and their nested nodes are visited
// left to right.
type Visitor interface {
	VisitText(*parser.Text)
	VisitEscape(*parser.Escape)
	VisitCall(*parser.Call)
	VisitArgument(*parser.Argument)
}

// Base is a no-op Visitor intended for embedding, so analyses only
// implement the hooks they care about.
type Base struct{}

func (Base) VisitText(*parser.Text)         {}
func (Base) VisitEscape(*parser.Escape)     {}
func (Base) VisitCall(*parser.Call)         {}
func (Base) VisitArgument(*parser.Argument) {}

// Walk traverses the whole document in pre-order.
func Walk(v Visitor, doc *parser.Document) {
	for _, n := range doc.Nodes {
		WalkNode(v, n)
	}
}

// WalkNode traverses a single subtree in pre-order.
func WalkNode(v Visitor, n parser.Node) {
	switch n := n.(type) {
	case *parser.Text:
		v.VisitText(n)
	case *parser.Escape:
		v.VisitEscape(n)
	case *parser.Call:
		v.VisitCall(n)
		for _, arg := range n.Args {
			WalkNode(v, arg)
		}
	case *parser.Argument:
		v.VisitArgument(n)
		for _, child := range n.Nodes {
			WalkNode(v, child)
		}
	}
}
