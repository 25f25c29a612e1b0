package visitor

import (
	"fmt"
	"strings"

	"github.com/forgescript/forgekit/parser"
)

// FormatAST renders the document as an indented, human-readable tree.
// The output is a pure function of the parsed structure: rendering
// never consults unordered state, so identical input formats to
// byte-identical output across runs. Intended for diffing in tests.
func FormatAST(doc *parser.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document (%s)\n", doc.Span)
	for _, n := range doc.Nodes {
		formatNode(&b, n, 1)
	}
	return b.String()
}

func formatNode(b *strings.Builder, n parser.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case *parser.Text:
		fmt.Fprintf(b, "%sText (%s): %q\n", indent, n.Span, n.Content)
	case *parser.Escape:
		fmt.Fprintf(b, "%sEscape (%s): %q => %q\n", indent, n.Span, n.Raw, n.Resolved)
	case *parser.Call:
		fmt.Fprintf(b, "%sCall (%s): $%s\n", indent, n.Span, n.Name)
		for i, arg := range n.Args {
			fmt.Fprintf(b, "%s  Arg %d (%s):\n", indent, i, arg.Span)
			for _, child := range arg.Nodes {
				formatNode(b, child, depth+2)
			}
		}
	case *parser.Argument:
		fmt.Fprintf(b, "%sArgument (%s):\n", indent, n.Span)
		for _, child := range n.Nodes {
			formatNode(b, child, depth+1)
		}
	}
}
