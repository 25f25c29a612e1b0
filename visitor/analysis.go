package visitor

import (
	"sort"
	"strings"

	"github.com/forgescript/forgekit/parser"
)

// CountNodes returns the total node count of the document, nested
// nodes and argument slots included.
func CountNodes(doc *parser.Document) int {
	total := 0
	for _, n := range doc.Nodes {
		total += countSubtree(n)
	}
	return total
}

func countSubtree(n parser.Node) int {
	switch n := n.(type) {
	case *parser.Call:
		total := 1
		for _, arg := range n.Args {
			total += countSubtree(arg)
		}
		return total
	case *parser.Argument:
		total := 1
		for _, child := range n.Nodes {
			total += countSubtree(child)
		}
		return total
	default:
		return 1
	}
}

type kindCounter struct {
	Base
	counts map[parser.NodeKind]int
}

func (c *kindCounter) VisitText(*parser.Text)         { c.counts[parser.KindText]++ }
func (c *kindCounter) VisitEscape(*parser.Escape)     { c.counts[parser.KindEscape]++ }
func (c *kindCounter) VisitCall(*parser.Call)         { c.counts[parser.KindCall]++ }
func (c *kindCounter) VisitArgument(*parser.Argument) { c.counts[parser.KindArgument]++ }

// CountNodeTypes returns a per-kind node count, computed through the
// generic traversal.
func CountNodeTypes(doc *parser.Document) map[parser.NodeKind]int {
	c := &kindCounter{counts: make(map[parser.NodeKind]int)}
	Walk(c, doc)
	return c.counts
}

// MaxNestingDepth returns the deepest call-within-argument-within-call
// nesting. The document root counts as depth 0, so "$a[$b[x]]" has
// depth 2.
func MaxNestingDepth(doc *parser.Document) int {
	max := 0
	for _, n := range doc.Nodes {
		if d := nestingDepth(n, 0); d > max {
			max = d
		}
	}
	return max
}

func nestingDepth(n parser.Node, current int) int {
	call, ok := n.(*parser.Call)
	if !ok {
		return current
	}
	max := current + 1
	for _, arg := range call.Args {
		for _, child := range arg.Nodes {
			if d := nestingDepth(child, current+1); d > max {
				max = d
			}
		}
	}
	return max
}

type functionCollector struct {
	Base
	names []string
}

func (c *functionCollector) VisitCall(call *parser.Call) {
	c.names = append(c.names, call.Name)
}

// CollectFunctions returns every call name in document order,
// duplicates preserved, via the generic visitor protocol.
func CollectFunctions(doc *parser.Document) []string {
	c := &functionCollector{}
	Walk(c, doc)
	return c.names
}

// ExtractFunctionNames is the specialized fast path equivalent of
// CollectFunctions; the two always agree on output.
func ExtractFunctionNames(doc *parser.Document) []string {
	var names []string
	for _, n := range doc.Nodes {
		names = extractNames(n, names)
	}
	return names
}

func extractNames(n parser.Node, names []string) []string {
	call, ok := n.(*parser.Call)
	if !ok {
		return names
	}
	names = append(names, call.Name)
	for _, arg := range call.Args {
		for _, child := range arg.Nodes {
			names = extractNames(child, names)
		}
	}
	return names
}

// Stats is the aggregate analysis record for one document.
type Stats struct {
	TotalNodes      int
	TextNodes       int
	EscapeNodes     int
	CallNodes       int
	ArgumentNodes   int
	MaxDepth        int
	UniqueFunctions int
}

// CalculateStats computes the aggregate statistics in one pass over
// the traversal plus a name dedup.
func CalculateStats(doc *parser.Document) Stats {
	counts := CountNodeTypes(doc)
	names := ExtractFunctionNames(doc)
	unique := make(map[string]struct{}, len(names))
	for _, name := range names {
		unique[name] = struct{}{}
	}
	return Stats{
		TotalNodes:      CountNodes(doc),
		TextNodes:       counts[parser.KindText],
		EscapeNodes:     counts[parser.KindEscape],
		CallNodes:       counts[parser.KindCall],
		ArgumentNodes:   counts[parser.KindArgument],
		MaxDepth:        MaxNestingDepth(doc),
		UniqueFunctions: len(unique),
	}
}

// javascript markers checked against lowercased literal text. This is a
// heuristic, not a parser: it may flag text that merely looks like
// embedded script and offers no false-negative guarantee.
var scriptMarkers = []string{"<script", "javascript:", "${"}

// ContainsJavaScript reports whether any literal text in the document
// looks like embedded script syntax.
func ContainsJavaScript(doc *parser.Document) bool {
	found := false
	scan := &textScanner{match: func(content string) {
		lower := strings.ToLower(content)
		for _, marker := range scriptMarkers {
			if strings.Contains(lower, marker) {
				found = true
				return
			}
		}
	}}
	Walk(scan, doc)
	return found
}

type textScanner struct {
	Base
	match func(string)
}

func (s *textScanner) VisitText(t *parser.Text) { s.match(t.Content) }

// ExtractTextNodes returns every literal text node in document order.
func ExtractTextNodes(doc *parser.Document) []*parser.Text {
	var texts []*parser.Text
	for _, n := range doc.Nodes {
		texts = appendTexts(n, texts)
	}
	return texts
}

func appendTexts(n parser.Node, texts []*parser.Text) []*parser.Text {
	switch n := n.(type) {
	case *parser.Text:
		texts = append(texts, n)
	case *parser.Call:
		for _, arg := range n.Args {
			texts = appendTexts(arg, texts)
		}
	case *parser.Argument:
		for _, child := range n.Nodes {
			texts = appendTexts(child, texts)
		}
	}
	return texts
}

// Flatten returns the document's nodes as a linear pre-order sequence.
func Flatten(doc *parser.Document) []parser.Node {
	var flat []parser.Node
	c := &flattener{out: &flat}
	Walk(c, doc)
	return flat
}

type flattener struct {
	out *[]parser.Node
}

func (f *flattener) VisitText(n *parser.Text)         { *f.out = append(*f.out, n) }
func (f *flattener) VisitEscape(n *parser.Escape)     { *f.out = append(*f.out, n) }
func (f *flattener) VisitCall(n *parser.Call)         { *f.out = append(*f.out, n) }
func (f *flattener) VisitArgument(n *parser.Argument) { *f.out = append(*f.out, n) }

// SourceSlice returns the region of source a node covers.
func SourceSlice(source string, n parser.Node) string {
	return parser.NewSpan(n.Pos(), n.End()).Slice(source)
}

// UniqueFunctionNames returns the distinct call names sorted ascending.
func UniqueFunctionNames(doc *parser.Document) []string {
	seen := make(map[string]struct{})
	for _, name := range ExtractFunctionNames(doc) {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
