package visitor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/forgescript/forgekit/parser"
)

// TestFormatAST tests the rendered tree against golden strings.
func TestFormatAST(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "text and call",
			input: "Hello $foo[bar]",
			want: "Document (0..15)\n" +
				"  Text (0..6): \"Hello \"\n" +
				"  Call (6..15): $foo\n" +
				"    Arg 0 (11..14):\n" +
				"      Text (11..14): \"bar\"\n",
		},
		{
			name:  "escape",
			input: `a\$b`,
			want: "Document (0..4)\n" +
				"  Text (0..1): \"a\"\n" +
				"  Escape (1..3): \"\\\\$\" => \"$\"\n" +
				"  Text (3..4): \"b\"\n",
		},
		{
			name:  "nested call with two arguments",
			input: "$a[$b[x];y]",
			want: "Document (0..11)\n" +
				"  Call (0..11): $a\n" +
				"    Arg 0 (3..8):\n" +
				"      Call (3..8): $b\n" +
				"        Arg 0 (6..7):\n" +
				"          Text (6..7): \"x\"\n" +
				"    Arg 1 (9..10):\n" +
				"      Text (9..10): \"y\"\n",
		},
		{
			name:  "empty document",
			input: "",
			want:  "Document (0..0)\n",
		},
		{
			name:  "empty argument renders header only",
			input: "$f[]",
			want: "Document (0..4)\n" +
				"  Call (0..4): $f\n" +
				"    Arg 0 (3..3):\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, errs := parser.Parse(tt.input)
			if len(errs) != 0 {
				t.Fatalf("unexpected diagnostics: %v", errs)
			}
			if diff := cmp.Diff(tt.want, FormatAST(doc)); diff != "" {
				t.Errorf("render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestFormatASTDeterministic tests that repeated renders of the same
// document are byte-identical.
func TestFormatASTDeterministic(t *testing.T) {
	doc, _ := parser.Parse(`mix \$ of $a[$b[x];y] everything $c[]`)
	first := FormatAST(doc)
	for i := 0; i < 10; i++ {
		if got := FormatAST(doc); got != first {
			t.Fatalf("render %d differs from first render", i)
		}
	}
}

type recordingVisitor struct {
	events []string
}

func (r *recordingVisitor) VisitText(n *parser.Text)       { r.events = append(r.events, "text:"+n.Content) }
func (r *recordingVisitor) VisitEscape(n *parser.Escape)   { r.events = append(r.events, "escape:"+n.Raw) }
func (r *recordingVisitor) VisitCall(n *parser.Call)       { r.events = append(r.events, "call:"+n.Name) }
func (r *recordingVisitor) VisitArgument(*parser.Argument) { r.events = append(r.events, "arg") }

// TestWalkOrder tests the pre-order visiting contract directly.
func TestWalkOrder(t *testing.T) {
	doc, _ := parser.Parse("a$f[b;$g[c]]")
	rec := &recordingVisitor{}
	Walk(rec, doc)

	want := []string{
		"text:a",
		"call:f",
		"arg", "text:b",
		"arg", "call:g", "arg", "text:c",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
}

// TestBaseVisitor tests that the no-op base satisfies the interface and
// can be embedded selectively.
func TestBaseVisitor(t *testing.T) {
	var _ Visitor = (*Base)(nil)

	doc, _ := parser.Parse("$a[$b[x]]")
	c := &functionCollector{}
	Walk(c, doc)
	if diff := cmp.Diff([]string{"a", "b"}, c.names); diff != "" {
		t.Errorf("embedded collector mismatch (-want +got):\n%s", diff)
	}
}
