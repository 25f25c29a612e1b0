// Package validator cross-checks parsed documents against a metadata
// catalogue. Findings are informational output, never errors; the only
// error this package returns is the caller contract violation of
// validating against a catalogue that was never populated.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/forgescript/forgekit/metadata"
	"github.com/forgescript/forgekit/parser"
)

// ErrCatalogueNotFetched is returned when a rule that needs metadata
// is enabled but the supplied catalogue was never populated by
// FetchAll or ImportCache.
var ErrCatalogueNotFetched = errors.New("validator: catalogue has not been fetched")

// Config toggles the independent rule classes. A disabled class
// contributes zero findings but never stops evaluation of the others.
type Config struct {
	Arguments bool
	Enums     bool
	Functions bool
	Brackets  bool
	Escapes   bool
}

// Strict returns a config with every rule class enabled.
func Strict() Config {
	return Config{Arguments: true, Enums: true, Functions: true, Brackets: true, Escapes: true}
}

// Enabled reports whether any rule class is switched on.
func (c Config) Enabled() bool {
	return c.Arguments || c.Enums || c.Functions || c.Brackets || c.Escapes
}

// needsMetadata reports whether the enabled rules consult a catalogue.
func (c Config) needsMetadata() bool {
	return c.Arguments || c.Enums || c.Functions
}

// FindingKind identifies one validation rule violation.
type FindingKind uint8

const (
	UnknownFunction FindingKind = iota
	ArgumentCountMismatch
	InvalidEnumValue
	UnbalancedBracket
	InvalidEscape
	UnescapedCharacter
)

func (k FindingKind) String() string {
	switch k {
	case UnknownFunction:
		return "unknown function"
	case ArgumentCountMismatch:
		return "argument count mismatch"
	case InvalidEnumValue:
		return "invalid enum value"
	case UnbalancedBracket:
		return "unbalanced bracket"
	case InvalidEscape:
		return "invalid escape"
	case UnescapedCharacter:
		return "unescaped character"
	default:
		return "finding"
	}
}

// ruleClass maps a finding to its rule class for the fixed ordering:
// functions, arguments, enums, brackets, escapes.
func (k FindingKind) ruleClass() int {
	switch k {
	case UnknownFunction:
		return 0
	case ArgumentCountMismatch:
		return 1
	case InvalidEnumValue:
		return 2
	case UnbalancedBracket:
		return 3
	default:
		return 4
	}
}

// Finding is one rule violation tied to a tree span.
type Finding struct {
	Kind    FindingKind
	Message string
	Span    parser.Span

	// Suggestion carries the closest known name for UnknownFunction.
	Suggestion string

	// Arity details for ArgumentCountMismatch. MaxArgs is -1 for a
	// variadic trailing slot.
	MinArgs int
	MaxArgs int
	GotArgs int
}

func (f Finding) String() string {
	return fmt.Sprintf("%s at %s: %s", f.Kind, f.Span, f.Message)
}

// Report is the full outcome of validating one source.
type Report struct {
	Findings []Finding
}

// Empty reports whether validation produced no findings.
func (r *Report) Empty() bool { return len(r.Findings) == 0 }

// Validate walks the document, consults the catalogue, and returns a
// report of rule violations. Parse diagnostics are passed in so the
// brackets and escapes rules can re-surface them into the same report.
// Validation is read-only with respect to both the tree and the
// catalogue.
func Validate(doc *parser.Document, diags []parser.ParseError, cat *metadata.Catalogue, cfg Config) (*Report, error) {
	report := &Report{}
	if !cfg.Enabled() {
		return report, nil
	}
	if cfg.needsMetadata() && (cat == nil || !cat.Populated()) {
		return nil, ErrCatalogueNotFetched
	}

	v := &validation{cat: cat, cfg: cfg, report: report}
	for _, n := range doc.Nodes {
		v.node(n)
	}
	if cfg.Brackets || cfg.Escapes {
		v.diagnostics(diags)
	}

	// Deterministic order: document position, then rule class.
	sort.SliceStable(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.Kind.ruleClass() < b.Kind.ruleClass()
	})
	return report, nil
}

// ValidateCode parses source and validates the result in one step.
func ValidateCode(source string, cat *metadata.Catalogue, cfg Config) (*Report, error) {
	doc, diags := parser.Parse(source)
	return Validate(doc, diags, cat, cfg)
}

// ValidateBatch validates each source independently against the shared
// catalogue, returning one report per input in input order.
func ValidateBatch(sources []string, cat *metadata.Catalogue, cfg Config) ([]*Report, error) {
	reports := make([]*Report, len(sources))
	for i, src := range sources {
		report, err := ValidateCode(src, cat, cfg)
		if err != nil {
			return nil, err
		}
		reports[i] = report
	}
	return reports, nil
}

type validation struct {
	cat    *metadata.Catalogue
	cfg    Config
	report *Report
}

func (v *validation) node(n parser.Node) {
	switch n := n.(type) {
	case *parser.Call:
		v.call(n)
		for _, arg := range n.Args {
			for _, child := range arg.Nodes {
				v.node(child)
			}
		}
	case *parser.Text:
		if v.cfg.Escapes {
			v.unescapedChars(n)
		}
	}
}

func (v *validation) call(call *parser.Call) {
	var fn *metadata.Function
	if v.cfg.needsMetadata() {
		fn = v.cat.GetFunction(call.Name)
	}

	if v.cfg.Functions && fn == nil {
		v.report.Findings = append(v.report.Findings, Finding{
			Kind:       UnknownFunction,
			Message:    fmt.Sprintf("unknown function $%s", call.Name),
			Span:       call.Span,
			Suggestion: v.cat.Suggest(call.Name),
		})
	}
	if fn == nil {
		return
	}
	if v.cfg.Arguments {
		v.arity(call, fn)
	}
	if v.cfg.Enums {
		v.enums(call, fn)
	}
}

// effectiveArgCount treats a lone empty slot as zero arguments, so
// "$foo[]" counts as a call with no arguments.
func effectiveArgCount(call *parser.Call) int {
	if len(call.Args) == 1 && call.Args[0].IsEmpty() {
		return 0
	}
	return len(call.Args)
}

func (v *validation) arity(call *parser.Call, fn *metadata.Function) {
	required, max := fn.Arity()
	got := effectiveArgCount(call)

	switch {
	case got < required:
		v.report.Findings = append(v.report.Findings, Finding{
			Kind: ArgumentCountMismatch,
			Message: fmt.Sprintf("$%s requires at least %d argument(s), got %d",
				fn.Name, required, got),
			Span:    call.Span,
			MinArgs: required, MaxArgs: max, GotArgs: got,
		})
	case max >= 0 && got > max:
		v.report.Findings = append(v.report.Findings, Finding{
			Kind: ArgumentCountMismatch,
			Message: fmt.Sprintf("$%s accepts at most %d argument(s), got %d",
				fn.Name, max, got),
			Span:    call.Span,
			MinArgs: required, MaxArgs: max, GotArgs: got,
		})
	}
}

func (v *validation) enums(call *parser.Call, fn *metadata.Function) {
	if len(fn.Args) == 0 {
		return
	}
	for i, arg := range call.Args {
		spec := specFor(fn, i)
		if spec == nil || spec.Enum == "" {
			continue
		}
		// Arguments containing nested calls are exempt: their value
		// is not known until evaluation.
		text, pure := arg.Text()
		if !pure {
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" && !spec.Required {
			continue
		}
		enum := v.cat.GetEnum(spec.Enum)
		if enum == nil || enum.Has(trimmed) {
			continue
		}
		v.report.Findings = append(v.report.Findings, Finding{
			Kind: InvalidEnumValue,
			Message: fmt.Sprintf("%q is not a value of enum %s for argument %q of $%s",
				trimmed, enum.Name, spec.Name, fn.Name),
			Span: arg.Span,
		})
	}
}

// specFor returns the argument spec for slot i; a trailing variadic
// spec covers every slot past the fixed prefix.
func specFor(fn *metadata.Function, i int) *metadata.ArgSpec {
	if i < len(fn.Args) {
		return &fn.Args[i]
	}
	if last := len(fn.Args) - 1; last >= 0 && fn.Args[last].Variadic {
		return &fn.Args[last]
	}
	return nil
}

// diagnostics re-surfaces residual parse diagnostics as findings so a
// single report captures syntax and semantic issues together.
func (v *validation) diagnostics(diags []parser.ParseError) {
	for _, d := range diags {
		switch d.Kind {
		case parser.UnterminatedCall, parser.UnbalancedBracket:
			if v.cfg.Brackets {
				v.report.Findings = append(v.report.Findings, Finding{
					Kind:    UnbalancedBracket,
					Message: d.Message,
					Span:    d.Span,
				})
			}
		case parser.InvalidEscape:
			if v.cfg.Escapes {
				v.report.Findings = append(v.report.Findings, Finding{
					Kind:    InvalidEscape,
					Message: d.Message,
					Span:    d.Span,
				})
			}
		}
	}
}

// unescapedChars flags raw brackets inside literal text; the grammar
// requires them escaped to be unambiguous.
func (v *validation) unescapedChars(t *parser.Text) {
	for i := 0; i < len(t.Content); i++ {
		ch := t.Content[i]
		if ch != '[' && ch != ']' {
			continue
		}
		at := t.Span.Start + i
		v.report.Findings = append(v.report.Findings, Finding{
			Kind:    UnescapedCharacter,
			Message: fmt.Sprintf("raw %q in literal text should be escaped", string(ch)),
			Span:    parser.NewSpan(at, at+1),
		})
	}
}
