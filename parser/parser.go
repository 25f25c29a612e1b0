// Package parser turns ForgeScript source text into a span-annotated
// syntax tree with error recovery.
//
// The grammar is plain text interspersed with $name[arg0;arg1;...]
// calls. Arguments may nest further calls; a backslash escapes the
// structural characters. Parsing always terminates and always returns a
// Document, even for malformed input; problems are collected as
// ParseError diagnostics rather than raised.
package parser

import (
	"fmt"
	"log/slog"
)

type parser struct {
	source string
	pos    int
	errors []ParseError
	logger *slog.Logger
}

// Option configures a parse.
type Option func(*parser)

// WithLogger attaches a logger used for debug-level diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *parser) { p.logger = l }
}

// Parse scans source in a single left-to-right pass and returns the
// document together with every diagnostic produced during recovery.
func Parse(source string, opts ...Option) (*Document, []ParseError) {
	p := &parser{source: source}
	for _, opt := range opts {
		opt(p)
	}
	nodes := p.parseSequence(len(source))
	return &Document{Nodes: nodes, Span: NewSpan(0, len(source))}, p.errors
}

// Result pairs one source's document with its diagnostics.
type Result struct {
	Document *Document
	Errors   []ParseError
}

// ParseBatch parses each source independently, preserving input order.
// Results share no mutable state.
func ParseBatch(sources []string, opts ...Option) []Result {
	results := make([]Result, len(sources))
	for i, src := range sources {
		doc, errs := Parse(src, opts...)
		results[i] = Result{Document: doc, Errors: errs}
	}
	return results
}

// parseSequence scans nodes until end, merging literal characters into
// text runs. Stray closing brackets are re-classified as text; plain
// opening brackets inside text are tracked so their matching closers
// are not reported as stray.
func (p *parser) parseSequence(end int) []Node {
	var nodes []Node
	textStart := -1
	textBrackets := 0

	flush := func(upTo int) {
		if textStart >= 0 && upTo > textStart {
			nodes = append(nodes, &Text{
				Content: p.source[textStart:upTo],
				Span:    NewSpan(textStart, upTo),
			})
		}
		textStart = -1
	}
	text := func() {
		if textStart < 0 {
			textStart = p.pos
		}
	}

	for p.pos < end {
		switch p.source[p.pos] {
		case escapePrefix:
			flush(p.pos)
			nodes = append(nodes, p.parseEscape(end))

		case sigil:
			identEnd := scanIdent(p.source, p.pos+1, end)
			if identEnd > p.pos+1 && identEnd < end && p.source[identEnd] == openBracket {
				flush(p.pos)
				nodes = append(nodes, p.parseCall(identEnd, end))
				continue
			}
			if p.pos+1 < end && p.source[p.pos+1] == openBracket {
				// $[...]: no function name. The whole construct
				// becomes literal text starting at the sigil.
				if closing, ok := p.matchBracket(p.pos+1, end); ok {
					p.errorf(EmptyFunctionName, NewSpan(p.pos, closing+1),
						"call sigil with no function name")
					text()
					p.pos = closing + 1
					continue
				}
				p.errorf(EmptyFunctionName, NewSpan(p.pos, p.pos+2),
					"call sigil with no function name")
			}
			text()
			p.pos++

		case closeBracket:
			if textBrackets > 0 {
				textBrackets--
			} else {
				p.errorf(UnbalancedBracket, NewSpan(p.pos, p.pos+1),
					"closing bracket with no open call")
			}
			text()
			p.pos++

		case openBracket:
			textBrackets++
			text()
			p.pos++

		default:
			text()
			p.pos++
		}
	}
	flush(p.pos)
	return nodes
}

// parseEscape consumes the escape prefix plus one code byte. An
// unrecognized code (including a trailing backslash) still yields an
// Escape node whose Resolved equals Raw.
func (p *parser) parseEscape(end int) *Escape {
	start := p.pos
	if start+1 >= end {
		p.pos = start + 1
		sp := NewSpan(start, p.pos)
		p.errorf(InvalidEscape, sp, "dangling escape prefix")
		raw := p.source[start:p.pos]
		return &Escape{Raw: raw, Resolved: raw, Span: sp}
	}
	code := p.source[start+1]
	p.pos = start + 2
	raw := p.source[start:p.pos]
	sp := NewSpan(start, p.pos)
	if resolved, ok := escapeResolutions[code]; ok {
		return &Escape{Raw: raw, Resolved: resolved, Span: sp}
	}
	p.errorf(InvalidEscape, sp, fmt.Sprintf("unrecognized escape code %q", raw))
	return &Escape{Raw: raw, Resolved: raw, Span: sp}
}

// parseCall consumes $name[...]. p.pos is on the sigil and identEnd is
// the position of the committed opening bracket.
func (p *parser) parseCall(identEnd, end int) *Call {
	start := p.pos
	nameStart := start + 1
	name := p.source[nameStart:identEnd]
	open := identEnd

	closing, ok := p.matchBracket(open, end)
	if !ok {
		// Close the call at end of input. Everything after the
		// bracket becomes the single argument's raw content and
		// scanning stops there.
		p.errorf(UnterminatedCall, NewSpan(start, end),
			fmt.Sprintf("missing ']' for $%s", name))
		arg := &Argument{Span: NewSpan(open+1, end)}
		if open+1 < end {
			arg.Nodes = []Node{&Text{
				Content: p.source[open+1 : end],
				Span:    NewSpan(open+1, end),
			}}
		}
		p.pos = end
		return &Call{
			Name:     name,
			NameSpan: NewSpan(nameStart, identEnd),
			Args:     []*Argument{arg},
			Span:     NewSpan(start, end),
		}
	}

	args := p.parseArguments(open+1, closing)
	p.pos = closing + 1
	return &Call{
		Name:     name,
		NameSpan: NewSpan(nameStart, identEnd),
		Args:     args,
		Span:     NewSpan(start, closing+1),
	}
}

// matchBracket finds the closing bracket matching the opener at open.
// Every unescaped bracket adjusts the same nesting counter, so nested
// calls' brackets are tracked transparently.
func (p *parser) matchBracket(open, end int) (int, bool) {
	depth := 1
	for i := open + 1; i < end; i++ {
		switch p.source[i] {
		case escapePrefix:
			i++ // skip the escaped byte
		case openBracket:
			depth++
		case closeBracket:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// parseArguments splits balanced bracket content at depth-0 separators
// and parses each segment recursively with absolute spans.
func (p *parser) parseArguments(start, end int) []*Argument {
	var args []*Argument
	segStart := start
	depth := 0
	for i := start; i < end; i++ {
		switch p.source[i] {
		case escapePrefix:
			i++
		case openBracket:
			depth++
		case closeBracket:
			if depth > 0 {
				depth--
			}
		case separator:
			if depth == 0 {
				args = append(args, p.parseArgument(segStart, i))
				segStart = i + 1
			}
		}
	}
	args = append(args, p.parseArgument(segStart, end))
	return args
}

func (p *parser) parseArgument(start, end int) *Argument {
	saved := p.pos
	p.pos = start
	nodes := p.parseSequence(end)
	p.pos = saved
	return &Argument{Nodes: nodes, Span: NewSpan(start, end)}
}

func (p *parser) errorf(kind ErrorKind, span Span, msg string) {
	p.errors = append(p.errors, ParseError{Kind: kind, Message: msg, Span: span})
	if p.logger != nil {
		p.logger.Debug("parse diagnostic", "kind", kind.String(), "span", span.String())
	}
}
