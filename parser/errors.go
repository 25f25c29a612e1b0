package parser

import "fmt"

// ErrorKind categorizes a parse diagnostic.
type ErrorKind uint8

const (
	// UnterminatedCall: end of input reached before a call's closing
	// bracket. The call is closed at EOF and parsing stops.
	UnterminatedCall ErrorKind = iota
	// UnexpectedToken is reserved for scanner states the current
	// grammar cannot reach; no production emits it today.
	UnexpectedToken
	// UnbalancedBracket: a stray closing bracket with no open call.
	// The bracket is re-classified as literal text.
	UnbalancedBracket
	// InvalidEscape: escape prefix followed by an unrecognized code.
	// An Escape node is still emitted, carrying the raw text.
	InvalidEscape
	// EmptyFunctionName: a call sigil directly followed by an opening
	// bracket ($[...]). The construct is re-classified as text.
	EmptyFunctionName
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedCall:
		return "unterminated call"
	case UnexpectedToken:
		return "unexpected token"
	case UnbalancedBracket:
		return "unbalanced bracket"
	case InvalidEscape:
		return "invalid escape"
	case EmptyFunctionName:
		return "empty function name"
	default:
		return "error"
	}
}

// ParseError is a positioned, recoverable diagnostic. Parsing never
// fails for malformed input; it always returns a (possibly partial)
// tree plus the collected diagnostics.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Span    Span
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Message)
}
