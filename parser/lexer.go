package parser

// Grammar delimiters. Programs are plain text interspersed with
// $name[arg0;arg1;...] calls; a backslash escapes the characters that
// would otherwise be structural.
const (
	sigil        = '$'
	openBracket  = '['
	closeBracket = ']'
	separator    = ';'
	escapePrefix = '\\'
)

// ASCII lookup table for identifier characters, following the lexer's
// usual fast-classification setup.
var isIdentChar [128]bool

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isIdentChar[i] = ('a' <= ch && ch <= 'z') ||
			('A' <= ch && ch <= 'Z') ||
			('0' <= ch && ch <= '9') ||
			ch == '_'
	}
}

func identChar(b byte) bool {
	return b < 128 && isIdentChar[b]
}

// escapeResolutions maps a recognized escape code to its literal value.
// Codes outside this set produce an InvalidEscape diagnostic.
var escapeResolutions = map[byte]string{
	escapePrefix: `\`,
	sigil:        "$",
	openBracket:  "[",
	closeBracket: "]",
	separator:    ";",
	'`':          "`",
}

// scanIdent returns the end of the identifier run starting at pos,
// bounded by end.
func scanIdent(source string, pos, end int) int {
	for pos < end && identChar(source[pos]) {
		pos++
	}
	return pos
}
