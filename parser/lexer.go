package parser

// Lexer implements a zero-copy lexer for Beancount files.
//
// The zero-copy approach:
// - Tokens store byte offsets, not string values
// - Line starts are recorded so the parser can recover raw line text
// - Pre-allocated token buffer

// Lexer tokenizes Beancount source code.
type Lexer struct {
	source     []byte // Source buffer
	filename   string // Filename for error reporting
	pos        int    // Current byte position
	line       int    // Current line (1-indexed)
	column     int    // Current column (1-indexed)
	tokens     []Token
	lineStarts []int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source []byte, filename string) *Lexer {
	// Estimate token count: empirically ~1 token per 20 bytes
	estimatedTokens := len(source)/20 + 64

	return &Lexer{
		source:     source,
		filename:   filename,
		line:       1,
		column:     1,
		tokens:     make([]Token, 0, estimatedTokens),
		lineStarts: []int{0},
	}
}

// LineStarts returns the byte offset at which every line begins. Index 0 is
// line 1. Only complete after ScanAll.
func (l *Lexer) LineStarts() []int {
	return l.lineStarts
}

// ScanAll lexes the entire source file and returns all tokens.
// This is a single-pass scanner with no backtracking.
func (l *Lexer) ScanAll() []Token {
	for l.pos < len(l.source) {
		l.skipWhitespace()

		if l.pos >= len(l.source) {
			break
		}

		// Org-mode headings and similar column-1 markup are ignored.
		if l.column == 1 && (l.peek() == '*' || l.peek() == '#') {
			l.skipLine()
			continue
		}

		tok := l.scanToken()
		l.tokens = append(l.tokens, tok)
	}

	l.tokens = append(l.tokens, Token{
		Type:   EOF,
		Start:  l.pos,
		End:    l.pos,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens
}

// scanToken scans the next token from the current position.
func (l *Lexer) scanToken() Token {
	start := l.pos
	startLine := l.line
	startCol := l.column

	ch := l.advance()

	switch {
	// Dates must be checked before numbers; both start with a digit.
	case isDigit(ch):
		if end := l.datePatternEnd(start); end > 0 {
			for l.pos < end {
				l.advance()
			}
			return Token{DATE, start, l.pos, startLine, startCol}
		}
		return l.scanNumber(start, startLine, startCol)
	case (ch == '-' || ch == '+') && isDigit(l.peek()):
		return l.scanNumber(start, startLine, startCol)

	case ch == '"':
		return l.scanString(start, startLine, startCol)

	case ch == ';':
		for l.pos < len(l.source) && l.source[l.pos] != '\n' {
			l.advance()
		}
		end := l.pos
		if end > start && l.source[end-1] == '\r' {
			end--
		}
		return Token{COMMENT, start, end, startLine, startCol}

	case ch == '#':
		l.scanAnchor()
		return Token{TAG, start, l.pos, startLine, startCol}
	case ch == '^':
		l.scanAnchor()
		return Token{LINK, start, l.pos, startLine, startCol}

	// Accounts and currencies start with a capital letter or a non-ASCII byte.
	case ch >= 'A' && ch <= 'Z' || ch >= 0x80:
		return l.scanAccountOrCurrency(start, startLine, startCol)

	case ch >= 'a' && ch <= 'z':
		return l.scanKeywordOrIdent(start, startLine, startCol)

	case ch == '*' || ch == '!' || ch == '&' || ch == '?' || ch == '%':
		return Token{FLAG, start, l.pos, startLine, startCol}
	case ch == ':':
		return Token{COLON, start, l.pos, startLine, startCol}
	case ch == ',':
		return Token{COMMA, start, l.pos, startLine, startCol}
	case ch == '|':
		return Token{PIPE, start, l.pos, startLine, startCol}
	case ch == '~':
		return Token{TILDE, start, l.pos, startLine, startCol}

	case ch == '{':
		if l.peek() == '{' {
			l.advance()
			return Token{LDBRACE, start, l.pos, startLine, startCol}
		}
		return Token{LBRACE, start, l.pos, startLine, startCol}
	case ch == '}':
		if l.peek() == '}' {
			l.advance()
			return Token{RDBRACE, start, l.pos, startLine, startCol}
		}
		return Token{RBRACE, start, l.pos, startLine, startCol}

	case ch == '@':
		if l.peek() == '@' {
			l.advance()
			return Token{ATAT, start, l.pos, startLine, startCol}
		}
		return Token{AT, start, l.pos, startLine, startCol}

	default:
		return Token{ILLEGAL, start, l.pos, startLine, startCol}
	}
}

// datePatternEnd returns the end offset of a YYYY-M-D date starting at
// start, or 0 when the input there is not a date.
func (l *Lexer) datePatternEnd(start int) int {
	src := l.source[start:]
	i := 0
	for ; i < 4; i++ {
		if i >= len(src) || !isDigit(src[i]) {
			return 0
		}
	}

	for part := 0; part < 2; part++ {
		if i >= len(src) || src[i] != '-' {
			return 0
		}
		i++
		digits := 0
		for i < len(src) && isDigit(src[i]) && digits < 3 {
			i++
			digits++
		}
		if digits == 0 || digits > 2 {
			return 0
		}
	}

	return start + i
}

// scanNumber scans a number: [-+]?[0-9]+([.,][0-9]+)*
//
// Separators are accepted liberally here; the decimal parser decides
// whether the literal is valid.
func (l *Lexer) scanNumber(start, line, col int) Token {
	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.advance()
	}

	for l.pos+1 < len(l.source) {
		sep := l.source[l.pos]
		if (sep != '.' && sep != ',') || !isDigit(l.source[l.pos+1]) {
			break
		}
		l.advance()
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.advance()
		}
	}

	return Token{NUMBER, start, l.pos, line, col}
}

// scanString scans a quoted string. Strings may span lines; an unterminated
// string is returned as ILLEGAL.
func (l *Lexer) scanString(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '"' {
			l.advance()
			return Token{STRING, start, l.pos, line, col}
		}
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.advance()
		}
		l.advance()
	}

	return Token{ILLEGAL, start, l.pos, line, col}
}

// scanAnchor scans the body of a tag or link: [A-Za-z0-9_/.-]+ plus UTF-8.
func (l *Lexer) scanAnchor() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if !isLetter(ch) && !isDigit(ch) && ch != '_' && ch != '-' && ch != '/' && ch != '.' && ch < 0x80 {
			break
		}
		l.advance()
	}
}

// scanAccountOrCurrency scans an account name or currency starting with a
// capital letter or a Unicode character. Accounts contain colons
// (Assets:Bank:Checking), currencies don't (USD, VBMPX_2).
func (l *Lexer) scanAccountOrCurrency(start, line, col int) Token {
	hasColon := false

	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		// UTF-8 continuation bytes (0x80-0xBF) and start bytes (0xC0-0xFF) are accepted
		ok := isLetter(ch) || isDigit(ch) || ch >= 0x80 ||
			ch == ':' || ch == '-' || ch == '_' || ch == '.' || ch == '\''
		if !ok {
			break
		}
		if ch == ':' {
			hasColon = true
		}
		l.advance()
	}

	if hasColon {
		return Token{ACCOUNT, start, l.pos, line, col}
	}

	return Token{CURRENCY, start, l.pos, line, col}
}

// scanKeywordOrIdent scans a keyword or identifier starting with a
// lowercase letter. A lowercase word directly followed by ':' and a letter
// or digit is scanned as an account so that malformed account names reach
// validation instead of failing the parse.
func (l *Lexer) scanKeywordOrIdent(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if !isLetter(ch) && !isDigit(ch) && ch != '_' && ch != '-' {
			break
		}
		l.advance()
	}

	if l.pos+1 < len(l.source) && l.source[l.pos] == ':' {
		next := l.source[l.pos+1]
		if isLetter(next) || isDigit(next) || next >= 0x80 {
			return l.scanAccountOrCurrency(start, line, col)
		}
	}

	if typ, ok := keywords[string(l.source[start:l.pos])]; ok {
		return Token{typ, start, l.pos, line, col}
	}

	return Token{IDENT, start, l.pos, line, col}
}

// skipWhitespace skips whitespace and updates line/column tracking.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			break
		}
		l.advance()
	}
}

// skipLine skips to the start of the next line.
func (l *Lexer) skipLine() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
	if l.pos < len(l.source) {
		l.advance()
	}
}

// Helper methods

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
		l.lineStarts = append(l.lineStarts, l.pos)
	} else {
		l.column++
	}
	return ch
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}
