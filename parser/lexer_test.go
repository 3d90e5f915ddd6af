package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func scanTypes(input string) []TokenType {
	tokens := NewLexer([]byte(input), "test").ScanAll()
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"flags", " * ! & ? %", []TokenType{FLAG, FLAG, FLAG, FLAG, FLAG, EOF}},
		{"colon and comma", " : ,", []TokenType{COLON, COMMA, EOF}},
		{"at symbols", "@ @@", []TokenType{AT, ATAT, EOF}},
		{"braces", "{ } {{ }}", []TokenType{LBRACE, RBRACE, LDBRACE, RDBRACE, EOF}},
		{"pipe and tilde", "| ~", []TokenType{PIPE, TILDE, EOF}},
		{"illegal", "$", []TokenType{ILLEGAL, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanTypes(tt.input))
		})
	}
}

func TestLexerDatesBeforeNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"2014-05-01", DATE},
		{"2024-1-5", DATE},
		{"2024-01-5", DATE},
		{"2024-001-01", NUMBER},
		{"123", NUMBER},
		{"-123.45", NUMBER},
		{"+7", NUMBER},
		{"1,5", NUMBER},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := NewLexer([]byte(tt.input), "test").ScanAll()
			assert.Equal(t, tt.want, tokens[0].Type)
		})
	}
}

func TestLexerNumberKeepsSeparators(t *testing.T) {
	src := []byte("1,234.56 USD")
	tokens := NewLexer(src, "test").ScanAll()

	assert.Equal(t, NUMBER, tokens[0].Type)
	assert.Equal(t, "1,234.56", tokens[0].String(src))
	assert.Equal(t, CURRENCY, tokens[1].Type)
}

func TestLexerAccountsAndCurrencies(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"Assets:US:BofA:Checking", ACCOUNT},
		{"Expenses:Café", ACCOUNT},
		{"USD", CURRENCY},
		{"VBMPX_2", CURRENCY},
		{"assets:lowercase", ACCOUNT},
		{"open", OPEN},
		{"include-once", INCLUDEONCE},
		{"custom", CUSTOM},
		{"location", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := NewLexer([]byte(tt.input), "test").ScanAll()
			assert.Equal(t, tt.want, tokens[0].Type)
			assert.Equal(t, len(tt.input), tokens[0].Len())
		})
	}
}

func TestLexerTagsAndLinks(t *testing.T) {
	src := []byte(`"x" #trip-2020 ^invoice.12 #`)
	tokens := NewLexer(src, "test").ScanAll()

	assert.Equal(t, []TokenType{STRING, TAG, LINK, TAG, EOF}, scanTypes(string(src)))
	assert.Equal(t, "#trip-2020", tokens[1].String(src))
	assert.Equal(t, "^invoice.12", tokens[2].String(src))
	assert.Equal(t, "#", tokens[3].String(src))
}

func TestLexerStrings(t *testing.T) {
	t.Run("escaped quote", func(t *testing.T) {
		src := []byte(`"say \"hi\""`)
		tokens := NewLexer(src, "test").ScanAll()
		assert.Equal(t, STRING, tokens[0].Type)
		assert.Equal(t, len(src), tokens[0].End)
	})

	t.Run("multi-line", func(t *testing.T) {
		src := []byte("\"first\nsecond\" USD")
		tokens := NewLexer(src, "test").ScanAll()
		assert.Equal(t, STRING, tokens[0].Type)
		assert.Equal(t, 1, tokens[0].Line)
		assert.Equal(t, CURRENCY, tokens[1].Type)
		assert.Equal(t, 2, tokens[1].Line)
	})

	t.Run("unterminated", func(t *testing.T) {
		assert.Equal(t, []TokenType{ILLEGAL, EOF}, scanTypes(`"never closed`))
	})
}

func TestLexerComments(t *testing.T) {
	src := []byte("USD ; trailing note\r\n; whole line\n")
	tokens := NewLexer(src, "test").ScanAll()

	assert.Equal(t, []TokenType{CURRENCY, COMMENT, COMMENT, EOF}, scanTypes(string(src)))
	assert.Equal(t, "; trailing note", tokens[1].String(src))
	assert.Equal(t, 2, tokens[2].Line)
	assert.Equal(t, 1, tokens[2].Column)
}

func TestLexerSkipsOrgHeadings(t *testing.T) {
	src := "* Accounts\n# Section\n2014-01-01 open Assets:Cash\n"
	assert.Equal(t, []TokenType{DATE, OPEN, ACCOUNT, EOF}, scanTypes(src))
}

func TestLexerPositions(t *testing.T) {
	src := []byte("2014-01-01 open Assets:Cash\n  meta: 1\n")
	lexer := NewLexer(src, "test")
	tokens := lexer.ScanAll()

	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Column)
	assert.Equal(t, 12, tokens[1].Column)

	meta := tokens[3]
	assert.Equal(t, IDENT, meta.Type)
	assert.Equal(t, 2, meta.Line)
	assert.Equal(t, 3, meta.Column)

	assert.Equal(t, []int{0, 28, 38}, lexer.LineStarts())
}
