package parser

// TokenType represents the type of token scanned from the input.
type TokenType uint8

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Keywords - directive types
	TXN       // txn
	BALANCE   // balance
	OPEN      // open
	CLOSE     // close
	COMMODITY // commodity
	PAD       // pad
	NOTE      // note
	DOCUMENT  // document
	PRICE     // price
	EVENT     // event
	QUERY     // query
	CUSTOM    // custom

	// Keywords - undated
	OPTION      // option
	INCLUDE     // include
	INCLUDEONCE // include-once
	PLUGIN      // plugin
	PUSHTAG     // pushtag
	POPTAG      // poptag
	PUSHMETA    // pushmeta
	POPMETA     // popmeta
	PUSHLINK    // pushlink
	POPLINK     // poplink

	// Literals
	DATE     // YYYY-MM-DD, month and day may be single digits
	ACCOUNT  // Assets:Bank:Checking
	STRING   // "quoted string"
	NUMBER   // 123.45, -123,45
	CURRENCY // USD, HOOL, VBMPX_2
	IDENT    // lowercase word that is not a keyword
	COMMENT  // ; comment text

	// Special literals
	TAG  // #tag
	LINK // ^link

	// Symbols
	FLAG    // * ! & ? %
	COLON   // :
	COMMA   // ,
	PIPE    // |
	TILDE   // ~
	AT      // @
	ATAT    // @@
	LBRACE  // {
	RBRACE  // }
	LDBRACE // {{
	RDBRACE // }}
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	TXN:       "txn",
	BALANCE:   "balance",
	OPEN:      "open",
	CLOSE:     "close",
	COMMODITY: "commodity",
	PAD:       "pad",
	NOTE:      "note",
	DOCUMENT:  "document",
	PRICE:     "price",
	EVENT:     "event",
	QUERY:     "query",
	CUSTOM:    "custom",

	OPTION:      "option",
	INCLUDE:     "include",
	INCLUDEONCE: "include-once",
	PLUGIN:      "plugin",
	PUSHTAG:     "pushtag",
	POPTAG:      "poptag",
	PUSHMETA:    "pushmeta",
	POPMETA:     "popmeta",
	PUSHLINK:    "pushlink",
	POPLINK:     "poplink",

	DATE:     "DATE",
	ACCOUNT:  "ACCOUNT",
	STRING:   "STRING",
	NUMBER:   "NUMBER",
	CURRENCY: "CURRENCY",
	IDENT:    "IDENT",
	COMMENT:  "COMMENT",

	TAG:  "TAG",
	LINK: "LINK",

	FLAG:    "FLAG",
	COLON:   ":",
	COMMA:   ",",
	PIPE:    "|",
	TILDE:   "~",
	AT:      "@",
	ATAT:    "@@",
	LBRACE:  "{",
	RBRACE:  "}",
	LDBRACE: "{{",
	RDBRACE: "}}",
}

var keywords = map[string]TokenType{
	"txn":          TXN,
	"balance":      BALANCE,
	"open":         OPEN,
	"close":        CLOSE,
	"commodity":    COMMODITY,
	"pad":          PAD,
	"note":         NOTE,
	"document":     DOCUMENT,
	"price":        PRICE,
	"event":        EVENT,
	"query":        QUERY,
	"custom":       CUSTOM,
	"option":       OPTION,
	"include":      INCLUDE,
	"include-once": INCLUDEONCE,
	"plugin":       PLUGIN,
	"pushtag":      PUSHTAG,
	"poptag":       POPTAG,
	"pushmeta":     PUSHMETA,
	"popmeta":      POPMETA,
	"pushlink":     PUSHLINK,
	"poplink":      POPLINK,
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword reports whether t is one of the reserved lowercase words.
func (t TokenType) IsKeyword() bool {
	return t >= TXN && t <= POPLINK
}

// Token represents a lexical token with zero-copy semantics.
// Instead of storing the token text as a string (which would allocate),
// we store byte offsets into the original source buffer.
type Token struct {
	Type   TokenType
	Start  int // Byte offset into source buffer
	End    int // End offset (exclusive)
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// String materializes the token text from the source buffer.
func (t Token) String(source []byte) string {
	if t.Start >= len(source) || t.End > len(source) || t.Start > t.End {
		return ""
	}
	return string(source[t.Start:t.End])
}

// Bytes returns a zero-copy view of the token text.
func (t Token) Bytes(source []byte) []byte {
	if t.Start >= len(source) || t.End > len(source) || t.Start > t.End {
		return nil
	}
	return source[t.Start:t.End]
}

// Len returns the length of the token in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}
