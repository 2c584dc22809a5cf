package token

// TokenType represents the type of a lexical token in a search query.
type TokenType string

const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL" // Unterminated or otherwise unusable input
	EOF     TokenType = "EOF"     // End of input

	// Text runs
	WHITESPACE TokenType = "WHITESPACE" // Run of spaces, tabs and newlines
	WORD       TokenType = "WORD"       // Bareword: keys, values, free text
	STRING     TokenType = "STRING"     // Quoted string, literal keeps the quotes

	// Symbols
	COLON    TokenType = ":" // Filter delimiter
	COMMA    TokenType = "," // List item delimiter (value mode only)
	LPAREN   TokenType = "(" // Group open
	RPAREN   TokenType = ")" // Group close
	LBRACKET TokenType = "[" // List open (value mode only)
	RBRACKET TokenType = "]" // List close (value mode only)
)

// Token represents a single token in the search source.
type Token struct {
	Type    TokenType // The type of the token
	Literal string    // The verbatim source text of the token
	Pos     int       // Byte offset of the token in the input
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos + len(t.Literal)
}
