package lexer

import (
	"github.com/Protocol-Lattice/dreamsearch/token"
)

// mode selects which characters are significant to the lexer. The search
// grammar is context sensitive: a colon delimits a filter key but is part
// of a datetime value, and brackets only open lists in value position.
type mode int

const (
	modeQuery mode = iota // keys, booleans, free text
	modeValue             // right-hand side of a filter
	modeList              // items inside [ ... ]
)

// Lexer tokenizes search query source. Every byte of the input ends up in
// exactly one token, so concatenating literals reproduces the input.
type Lexer struct {
	input        string // The input string
	position     int    // Current position in input (points to current char)
	readPosition int    // Next reading position (after current char)
	ch           byte   // Current char under examination
}

// New creates a new Lexer for the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar advances the lexer to the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// atEOF reports whether the whole input has been consumed.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// Pos returns the byte offset of the next unread character.
func (l *Lexer) Pos() int {
	if l.position > len(l.input) {
		return len(l.input)
	}
	return l.position
}

// Input returns the source being tokenized.
func (l *Lexer) Input() string {
	return l.input
}

// NextToken returns the next token in query position.
func (l *Lexer) NextToken() token.Token {
	return l.next(modeQuery)
}

// NextValueToken returns the next token in filter value position, where
// colons belong to the value and '[' opens a list.
func (l *Lexer) NextValueToken() token.Token {
	return l.next(modeValue)
}

// NextListToken returns the next token inside a list value.
func (l *Lexer) NextListToken() token.Token {
	return l.next(modeList)
}

// Peek returns the next query-position token without consuming it.
func (l *Lexer) Peek() token.Token {
	position, readPosition, ch := l.position, l.readPosition, l.ch
	tok := l.NextToken()
	l.position, l.readPosition, l.ch = position, readPosition, ch
	return tok
}

func (l *Lexer) next(m mode) token.Token {
	start := l.position
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: len(l.input)}
	}

	if isWhitespace(l.ch) {
		for !l.atEOF() && isWhitespace(l.ch) {
			l.readChar()
		}
		return l.emit(token.WHITESPACE, start)
	}

	if l.ch == '"' {
		return l.readString()
	}

	var tt token.TokenType
	switch m {
	case modeQuery:
		switch l.ch {
		case ':':
			tt = token.COLON
		case '(':
			tt = token.LPAREN
		case ')':
			tt = token.RPAREN
		}
	case modeValue:
		switch l.ch {
		case '(':
			tt = token.LPAREN
		case ')':
			tt = token.RPAREN
		case '[':
			tt = token.LBRACKET
		}
	case modeList:
		switch l.ch {
		case ',':
			tt = token.COMMA
		case ']':
			tt = token.RBRACKET
		}
	}
	if tt != "" {
		l.readChar()
		return l.emit(tt, start)
	}

	for !l.atEOF() && !isWhitespace(l.ch) && l.ch != '"' && !terminates(m, l.ch) {
		l.readChar()
	}
	return l.emit(token.WORD, start)
}

// readString reads a double quoted string. The literal keeps the quotes and
// escapes verbatim; an unterminated string yields ILLEGAL.
func (l *Lexer) readString() token.Token {
	start := l.position
	l.readChar() // skip opening quote
	for !l.atEOF() && l.ch != '"' {
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				break
			}
		}
		l.readChar()
	}
	if l.atEOF() {
		return l.emit(token.ILLEGAL, start)
	}
	l.readChar() // skip closing quote
	return l.emit(token.STRING, start)
}

func (l *Lexer) emit(tt token.TokenType, start int) token.Token {
	return token.Token{Type: tt, Literal: l.input[start:l.Pos()], Pos: start}
}

// terminates reports whether ch ends a bareword in the given mode.
func terminates(m mode, ch byte) bool {
	switch m {
	case modeQuery:
		return ch == ':' || ch == '(' || ch == ')'
	case modeValue:
		return ch == '(' || ch == ')'
	case modeList:
		return ch == ',' || ch == ']'
	}
	return false
}

// isWhitespace checks if a byte is a whitespace character.
func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
