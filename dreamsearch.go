// Package dreamsearch parses structured search queries and renders them as
// ordered, typed display units. It includes lexing, parsing, rendering,
// decoration and HTTP handler support.
package dreamsearch

import (
	"github.com/Protocol-Lattice/dreamsearch/ast"
	"github.com/Protocol-Lattice/dreamsearch/decorate"
	"github.com/Protocol-Lattice/dreamsearch/handler"
	"github.com/Protocol-Lattice/dreamsearch/lexer"
	"github.com/Protocol-Lattice/dreamsearch/parser"
	"github.com/Protocol-Lattice/dreamsearch/registry"
	"github.com/Protocol-Lattice/dreamsearch/render"
	"github.com/Protocol-Lattice/dreamsearch/token"
)

// ===========================
// Re-exported Types
// ===========================

// Token types
type (
	TokenType = token.TokenType
	Token     = token.Token
)

// Token constants
const (
	ILLEGAL    = token.ILLEGAL
	EOF        = token.EOF
	WHITESPACE = token.WHITESPACE
	WORD       = token.WORD
	STRING     = token.STRING
	COLON      = token.COLON
	COMMA      = token.COMMA
	LPAREN     = token.LPAREN
	RPAREN     = token.RPAREN
	LBRACKET   = token.LBRACKET
	RBRACKET   = token.RBRACKET
)

// AST types
type (
	Element           = ast.Element
	Node              = ast.Token
	Literal           = ast.Literal
	ParseResult       = ast.ParseResult
	Filter            = ast.Filter
	Key               = ast.Key
	LogicGroup        = ast.LogicGroup
	LogicBoolean      = ast.LogicBoolean
	FreeText          = ast.FreeText
	ValueText         = ast.ValueText
	ValueBoolean      = ast.ValueBoolean
	ValueNumber       = ast.ValueNumber
	ValueIso8601Date  = ast.ValueIso8601Date
	ValueRelativeDate = ast.ValueRelativeDate
	ListItem          = ast.ListItem
	ValueTextList     = ast.ValueTextList
	ValueNumberList   = ast.ValueNumberList
)

// Render types
type (
	Unit     = render.Unit
	UnitKind = render.Kind
	Renderer = render.Renderer
	Sink     = render.Sink
	Policy   = decorate.Policy
)

// Lexer type
type Lexer = lexer.Lexer

// Parser type
type Parser = parser.Parser

// ParseError is returned by Parse for malformed queries.
type ParseError = parser.ParseError

// ===========================
// Convenience Functions
// ===========================

// NewLexer creates a new lexer for the given query source.
func NewLexer(input string) *Lexer {
	return lexer.New(input)
}

// NewParser creates a new parser for the given lexer.
func NewParser(l *Lexer) *Parser {
	return parser.New(l)
}

// Parse parses a raw query.
func Parse(input string) (ParseResult, error) {
	return parser.Parse(input)
}

// NewRenderer creates a renderer; see render.New for options.
func NewRenderer(opts ...render.Option) *Renderer {
	return render.New(opts...)
}

// RenderQuery parses and renders raw, falling back to the raw text when it
// does not parse.
func RenderQuery(raw string) []Unit {
	return render.RenderQuery(raw)
}

// Format renders raw and decorates it with the named style.
func Format(raw, style string) (string, error) {
	p, err := registry.Lookup(style)
	if err != nil {
		return "", err
	}
	return decorate.Apply(p, render.RenderQuery(raw)), nil
}

// ===========================
// Global Registry Functions
// ===========================

// RegisterPolicy registers a decoration policy in the global registry.
func RegisterPolicy(p Policy) {
	registry.Register(p)
}

// ===========================
// HTTP Handlers
// ===========================

// RenderHandler serves /render with the default handler.
var RenderHandler = handler.Render

// LiveHandler serves the /live websocket with the default handler.
var LiveHandler = handler.Live
