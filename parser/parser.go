package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Protocol-Lattice/dreamsearch/ast"
	"github.com/Protocol-Lattice/dreamsearch/lexer"
	"github.com/Protocol-Lattice/dreamsearch/token"
)

// MaxDepth bounds the nesting of groups, including groups used as filter
// values.
const MaxDepth = 32

var (
	isoDatePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d{1,9})?)?(Z|[+-]\d{2}:?\d{2})?)?$`)
	relativeDatePattern = regexp.MustCompile(`^[+-]\d+[smhdw]$`)
	numberPattern       = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)([A-Za-z%]*)$`)
	keyPattern          = regexp.MustCompile(`^[A-Za-z0-9_.\-]+(\[[A-Za-z0-9_.\-]+\])?$`)
)

// operators are the comparators accepted right after the filter colon,
// longest first.
var operators = []string{">=", "<=", ">", "<", "="}

// Parser parses search query source into an ast.ParseResult.
//
// Grammar, informally:
//
//	query   = { WHITESPACE | group | boolean | filter | freetext }
//	group   = "(" query ")"
//	boolean = "AND" | "OR"
//	filter  = [ "!" ] key ":" [ op ] value
//	value   = group | list | STRING | WORD
//	list    = "[" item { "," item } "]"
//
// Every byte of the input is attributed to exactly one element, so
// ParseResult.String reproduces the input.
type Parser struct {
	l        *lexer.Lexer // The lexer to read tokens from
	curToken token.Token  // Current token
	prevEnd  int          // End offset of the last consumed token
	depth    int          // Current group nesting
}

// New creates a new Parser for the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	return p
}

// Parse parses a raw query string.
func Parse(input string) (ast.ParseResult, error) {
	return New(lexer.New(input)).ParseQuery()
}

// nextToken advances the parser to the next token in query position.
func (p *Parser) nextToken() {
	p.prevEnd = p.curToken.End()
	p.curToken = p.l.NextToken()
}

// ParseQuery parses the whole input.
func (p *Parser) ParseQuery() (ast.ParseResult, error) {
	return p.parseSequence(nil)
}

// parseSequence parses elements until EOF, or until the ')' closing open
// when open is non-nil. The closing paren is left as the current token.
func (p *Parser) parseSequence(open *token.Token) (ast.ParseResult, error) {
	result := ast.ParseResult{}
	for {
		switch p.curToken.Type {
		case token.EOF:
			if open != nil {
				return nil, newParseError(open.Pos, ErrUnmatchedParen, "unmatched opening parenthesis")
			}
			return result, nil
		case token.RPAREN:
			if open != nil {
				return result, nil
			}
			return nil, newParseError(p.curToken.Pos, ErrUnmatchedParen, "unmatched closing parenthesis")
		case token.ILLEGAL:
			return nil, p.unterminatedString()
		case token.WHITESPACE:
			result = append(result, ast.Literal(p.curToken.Literal))
			p.nextToken()
		case token.LPAREN:
			group, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			result = append(result, group)
		case token.WORD:
			el, err := p.parseWord()
			if err != nil {
				return nil, err
			}
			result = append(result, el)
		default:
			// Quoted strings and stray colons are free text.
			result = append(result, &ast.FreeText{Value: p.curToken.Literal})
			p.nextToken()
		}
	}
}

// parseGroup parses "(" query ")". The current token is the open paren.
func (p *Parser) parseGroup() (*ast.LogicGroup, error) {
	open := p.curToken
	if p.depth >= MaxDepth {
		return nil, newParseError(open.Pos, ErrTooDeep, "groups nested deeper than %d", MaxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()

	p.nextToken() // skip '('
	body, err := p.parseSequence(&open)
	if err != nil {
		return nil, err
	}
	p.nextToken() // skip ')'
	return &ast.LogicGroup{Body: body, Raw: p.slice(open.Pos)}, nil
}

// parseWord parses a filter, a boolean connective, or free text.
func (p *Parser) parseWord() (ast.Element, error) {
	word := p.curToken
	if p.l.Peek().Type == token.COLON {
		key := strings.TrimPrefix(word.Literal, "!")
		if keyPattern.MatchString(key) {
			return p.parseFilter(word, len(key) != len(word.Literal), key)
		}
	}
	p.nextToken()
	if strings.EqualFold(word.Literal, "AND") || strings.EqualFold(word.Literal, "OR") {
		return &ast.LogicBoolean{Value: word.Literal}, nil
	}
	return &ast.FreeText{Value: word.Literal}, nil
}

// parseFilter parses the remainder of a filter after its key word.
func (p *Parser) parseFilter(word token.Token, negated bool, key string) (*ast.Filter, error) {
	p.nextToken() // move to ':'
	colon := p.curToken
	p.prevEnd = colon.End()
	p.curToken = p.l.NextValueToken()

	filter := &ast.Filter{Negated: negated, Key: ast.Key{Text: key}}

	switch p.curToken.Type {
	case token.EOF, token.WHITESPACE, token.RPAREN:
		return nil, newParseError(colon.End(), ErrMissingValue, "expected value after %q", word.Literal+":")
	case token.ILLEGAL:
		return nil, p.unterminatedString()
	case token.LPAREN:
		group, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		filter.Value = group
	case token.LBRACKET:
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}
		filter.Value = list
	case token.STRING:
		filter.Value = quotedText(p.curToken.Literal)
		p.nextToken()
	case token.WORD:
		op, rest := splitOperator(p.curToken.Literal)
		filter.Operator = op
		if rest != "" {
			filter.Value = classifyValue(rest)
			p.nextToken()
			break
		}
		// A bare operator may only be followed by a quoted string.
		opEnd := p.curToken.End()
		p.prevEnd = opEnd
		p.curToken = p.l.NextValueToken()
		switch p.curToken.Type {
		case token.STRING:
			filter.Value = quotedText(p.curToken.Literal)
			p.nextToken()
		case token.ILLEGAL:
			return nil, p.unterminatedString()
		default:
			return nil, newParseError(opEnd, ErrMissingValue, "expected value after %q", word.Literal+":"+op)
		}
	default:
		return nil, newParseError(p.curToken.Pos, ErrUnexpectedToken, "unexpected %q after %q", p.curToken.Literal, word.Literal+":")
	}

	filter.Raw = p.slice(word.Pos)
	return filter, nil
}

// parseList parses "[" item { "," item } "]". The current token is the
// open bracket. Whitespace belongs to the separator that follows it, and
// whitespace before the closing bracket to the list's trailer.
func (p *Parser) parseList() (ast.Token, error) {
	open := p.curToken
	type entry struct {
		tok       token.Token
		separator string
	}
	var (
		entries    []entry
		separator  = open.Literal
		pending    string
		expectItem = true
	)

	p.curToken = p.l.NextListToken()
	for {
		tok := p.curToken
		switch tok.Type {
		case token.WHITESPACE:
			if expectItem {
				separator += tok.Literal
			} else {
				pending += tok.Literal
			}
		case token.WORD, token.STRING:
			if !expectItem {
				return nil, newParseError(tok.Pos, ErrUnexpectedToken, "expected ',' or ']' in list, got %q", tok.Literal)
			}
			entries = append(entries, entry{tok: tok, separator: separator})
			separator, expectItem = "", false
		case token.COMMA:
			if expectItem {
				return nil, newParseError(tok.Pos, ErrEmptyListItem, "empty list item")
			}
			separator, pending, expectItem = pending+tok.Literal, "", true
		case token.RBRACKET:
			if len(entries) == 0 {
				return nil, newParseError(open.Pos, ErrEmptyList, "empty list")
			}
			if expectItem {
				return nil, newParseError(tok.Pos, ErrEmptyListItem, "empty list item before ']'")
			}
			p.nextToken() // skip ']'
			raw := p.slice(open.Pos)

			numeric := true
			for _, e := range entries {
				if e.tok.Type != token.WORD || !numberPattern.MatchString(e.tok.Literal) {
					numeric = false
					break
				}
			}
			items := make([]ast.ListItem, len(entries))
			for i, e := range entries {
				var value ast.Token
				switch {
				case numeric:
					value = numberValue(e.tok.Literal)
				case e.tok.Type == token.STRING:
					value = quotedText(e.tok.Literal)
				default:
					value = &ast.ValueText{Value: e.tok.Literal}
				}
				items[i] = ast.ListItem{Value: value, Separator: e.separator}
			}
			if numeric {
				return &ast.ValueNumberList{Items: items, Trailer: pending, Raw: raw}, nil
			}
			return &ast.ValueTextList{Items: items, Trailer: pending, Raw: raw}, nil
		case token.ILLEGAL:
			return nil, p.unterminatedString()
		default:
			return nil, newParseError(open.Pos, ErrUnterminatedList, "unterminated list")
		}
		p.prevEnd = tok.End()
		p.curToken = p.l.NextListToken()
	}
}

// slice returns the source text from start to the end of the last
// consumed token.
func (p *Parser) slice(start int) string {
	return p.l.Input()[start:p.prevEnd]
}

func (p *Parser) unterminatedString() error {
	return newParseError(p.curToken.Pos, ErrUnterminatedString, "unterminated string starting at position %d", p.curToken.Pos)
}

// splitOperator separates a leading comparator from a value word.
func splitOperator(word string) (op, rest string) {
	for _, candidate := range operators {
		if strings.HasPrefix(word, candidate) {
			return candidate, word[len(candidate):]
		}
	}
	return "", word
}

// classifyValue maps a bare value word to its token variant.
func classifyValue(text string) ast.Token {
	switch {
	case strings.EqualFold(text, "true") || strings.EqualFold(text, "false"):
		return &ast.ValueBoolean{Value: text}
	case isoDatePattern.MatchString(text):
		return &ast.ValueIso8601Date{Value: text}
	case relativeDatePattern.MatchString(text):
		return &ast.ValueRelativeDate{Value: text}
	case numberPattern.MatchString(text):
		return numberValue(text)
	default:
		return &ast.ValueText{Value: text}
	}
}

func numberValue(text string) *ast.ValueNumber {
	m := numberPattern.FindStringSubmatch(text)
	if m == nil {
		return &ast.ValueNumber{Value: text}
	}
	return &ast.ValueNumber{Value: m[1], Unit: m[2]}
}

func quotedText(literal string) *ast.ValueText {
	value, err := strconv.Unquote(literal)
	if err != nil {
		value = strings.TrimSuffix(strings.TrimPrefix(literal, `"`), `"`)
	}
	return &ast.ValueText{Value: value, Quoted: true, Raw: literal}
}
