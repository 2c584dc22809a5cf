// Package render turns a parsed search query into an ordered tree of
// display units. Rendering is pure: it reads the parse tree, never mutates
// it, and returns freshly allocated units on every call.
package render

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Protocol-Lattice/dreamsearch/ast"
	"github.com/Protocol-Lattice/dreamsearch/parser"
)

// ErrParserPanic wraps a panic raised by an injected parser.
var ErrParserPanic = errors.New("parser panicked")

// Kind tags a unit so a presentation layer can pick its styling.
type Kind string

const (
	KindPlain     Kind = "plain"
	KindFilter    Kind = "filter"
	KindNegation  Kind = "negation"
	KindKey       Kind = "key"
	KindOperator  Kind = "operator"
	KindValue     Kind = "value"
	KindGroup     Kind = "group"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindNumber    Kind = "number"
	KindNumeral   Kind = "numeral"
	KindUnit      Kind = "unit"
	KindList      Kind = "list"
	KindSeparator Kind = "separator"
)

// Composite reports whether units of this kind carry children instead of text.
func (k Kind) Composite() bool {
	switch k {
	case KindFilter, KindValue, KindGroup, KindNumber, KindList:
		return true
	}
	return false
}

// Unit is one display element. Leaves carry Text, composites carry
// Children. Key is the unit's index among its siblings.
type Unit struct {
	Key      int      `json:"key" msgpack:"key" yaml:"key"`
	Kind     Kind     `json:"kind" msgpack:"kind" yaml:"kind"`
	Token    ast.Kind `json:"token,omitempty" msgpack:"token,omitempty" yaml:"token,omitempty"`
	Text     string   `json:"text,omitempty" msgpack:"text,omitempty" yaml:"text,omitempty"`
	Negated  bool     `json:"negated,omitempty" msgpack:"negated,omitempty" yaml:"negated,omitempty"`
	Children []Unit   `json:"children,omitempty" msgpack:"children,omitempty" yaml:"children,omitempty"`
}

// ParseFunc parses a raw query. On error the result is ignored.
type ParseFunc func(raw string) (ast.ParseResult, error)

// Renderer renders raw queries through a parser, falling back to the raw
// text when parsing fails. A Renderer is safe for concurrent use.
type Renderer struct {
	parse ParseFunc
	sink  Sink
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithParser replaces the default search parser.
func WithParser(fn ParseFunc) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.parse = fn
		}
	}
}

// WithSink sets the sink notified of parse failures.
func WithSink(s Sink) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sink = s
		}
	}
}

// New creates a Renderer using parser.Parse and a no-op sink unless
// overridden.
func New(opts ...Option) *Renderer {
	r := &Renderer{parse: parser.Parse, sink: NopSink}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = New()

// RenderQuery renders raw with the default renderer.
func RenderQuery(raw string) []Unit {
	return defaultRenderer.RenderQuery(raw)
}

// RenderQuery parses raw and renders the result. Any parse failure is
// reported to the sink and yields a single plain unit holding raw.
func (r *Renderer) RenderQuery(raw string) []Unit {
	result, err := r.safeParse(raw)
	if err != nil {
		r.sink.ParseFailed(raw, err)
		return Fallback(raw)
	}
	return Render(result)
}

func (r *Renderer) safeParse(raw string) (result ast.ParseResult, err error) {
	defer func() {
		if v := recover(); v != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrParserPanic, v)
		}
	}()
	return r.parse(raw)
}

// Fallback is the unstructured rendering of a query that failed to parse.
func Fallback(raw string) []Unit {
	return []Unit{{Key: 0, Kind: KindPlain, Text: raw}}
}

// Render maps each top-level element of result to one unit, in order.
func Render(result ast.ParseResult) []Unit {
	units := make([]Unit, len(result))
	for i, el := range result {
		units[i] = renderElement(el)
		units[i].Key = i
	}
	return units
}

func renderElement(el ast.Element) Unit {
	switch v := el.(type) {
	case nil:
		return Unit{Kind: KindPlain}
	case ast.Literal:
		return Unit{Kind: KindPlain, Text: string(v)}
	case ast.Token:
		return RenderToken(v)
	default:
		if isNil(el) {
			return Unit{Kind: KindPlain}
		}
		return Unit{Kind: KindPlain, Text: el.Text()}
	}
}

// RenderToken renders a single token. Token kinds without a dedicated rule
// render as their verbatim text. A nil token renders as an empty plain unit.
func RenderToken(tok ast.Token) Unit {
	if isNil(tok) {
		return Unit{Kind: KindPlain}
	}
	switch t := tok.(type) {
	case *ast.Filter:
		return renderFilter(t)
	case *ast.LogicGroup:
		return Unit{Kind: KindGroup, Token: t.Kind(), Children: Render(t.Body)}
	case *ast.LogicBoolean:
		return Unit{Kind: KindBoolean, Token: t.Kind(), Text: t.Value}
	case *ast.ValueIso8601Date:
		return Unit{Kind: KindDate, Token: t.Kind(), Text: t.Value}
	case *ast.ValueNumber:
		return renderNumber(t)
	case *ast.ValueTextList:
		return renderList(t.Kind(), t.Items, t.Trailer)
	case *ast.ValueNumberList:
		return renderList(t.Kind(), t.Items, t.Trailer)
	default:
		return Unit{Kind: KindPlain, Token: tok.Kind(), Text: tok.Text()}
	}
}

func renderFilter(f *ast.Filter) Unit {
	children := make([]Unit, 0, 4)
	if f.Negated {
		children = append(children, Unit{Kind: KindNegation, Text: "!"})
	}
	children = append(children,
		Unit{Kind: KindKey, Text: f.Key.Text, Negated: f.Negated},
		Unit{Kind: KindOperator, Text: ":" + strings.TrimPrefix(f.Operator, ":")},
		Unit{Kind: KindValue, Children: keyed(renderElement(f.Value))},
	)
	return Unit{Kind: KindFilter, Token: f.Kind(), Negated: f.Negated, Children: keyed(children...)}
}

func renderNumber(n *ast.ValueNumber) Unit {
	children := []Unit{{Kind: KindNumeral, Text: n.Value}}
	if n.Unit != "" {
		children = append(children, Unit{Kind: KindUnit, Text: n.Unit})
	}
	return Unit{Kind: KindNumber, Token: n.Kind(), Children: keyed(children...)}
}

// renderList emits a separator then the value per item, and a final
// separator for whitespace before the closing bracket.
func renderList(kind ast.Kind, items []ast.ListItem, trailer string) Unit {
	children := make([]Unit, 0, 2*len(items)+1)
	for _, it := range items {
		children = append(children, Unit{Kind: KindSeparator, Text: it.Separator})
		children = append(children, RenderToken(it.Value))
	}
	if trailer != "" {
		children = append(children, Unit{Kind: KindSeparator, Text: trailer})
	}
	return Unit{Kind: KindList, Token: kind, Children: keyed(children...)}
}

// isNil reports whether el is nil or a nil pointer behind the interface.
func isNil(el ast.Element) bool {
	if el == nil {
		return true
	}
	v := reflect.ValueOf(el)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// keyed numbers units by their position.
func keyed(units ...Unit) []Unit {
	for i := range units {
		units[i].Key = i
	}
	return units
}

// Leaves flattens units depth-first, dropping composites.
func Leaves(units []Unit) []Unit {
	var out []Unit
	for _, u := range units {
		if u.Kind.Composite() {
			out = append(out, Leaves(u.Children)...)
			continue
		}
		out = append(out, u)
	}
	return out
}

// Text concatenates the text of every leaf, without decoration.
func Text(units []Unit) string {
	var sb strings.Builder
	for _, u := range Leaves(units) {
		sb.WriteString(u.Text)
	}
	return sb.String()
}
