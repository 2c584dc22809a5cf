// Package ast defines the parsed form of a search query: an ordered
// ParseResult of literal text chunks and tokens, where tokens may nest
// further results (groups) and values (filters, lists).
//
// Tokens are immutable once the parser returns them. Consumers dispatching
// over the variants below must keep a default arm that falls back to
// Text(), so that token kinds added to the parser later still render.
// Text on a nil token pointer returns the empty string.
package ast

import (
	"strconv"
	"strings"
)

// Kind names a token variant.
type Kind string

const (
	KindFilter            Kind = "filter"
	KindLogicGroup        Kind = "logicGroup"
	KindLogicBoolean      Kind = "logicBoolean"
	KindFreeText          Kind = "freeText"
	KindValueText         Kind = "valueText"
	KindValueBoolean      Kind = "valueBoolean"
	KindValueNumber       Kind = "valueNumber"
	KindValueIso8601Date  Kind = "valueIso8601Date"
	KindValueRelativeDate Kind = "valueRelativeDate"
	KindValueTextList     Kind = "valueTextList"
	KindValueNumberList   Kind = "valueNumberList"
)

// Element is one entry of a ParseResult: a Literal or a Token.
type Element interface {
	// Text returns the verbatim source text of the element.
	Text() string
}

// Token is a structured node of a parsed query.
type Token interface {
	Element
	Kind() Kind
}

// Literal is unparsed filler text, typically whitespace.
type Literal string

// Text returns the literal itself.
func (l Literal) Text() string { return string(l) }

// ParseResult is the ordered output of the parser.
type ParseResult []Element

// String concatenates the source text of every element in order.
func (r ParseResult) String() string {
	var sb strings.Builder
	for _, el := range r {
		if el != nil {
			sb.WriteString(el.Text())
		}
	}
	return sb.String()
}

// Key is the left-hand side of a filter.
type Key struct {
	Text string // "level", or "tags[browser]" for explicit tags
}

// Tag returns the inner name of an explicit tag key such as tags[browser].
func (k Key) Tag() (string, bool) {
	open := strings.IndexByte(k.Text, '[')
	if open <= 0 || !strings.HasSuffix(k.Text, "]") {
		return "", false
	}
	return k.Text[open+1 : len(k.Text)-1], true
}

// Filter is a key:value restriction, e.g. !browser:>=90.
type Filter struct {
	Negated  bool
	Key      Key
	Operator string  // comparator without the ':' delimiter: "", ">", "<", ">=", "<=", "="
	Value    Element // Token or Literal
	Raw      string
}

func (f *Filter) Kind() Kind { return KindFilter }

func (f *Filter) Text() string {
	if f == nil {
		return ""
	}
	if f.Raw != "" {
		return f.Raw
	}
	var sb strings.Builder
	if f.Negated {
		sb.WriteByte('!')
	}
	sb.WriteString(f.Key.Text)
	sb.WriteByte(':')
	sb.WriteString(f.Operator)
	if f.Value != nil {
		sb.WriteString(f.Value.Text())
	}
	return sb.String()
}

// LogicGroup is a parenthesized sub-expression.
type LogicGroup struct {
	Body ParseResult
	Raw  string
}

func (g *LogicGroup) Kind() Kind { return KindLogicGroup }

func (g *LogicGroup) Text() string {
	if g == nil {
		return ""
	}
	if g.Raw != "" {
		return g.Raw
	}
	return "(" + g.Body.String() + ")"
}

// LogicBoolean is a connective such as AND or OR, as typed.
type LogicBoolean struct {
	Value string
}

func (b *LogicBoolean) Kind() Kind { return KindLogicBoolean }

func (b *LogicBoolean) Text() string {
	if b == nil {
		return ""
	}
	return b.Value
}

// FreeText is a search term outside any filter.
type FreeText struct {
	Value string
}

func (t *FreeText) Kind() Kind { return KindFreeText }

func (t *FreeText) Text() string {
	if t == nil {
		return ""
	}
	return t.Value
}

// ValueText is a textual filter value. Value holds the unquoted content.
type ValueText struct {
	Value  string
	Quoted bool
	Raw    string
}

func (v *ValueText) Kind() Kind { return KindValueText }

func (v *ValueText) Text() string {
	if v == nil {
		return ""
	}
	if v.Raw != "" {
		return v.Raw
	}
	if v.Quoted {
		return strconv.Quote(v.Value)
	}
	return v.Value
}

// ValueBoolean is a true/false filter value, as typed.
type ValueBoolean struct {
	Value string
}

func (v *ValueBoolean) Kind() Kind { return KindValueBoolean }

func (v *ValueBoolean) Text() string {
	if v == nil {
		return ""
	}
	return v.Value
}

// ValueNumber is a numeric literal with an optional unit suffix (ms, kb, %).
type ValueNumber struct {
	Value string
	Unit  string
}

func (v *ValueNumber) Kind() Kind { return KindValueNumber }

func (v *ValueNumber) Text() string {
	if v == nil {
		return ""
	}
	return v.Value + v.Unit
}

// ValueIso8601Date is a date or datetime literal, kept verbatim.
type ValueIso8601Date struct {
	Value string
}

func (v *ValueIso8601Date) Kind() Kind { return KindValueIso8601Date }

func (v *ValueIso8601Date) Text() string {
	if v == nil {
		return ""
	}
	return v.Value
}

// ValueRelativeDate is an offset from now such as -24h or +7d.
type ValueRelativeDate struct {
	Value string
}

func (v *ValueRelativeDate) Kind() Kind { return KindValueRelativeDate }

func (v *ValueRelativeDate) Text() string {
	if v == nil {
		return ""
	}
	return v.Value
}

// ListItem is one entry of a list value. Separator is the source text
// preceding the value: the opening bracket for the first item, the comma
// (with surrounding whitespace) for the rest.
type ListItem struct {
	Value     Token
	Separator string
}

// ValueTextList is a list of textual values, e.g. [chrome, "mobile safari"].
// Trailer holds the whitespace between the last item and the closing
// bracket.
type ValueTextList struct {
	Items   []ListItem
	Trailer string
	Raw     string
}

func (l *ValueTextList) Kind() Kind { return KindValueTextList }

func (l *ValueTextList) Text() string {
	if l == nil {
		return ""
	}
	if l.Raw != "" {
		return l.Raw
	}
	return listText(l.Items, l.Trailer)
}

// ValueNumberList is a list of numeric values, e.g. [1, 2, 3].
type ValueNumberList struct {
	Items   []ListItem
	Trailer string
	Raw     string
}

func (l *ValueNumberList) Kind() Kind { return KindValueNumberList }

func (l *ValueNumberList) Text() string {
	if l == nil {
		return ""
	}
	if l.Raw != "" {
		return l.Raw
	}
	return listText(l.Items, l.Trailer)
}

func listText(items []ListItem, trailer string) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(it.Separator)
		if it.Value != nil {
			sb.WriteString(it.Value.Text())
		}
	}
	sb.WriteString(trailer)
	sb.WriteByte(']')
	return sb.String()
}
