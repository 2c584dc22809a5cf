package decorate

import (
	"html"

	"github.com/Protocol-Lattice/dreamsearch/render"
)

// ClassPrefix prefixes every CSS class emitted by the HTML policy.
const ClassPrefix = "dq-"

// HTML returns a policy wrapping units in <span class="dq-KIND"> elements.
// Plain text is escaped but not wrapped.
func HTML() Policy { return htmlPolicy{} }

type htmlPolicy struct{}

func (htmlPolicy) Name() string { return "html" }

func (htmlPolicy) Decorate(u render.Unit, _ render.Kind, inner string) string {
	if !u.Kind.Composite() {
		inner = html.EscapeString(inner)
	}
	switch u.Kind {
	case render.KindPlain:
		return inner
	case render.KindGroup:
		inner = span("paren", "(") + inner + span("paren", ")")
	case render.KindList:
		if open := listOpener(u); open != "" {
			inner = span("bracket", open) + inner
		}
		inner += span("bracket", "]")
	}
	class := ClassPrefix + string(u.Kind)
	if u.Kind == render.KindKey && u.Negated {
		class += " " + ClassPrefix + "key-negated"
	}
	return `<span class="` + class + `">` + inner + `</span>`
}

func span(class, text string) string {
	return `<span class="` + ClassPrefix + class + `">` + html.EscapeString(text) + `</span>`
}
