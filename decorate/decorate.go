// Package decorate turns rendered units into presentable text. The
// structure comes from render; a Policy only chooses how each unit looks.
package decorate

import (
	"strings"

	"github.com/Protocol-Lattice/dreamsearch/render"
)

// Policy maps units to their presentation.
//
// Decorate is called bottom-up: inner holds the unit's own text for
// leaves, or the already decorated children for composites. parent is the
// kind of the enclosing unit, empty at the top level.
type Policy interface {
	Name() string
	Decorate(u render.Unit, parent render.Kind, inner string) string
}

// Apply decorates units in order and concatenates the result.
func Apply(p Policy, units []render.Unit) string {
	var sb strings.Builder
	for _, u := range units {
		sb.WriteString(apply(p, u, ""))
	}
	return sb.String()
}

func apply(p Policy, u render.Unit, parent render.Kind) string {
	inner := u.Text
	if u.Kind.Composite() {
		var sb strings.Builder
		for _, c := range u.Children {
			sb.WriteString(apply(p, c, u.Kind))
		}
		inner = sb.String()
	}
	return p.Decorate(u, parent, inner)
}

// listOpener returns the opening bracket a list unit still needs. The
// first separator of a parsed list already carries it.
func listOpener(u render.Unit) string {
	if len(u.Children) > 0 && u.Children[0].Kind == render.KindSeparator &&
		strings.HasPrefix(u.Children[0].Text, "[") {
		return ""
	}
	return "["
}

// Plain returns the policy that emits undecorated source text, adding the
// group and list delimiters that units leave to presentation.
func Plain() Policy { return plainPolicy{} }

type plainPolicy struct{}

func (plainPolicy) Name() string { return "plain" }

func (plainPolicy) Decorate(u render.Unit, _ render.Kind, inner string) string {
	switch u.Kind {
	case render.KindGroup:
		return "(" + inner + ")"
	case render.KindList:
		return listOpener(u) + inner + "]"
	}
	return inner
}
