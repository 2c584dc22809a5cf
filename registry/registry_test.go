package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Protocol-Lattice/dreamsearch/decorate"
	"github.com/Protocol-Lattice/dreamsearch/render"
)

type upperPolicy struct{ name string }

func (p upperPolicy) Name() string { return p.name }
func (p upperPolicy) Decorate(_ render.Unit, _ render.Kind, inner string) string {
	return "<" + inner + ">"
}

func TestNew_Builtins(t *testing.T) {
	r := New()
	names := r.Names()
	want := []string{"ansi", "html", "plain"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for _, name := range want {
		p, err := r.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, p.Name())
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := New().Lookup("neon"); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestRegister_Replaces(t *testing.T) {
	r := New()
	r.Register(upperPolicy{name: "plain"})
	p, err := r.Lookup("plain")
	if err != nil {
		t.Fatal(err)
	}
	got := decorate.Apply(p, render.RenderQuery("a"))
	if got != "<a>" {
		t.Errorf("replaced policy output = %q, want %q", got, "<a>")
	}
	if len(r.Names()) != 3 {
		t.Errorf("replacing must not add a name, got %v", r.Names())
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(upperPolicy{name: fmt.Sprintf("p%d", i%4)})
			if _, err := r.Lookup("plain"); err != nil {
				t.Errorf("Lookup(plain) error: %v", err)
			}
			_ = r.Names()
		}(i)
	}
	wg.Wait()
	if len(r.Names()) != 7 {
		t.Errorf("Names() = %v, want 7 entries", r.Names())
	}
}

func TestGlobalRegistry(t *testing.T) {
	if GetGlobalRegistry() == nil {
		t.Fatal("global registry is nil")
	}
	Register(upperPolicy{name: "test-global"})
	if _, err := Lookup("test-global"); err != nil {
		t.Fatalf("Lookup after Register: %v", err)
	}
	found := false
	for _, n := range Names() {
		if n == "test-global" {
			found = true
		}
	}
	if !found {
		t.Error("Names() should include test-global")
	}
}
