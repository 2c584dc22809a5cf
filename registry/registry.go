package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Protocol-Lattice/dreamsearch/decorate"
)

// Registry holds decoration policies by name.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]decorate.Policy
}

// New returns a registry preloaded with the plain, ansi and html policies.
func New() *Registry {
	r := &Registry{policies: make(map[string]decorate.Policy)}
	r.Register(decorate.Plain())
	r.Register(decorate.ANSI(decorate.DefaultTheme(nil)))
	r.Register(decorate.HTML())
	return r
}

// Register adds p under p.Name(), replacing any policy of the same name.
func (r *Registry) Register(p decorate.Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name()] = p
}

// Lookup returns the policy registered under name.
func (r *Registry) Lookup(name string) (decorate.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown style %q", name)
	}
	return p, nil
}

// Names returns the registered policy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry instance shared by the CLI and the default handler.
var globalRegistry = New()

// Register registers a policy in the global registry.
func Register(p decorate.Policy) {
	globalRegistry.Register(p)
}

// Lookup finds a policy in the global registry.
func Lookup(name string) (decorate.Policy, error) {
	return globalRegistry.Lookup(name)
}

// Names lists the policies in the global registry.
func Names() []string {
	return globalRegistry.Names()
}

// GetGlobalRegistry returns the global registry instance.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}
