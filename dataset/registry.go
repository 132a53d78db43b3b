package dataset

import (
	"sort"
	"strings"
	"sync"
)

// BostonURL is the public CSV mirror of the 506-row Boston Housing data.
const BostonURL = "https://raw.githubusercontent.com/selva86/datasets/master/BostonHousing.csv"

// Source describes where a named dataset lives and which column is its target.
type Source struct {
	Name        string
	URL         string
	Target      string
	Description string
}

// Registry maps dataset names to sources. Names are case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// DefaultRegistry returns a registry holding the built-in datasets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Source{
		Name:        "boston",
		URL:         BostonURL,
		Target:      "MEDV",
		Description: "Boston Housing, 506 rows, 13 features, median home value in $1000s",
	})
	return r
}

// Register adds or replaces a source.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[strings.ToLower(s.Name)] = s
}

// Lookup returns the source registered under name.
func (r *Registry) Lookup(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[strings.ToLower(name)]
	return s, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
