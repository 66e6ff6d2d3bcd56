// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/unified-search/pkg/types"
)

// DefaultTimeout bounds a provider call when its registration gives none.
const DefaultTimeout = 5 * time.Second

// DefaultWeight is the score multiplier for providers registered without one.
const DefaultWeight = 1.0

// Registration is the input for one registry entry.
type Registration struct {
	Category  types.Category
	Provider  Provider
	Timeout   time.Duration
	Weight    float64
	RateLimit float64
}

// Descriptor is an immutable registry entry. Validity is fixed when the
// registry is built and never re-checked.
type Descriptor struct {
	Name         string
	Category     types.Category
	Provider     Provider
	Requirements map[string]types.Requirement
	Missing      []string
	Timeout      time.Duration
	Weight       float64

	// Limiter throttles calls when set. It is safe for concurrent use.
	Limiter *rate.Limiter
}

// Valid reports whether every required configuration key was present.
func (d Descriptor) Valid() bool { return len(d.Missing) == 0 }

// ConfigError returns the configuration error for an invalid descriptor.
func (d Descriptor) ConfigError() error {
	if d.Valid() {
		return nil
	}
	return &Error{
		Provider: d.Name,
		Kind:     ErrConfiguration,
		Err:      fmt.Errorf("%s is required for %s", strings.Join(d.Missing, ", "), d.Name),
	}
}

// Wait blocks until the limiter admits one call or ctx is done.
func (d Descriptor) Wait(ctx context.Context) error {
	if d.Limiter == nil {
		return nil
	}
	return d.Limiter.Wait(ctx)
}

// Info reports the descriptor for provider listings.
func (d Descriptor) Info() types.ProviderInfo {
	return types.ProviderInfo{
		Name:         d.Name,
		Category:     d.Category,
		Valid:        d.Valid(),
		Missing:      d.Missing,
		Timeout:      d.Timeout.Seconds(),
		Weight:       d.Weight,
		Capabilities: Capabilities(d.Provider),
		Requirements: d.Requirements,
	}
}

// Registry partitions descriptors by category. It is read-only after
// NewRegistry returns and safe for concurrent use without locking.
type Registry struct {
	order map[types.Category][]string
	index map[types.Category]map[string]Descriptor
}

// NewRegistry builds descriptors from regs, computing each provider's
// validity once through lookup. Within a category, registration order is
// the provider iteration order used for tie-breaking.
func NewRegistry(lookup Lookup, regs ...Registration) (*Registry, error) {
	if lookup == nil {
		lookup = func(string) string { return "" }
	}
	r := &Registry{
		order: make(map[types.Category][]string),
		index: make(map[types.Category]map[string]Descriptor),
	}
	for _, reg := range regs {
		if reg.Provider == nil {
			return nil, fmt.Errorf("registering %s provider: nil provider", reg.Category)
		}
		name := reg.Provider.Name()
		if err := checkCapability(reg.Category, reg.Provider); err != nil {
			return nil, fmt.Errorf("registering %s: %w", name, err)
		}
		if _, dup := r.index[reg.Category][name]; dup {
			return nil, fmt.Errorf("registering %s: duplicate %s provider", name, reg.Category)
		}

		d := Descriptor{
			Name:         name,
			Category:     reg.Category,
			Provider:     reg.Provider,
			Requirements: reg.Provider.Requirements(),
			Timeout:      reg.Timeout,
			Weight:       reg.Weight,
		}
		d.Missing = Missing(d.Requirements, lookup)
		if d.Timeout <= 0 {
			d.Timeout = DefaultTimeout
		}
		if d.Weight <= 0 {
			d.Weight = DefaultWeight
		}
		if reg.RateLimit > 0 {
			d.Limiter = rate.NewLimiter(rate.Limit(reg.RateLimit), 1)
		}

		if r.index[reg.Category] == nil {
			r.index[reg.Category] = make(map[string]Descriptor)
		}
		r.index[reg.Category][name] = d
		r.order[reg.Category] = append(r.order[reg.Category], name)
	}
	return r, nil
}

func checkCapability(cat types.Category, p Provider) error {
	switch cat {
	case types.CategoryWeb, types.CategoryPaper:
		if _, ok := p.(Searcher); !ok {
			return fmt.Errorf("%s providers must implement Search", cat)
		}
	case types.CategoryContent:
		if _, ok := p.(ContentProvider); !ok {
			return fmt.Errorf("content providers must implement Extract, Crawl and Map")
		}
	default:
		return fmt.Errorf("unknown category %q", cat)
	}
	return nil
}

// Get returns the named descriptor in cat.
func (r *Registry) Get(cat types.Category, name string) (Descriptor, bool) {
	d, ok := r.index[cat][name]
	return d, ok
}

// Names lists every provider name in cat in iteration order.
func (r *Registry) Names(cat types.Category) []string {
	return append([]string(nil), r.order[cat]...)
}

// All returns every descriptor in cat in iteration order.
func (r *Registry) All(cat types.Category) []Descriptor {
	out := make([]Descriptor, 0, len(r.order[cat]))
	for _, name := range r.order[cat] {
		out = append(out, r.index[cat][name])
	}
	return out
}

// Valid returns the valid descriptors in cat in iteration order.
func (r *Registry) Valid(cat types.Category) []Descriptor {
	var out []Descriptor
	for _, d := range r.All(cat) {
		if d.Valid() {
			out = append(out, d)
		}
	}
	return out
}

// Resolve maps a request's provider names to descriptors. With no names it
// returns every valid provider in cat. Explicit names may resolve to invalid
// descriptors; the caller reports those as configuration errors. Duplicate
// names are dropped and the result follows iteration order.
func (r *Registry) Resolve(cat types.Category, names []string) ([]Descriptor, error) {
	if len(names) == 0 {
		return r.Valid(cat), nil
	}

	wanted := make(map[string]bool, len(names))
	var unknown []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, ok := r.index[cat][n]; !ok {
			unknown = append(unknown, n)
			continue
		}
		wanted[n] = true
	}
	if len(unknown) > 0 {
		return nil, Validationf("unknown %s provider(s) %s; available: %s",
			cat, strings.Join(unknown, ", "), strings.Join(r.order[cat], ", "))
	}

	var out []Descriptor
	for _, name := range r.order[cat] {
		if wanted[name] {
			out = append(out, r.index[cat][name])
		}
	}
	return out, nil
}

// Require returns the named provider in cat, checking that it is valid and
// exposes the capability T. It never touches the network.
func Require[T Provider](r *Registry, cat types.Category, name string) (T, Descriptor, error) {
	var zero T
	d, ok := r.Get(cat, name)
	if !ok {
		return zero, d, Validationf("unknown %s provider %q; available: %s",
			cat, name, strings.Join(r.order[cat], ", "))
	}
	p, ok := d.Provider.(T)
	if !ok {
		return zero, d, fmt.Errorf("%w: %s does not support this operation", ErrUnsupported, name)
	}
	if err := d.ConfigError(); err != nil {
		return zero, d, err
	}
	return p, d, nil
}

// Infos reports every descriptor across categories, web then paper then content.
func (r *Registry) Infos() []types.ProviderInfo {
	var out []types.ProviderInfo
	for _, cat := range []types.Category{types.CategoryWeb, types.CategoryPaper, types.CategoryContent} {
		for _, d := range r.All(cat) {
			out = append(out, d.Info())
		}
	}
	return out
}
