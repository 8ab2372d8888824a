package parser

import (
	"net/url"
	"strings"
	"sync"
)

// MatchFunc reports whether a source handles the given page address.
type MatchFunc func(u *url.URL) bool

type registration struct {
	match  MatchFunc
	source ContentSource
}

// Registry maps page addresses to content sources. Sources are registered per
// host and tried in registration order; a page no source claims is handled
// by Fallback.
type Registry struct {
	mu       sync.RWMutex
	hosts    map[string][]registration
	fallback ContentSource
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{hosts: make(map[string][]registration)}
}

// Register adds a source for host. A nil match claims every page of the host.
func (r *Registry) Register(host string, match MatchFunc, source ContentSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	host = canonicalHost(host)
	r.hosts[host] = append(r.hosts[host], registration{match: match, source: source})
}

// SetDefault replaces Fallback as the source for unclaimed pages.
func (r *Registry) SetDefault(source ContentSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = source
}

// Lookup returns the source for pageURL.
func (r *Registry) Lookup(pageURL string) ContentSource {
	if r == nil {
		return Fallback{}
	}
	u, err := url.Parse(NormalizeURL(pageURL))
	if err != nil {
		return Fallback{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.hosts[canonicalHost(u.Hostname())] {
		if reg.match == nil || reg.match(u) {
			return reg.source
		}
	}
	if r.fallback != nil {
		return r.fallback
	}
	return Fallback{}
}

// NormalizeURL canonicalizes pageURL the way its source prefers.
func (r *Registry) NormalizeURL(pageURL string) string {
	if n, ok := r.Lookup(pageURL).(URLNormalizer); ok {
		return n.NormalizeURL(pageURL)
	}
	return NormalizeURL(pageURL)
}

// Sources returns the names of the registered sources, by host.
func (r *Registry) Sources() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.hosts))
	for host, regs := range r.hosts {
		for _, reg := range regs {
			out[host] = append(out[host], reg.source.Name())
		}
	}
	return out
}

func canonicalHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
