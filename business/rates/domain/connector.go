// Package domain contains the core domain types for the rates context.
package domain

import (
	"sort"

	"github.com/fd1az/funding-engine/internal/apperror"
)

// Connector holds the metadata needed to reach one exchange. The
// credential fields are placeholders until a live feed is wired in.
type Connector struct {
	Name      string
	BaseURL   string
	APIKey    string
	SecretKey string
	MakerFee  float64
	TakerFee  float64
}

// Registry is an immutable exchange-identifier to connector mapping.
// It is built once at startup and shared by read-only reference across
// all connection handlers.
type Registry struct {
	connectors map[string]Connector
}

// NewRegistry builds a Registry from the given connectors, keyed by name.
func NewRegistry(connectors []Connector) *Registry {
	m := make(map[string]Connector, len(connectors))
	for _, c := range connectors {
		m[c.Name] = c
	}
	return &Registry{connectors: m}
}

// Lookup resolves an exchange identifier to its connector. Unknown
// identifiers fail with an UNSUPPORTED_EXCHANGE error.
func (r *Registry) Lookup(exchangeID string) (Connector, error) {
	c, ok := r.connectors[exchangeID]
	if !ok {
		return Connector{}, apperror.Unsupported(exchangeID)
	}
	return c, nil
}

// Supports reports whether the exchange identifier is registered.
func (r *Registry) Supports(exchangeID string) bool {
	_, ok := r.connectors[exchangeID]
	return ok
}

// Names returns the registered exchange identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered exchanges.
func (r *Registry) Len() int {
	return len(r.connectors)
}
