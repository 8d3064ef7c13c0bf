// Package metadata assembles endpoint documentation from independent providers.
package metadata

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/route"
)

var log = logging.Logger("routedoc/metadata")

// Provider derives partial documentation for a route. An empty result means no opinion.
// Providers must not fail; unresolvable sources degrade to empty metadata.
type Provider interface {
	Provide(r route.Route) model.EndpointMetadata
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(r route.Route) model.EndpointMetadata

func (f ProviderFunc) Provide(r route.Route) model.EndpointMetadata {
	return f(r)
}

// Resolver folds provider results left to right; later providers win.
type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

func (r *Resolver) Resolve(rt route.Route) model.EndpointMetadata {
	var md model.EndpointMetadata
	for _, p := range r.providers {
		md = md.Merge(p.Provide(rt))
	}
	return md
}

// FromConfig builds the resolver for cfg.Metadata.Providers. The request-rules provider
// is left out when scan.request-rules is disabled.
func FromConfig(cfg *config.Config, reader apidoc.Reader) (*Resolver, error) {
	var providers []Provider
	for _, name := range cfg.Metadata.Providers {
		switch name {
		case config.ProviderRequestRules:
			if !cfg.Scan.RequestRules.Enabled {
				continue
			}
			providers = append(providers, NewRequestRules(reader))
		case config.ProviderAnnotation:
			providers = append(providers, NewAnnotations(reader))
		case config.ProviderOverrides:
			providers = append(providers, NewOverrides(cfg.Overrides))
		default:
			return nil, fmt.Errorf("unknown metadata provider: %s", name)
		}
	}
	return NewResolver(providers...), nil
}
