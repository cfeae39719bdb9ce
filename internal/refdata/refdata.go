// Package refdata provides the reference master data the resolver validates
// and defaults against: known process technologies with their default
// process emission factors, and known feedstocks with default carbon and
// energy figures. The engine does not own this data; the embedded catalog is
// the default provider and any remote master-data service can substitute
// behind the same interface.
package refdata

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/greenfuels/teacalc/internal/cache"
	"github.com/greenfuels/teacalc/internal/must"
)

//go:embed data/catalog.json
var catalogJSON []byte

// ProcessTechnology is a known conversion pathway.
type ProcessTechnology struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// DefaultCarbonIntensity is the process emission factor in gCO2/MJ.
	DefaultCarbonIntensity float64 `json:"default_carbon_intensity"`
}

// FeedstockDefaults carries catalog figures used when the caller omits them:
// carbon intensity in gCO2/kg, energy content in MJ/kg, carbon content as a
// mass fraction.
type FeedstockDefaults struct {
	Name                   string  `json:"name"`
	DefaultCarbonIntensity float64 `json:"default_carbon_intensity"`
	DefaultEnergyContent   float64 `json:"default_energy_content"`
	DefaultCarbonContent   float64 `json:"default_carbon_content"`
}

// Catalog is the full reference dataset.
type Catalog struct {
	ProcessTechnologies []ProcessTechnology `json:"process_technologies"`
	Feedstocks          []FeedstockDefaults `json:"feedstocks"`
}

// Provider resolves reference data by name. Lookups are case-insensitive.
// The boolean reports whether the name is known; an error means the backing
// store failed, not that the name is unknown.
type Provider interface {
	ProcessTechnology(ctx context.Context, name string) (ProcessTechnology, bool, error)
	Feedstock(ctx context.Context, name string) (FeedstockDefaults, bool, error)
}

// Embedded serves the catalog compiled into the binary.
type Embedded struct {
	catalog Catalog
}

func NewEmbedded() *Embedded {
	embedded := new(Embedded)
	must.NoError(
		json.NewDecoder(bytes.NewReader(catalogJSON)).Decode(&embedded.catalog),
	)
	return embedded
}

func (e *Embedded) ProcessTechnology(ctx context.Context, name string) (ProcessTechnology, bool, error) {
	for _, tech := range e.catalog.ProcessTechnologies {
		if strings.EqualFold(tech.Name, name) {
			return tech, true, nil
		}
	}
	return ProcessTechnology{}, false, nil
}

func (e *Embedded) Feedstock(ctx context.Context, name string) (FeedstockDefaults, bool, error) {
	for _, feedstock := range e.catalog.Feedstocks {
		if strings.EqualFold(feedstock.Name, name) {
			return feedstock, true, nil
		}
	}
	return FeedstockDefaults{}, false, nil
}

// ProcessTechnologies lists the known pathway names.
func (e *Embedded) ProcessTechnologies() []string {
	names := make([]string, 0, len(e.catalog.ProcessTechnologies))
	for _, tech := range e.catalog.ProcessTechnologies {
		names = append(names, tech.Name)
	}
	return names
}

type lookup struct {
	value any
	found bool
}

// Cached memoizes another provider, typically a remote master-data service,
// with a TTL memory cache. Negative lookups are cached too.
type Cached struct {
	next   Provider
	memory *cache.Memory
}

func NewCached(ctx context.Context, next Provider, ttl time.Duration) *Cached {
	return &Cached{
		next:   next,
		memory: cache.NewMemory(ctx, ttl),
	}
}

func (c *Cached) ProcessTechnology(ctx context.Context, name string) (ProcessTechnology, bool, error) {
	v, err := c.memory.GetOrSet(ctx, "process:"+strings.ToLower(name), func(ctx context.Context) (any, error) {
		tech, found, err := c.next.ProcessTechnology(ctx, name)
		if err != nil {
			return nil, err
		}
		return lookup{value: tech, found: found}, nil
	})
	if err != nil {
		return ProcessTechnology{}, false, err
	}

	result := v.(lookup)
	if !result.found {
		return ProcessTechnology{}, false, nil
	}
	return result.value.(ProcessTechnology), true, nil
}

func (c *Cached) Feedstock(ctx context.Context, name string) (FeedstockDefaults, bool, error) {
	v, err := c.memory.GetOrSet(ctx, "feedstock:"+strings.ToLower(name), func(ctx context.Context) (any, error) {
		feedstock, found, err := c.next.Feedstock(ctx, name)
		if err != nil {
			return nil, err
		}
		return lookup{value: feedstock, found: found}, nil
	})
	if err != nil {
		return FeedstockDefaults{}, false, err
	}

	result := v.(lookup)
	if !result.found {
		return FeedstockDefaults{}, false, nil
	}
	return result.value.(FeedstockDefaults), true, nil
}
