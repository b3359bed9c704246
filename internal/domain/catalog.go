package domain

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// ApprovalTier is a regulatory product-approval program.
type ApprovalTier string

const (
	TierMiamiDade        ApprovalTier = "miami_dade"
	TierFloridaStatewide ApprovalTier = "florida_statewide"
	TierICCES            ApprovalTier = "icc_es"
)

// approvalTiers lists tiers from most to least stringent.
var approvalTiers = []ApprovalTier{TierMiamiDade, TierFloridaStatewide, TierICCES}

// Valid reports whether t is a known tier.
func (t ApprovalTier) Valid() bool {
	switch t {
	case TierMiamiDade, TierFloridaStatewide, TierICCES:
		return true
	default:
		return false
	}
}

// Approval is one certification a manufacturer holds. Identifier is the NOA
// number, Florida approval number, or ICC-ES report number.
type Approval struct {
	Identifier        string  `yaml:"identifier" json:"identifier"`
	SystemCode        string  `yaml:"system_code" json:"system_code,omitempty"`
	MaxDesignPressure float64 `yaml:"max_design_pressure" json:"max_design_pressure"`
}

// Products names the membrane and fastening components of a manufacturer's system.
type Products struct {
	Membrane struct {
		Name  string `yaml:"name" json:"name"`
		Type  string `yaml:"type" json:"type"`
		Color string `yaml:"color" json:"color"`
	} `yaml:"membrane" json:"membrane"`
	Fasteners struct {
		Name   string `yaml:"name" json:"name"`
		Plates string `yaml:"plates" json:"plates"`
	} `yaml:"fasteners" json:"fasteners"`
}

// ManufacturerEntry is a read-only catalog record.
type ManufacturerEntry struct {
	Key       ManufacturerKey
	Name      string
	Products  Products
	approvals map[ApprovalTier]Approval
}

// Approval returns the manufacturer's approval for a tier.
func (e ManufacturerEntry) Approval(tier ApprovalTier) (Approval, bool) {
	a, ok := e.approvals[tier]
	return a, ok
}

// Tiers lists the tiers the manufacturer holds, most stringent first.
func (e ManufacturerEntry) Tiers() []ApprovalTier {
	out := make([]ApprovalTier, 0, len(e.approvals))
	for _, t := range approvalTiers {
		if _, ok := e.approvals[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Catalog is the immutable manufacturer approval table. It is safe for
// concurrent use.
type Catalog struct {
	entries map[ManufacturerKey]ManufacturerEntry
}

type catalogFile struct {
	Manufacturers map[string]struct {
		Name      string              `yaml:"name"`
		Approvals map[string]Approval `yaml:"approvals"`
		Products  Products            `yaml:"products"`
	} `yaml:"manufacturers"`
}

// ParseCatalog decodes a YAML catalog, rejecting unknown tiers and
// non-positive design pressures.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Manufacturers) == 0 {
		return nil, fmt.Errorf("parse catalog: no manufacturers")
	}

	c := &Catalog{entries: make(map[ManufacturerKey]ManufacturerEntry, len(f.Manufacturers))}
	for key, m := range f.Manufacturers {
		if m.Name == "" {
			return nil, fmt.Errorf("parse catalog: %s: name is required", key)
		}
		approvals := make(map[ApprovalTier]Approval, len(m.Approvals))
		for tierName, a := range m.Approvals {
			tier := ApprovalTier(tierName)
			if !tier.Valid() {
				return nil, fmt.Errorf("parse catalog: %s: unknown approval tier %q", key, tierName)
			}
			if a.MaxDesignPressure <= 0 {
				return nil, fmt.Errorf("parse catalog: %s: %s: max_design_pressure must be positive", key, tierName)
			}
			approvals[tier] = a
		}
		c.entries[ManufacturerKey(key)] = ManufacturerEntry{
			Key:       ManufacturerKey(key),
			Name:      m.Name,
			Products:  m.Products,
			approvals: approvals,
		}
	}
	return c, nil
}

// LoadCatalog reads a YAML catalog from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
})

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// Lookup returns the entry for a manufacturer key.
func (c *Catalog) Lookup(key ManufacturerKey) (ManufacturerEntry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Keys returns the catalogued manufacturer keys in sorted order.
func (c *Catalog) Keys() []ManufacturerKey {
	keys := make([]ManufacturerKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of catalogued manufacturers.
func (c *Catalog) Len() int {
	return len(c.entries)
}
