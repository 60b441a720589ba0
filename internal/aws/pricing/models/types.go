package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of decimal places used when rendering amounts
const AmountPrecision = 5

// Amount is a price or capacity figure rendered with a fixed number of decimals
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromFloat is a convenience for tests and constants
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// MarshalJSON renders the amount as a bare JSON number with AmountPrecision decimals
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(AmountPrecision)), nil
}

// PricingKeyKind tells which identifier a PricingKey carries
type PricingKeyKind int

const (
	// EngineCodeKind keys by the vendor's numeric engine code (e.g. "14")
	EngineCodeKind PricingKeyKind = iota
	// EngineNameKind keys by the human-readable engine name (e.g. "PostgreSQL")
	EngineNameKind
)

// PricingKey selects the pricing of one database engine within a region
type PricingKey struct {
	Kind  PricingKeyKind
	Value string
}

// EngineCode builds a key from an engine code
func EngineCode(code string) PricingKey {
	return PricingKey{Kind: EngineCodeKind, Value: code}
}

// EngineName builds a key from a database engine name
func EngineName(name string) PricingKey {
	return PricingKey{Kind: EngineNameKind, Value: name}
}

func (k PricingKey) String() string {
	if k.Kind == EngineNameKind {
		return "name:" + k.Value
	}
	return "code:" + k.Value
}

// EnginePricing holds the prices of one engine in one region
type EnginePricing struct {
	OnDemand *Amount           `json:"ondemand,omitempty"`
	Reserved map[string]Amount `json:"reserved,omitempty"`
}

// RegionPricing stores one EnginePricing per engine code. Engine names are
// aliases resolving to the code whose prices they share.
type RegionPricing struct {
	Engines map[string]*EnginePricing
	Aliases map[string]string
}

func newRegionPricing() *RegionPricing {
	return &RegionPricing{
		Engines: make(map[string]*EnginePricing),
		Aliases: make(map[string]string),
	}
}

// PricingTable maps region -> engine pricing
type PricingTable map[string]*RegionPricing

// Region returns the pricing of a region, creating it if needed
func (t PricingTable) Region(region string) *RegionPricing {
	rp, ok := t[region]
	if !ok {
		rp = newRegionPricing()
		t[region] = rp
	}
	return rp
}

// Engine returns the pricing for an engine code within the region, creating it
// if needed, and binds the engine name to that code if the name is unbound.
// Calling it repeatedly with the same arguments is a no-op.
func (rp *RegionPricing) Engine(code, name string) *EnginePricing {
	ep, ok := rp.Engines[code]
	if !ok {
		ep = &EnginePricing{}
		rp.Engines[code] = ep
	}
	if name != "" {
		if _, bound := rp.Aliases[name]; !bound {
			rp.Aliases[name] = code
		}
	}
	return ep
}

// Resolve finds the engine pricing for a key
func (rp *RegionPricing) Resolve(key PricingKey) (*EnginePricing, bool) {
	code := key.Value
	if key.Kind == EngineNameKind {
		c, ok := rp.Aliases[key.Value]
		if !ok {
			return nil, false
		}
		code = c
	}
	ep, ok := rp.Engines[code]
	return ep, ok
}

// Lookup finds the engine pricing for a region and key
func (t PricingTable) Lookup(region string, key PricingKey) (*EnginePricing, bool) {
	rp, ok := t[region]
	if !ok {
		return nil, false
	}
	return rp.Resolve(key)
}

// Regions returns the region ids in sorted order
func (t PricingTable) Regions() []string {
	regions := make([]string, 0, len(t))
	for r := range t {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}

// Codes returns the engine codes of the region in sorted order
func (rp *RegionPricing) Codes() []string {
	codes := make([]string, 0, len(rp.Engines))
	for c := range rp.Engines {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// MarshalJSON emits both engine codes and engine names as keys so consumers
// can look prices up by either identifier.
func (t PricingTable) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*EnginePricing, len(t))
	for region, rp := range t {
		engines := make(map[string]*EnginePricing, len(rp.Engines)+len(rp.Aliases))
		for code, ep := range rp.Engines {
			engines[code] = ep
		}
		for name, code := range rp.Aliases {
			if _, clash := rp.Engines[name]; clash {
				continue
			}
			if ep, ok := rp.Engines[code]; ok {
				engines[name] = ep
			}
		}
		out[region] = engines
	}
	return json.Marshal(out)
}

// Capacity holds the EBS limits of an instance type
type Capacity struct {
	EBSBaselineBandwidth  Amount `json:"ebs_baseline_bandwidth"`
	EBSBaselineThroughput Amount `json:"ebs_baseline_throughput"`
	EBSBaselineIOPS       Amount `json:"ebs_baseline_iops"`
	EBSMaxBandwidth       Amount `json:"ebs_max_bandwidth"`
	EBSThroughput         Amount `json:"ebs_throughput"`
	EBSIOPS               Amount `json:"ebs_iops"`
	EBSOptimized          bool   `json:"ebs_optimized"`
	EBSOptimizedByDefault bool   `json:"ebs_optimized_by_default"`
}

// InstanceTypeRecord is the normalized view of one RDS instance type
type InstanceTypeRecord struct {
	InstanceType       string       `json:"instance_type"`
	Family             string       `json:"family"`
	Memory             string       `json:"memory"`
	NetworkPerformance string       `json:"network_performance"`
	Arch               string       `json:"arch"`
	PrettyName         string       `json:"pretty_name"`
	Pricing            PricingTable `json:"pricing"`
	Capacity

	// Attributes carries the remaining vendor attributes of the SKU that
	// created the record. They are flattened into the JSON object.
	Attributes map[string]string `json:"-"`
}

// MarshalJSON flattens Attributes next to the typed fields. Typed fields win
// on key collisions.
func (r *InstanceTypeRecord) MarshalJSON() ([]byte, error) {
	type plain InstanceTypeRecord
	base, err := json.Marshal((*plain)(r))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten record %s: %w", r.InstanceType, err)
	}

	for k, v := range r.Attributes {
		if _, taken := fields[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}

	return json.Marshal(fields)
}
