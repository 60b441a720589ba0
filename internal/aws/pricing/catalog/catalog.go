// Package catalog decodes the AWS offer file for Amazon RDS into flat,
// deterministically ordered product and price-dimension lists.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// DatabaseInstanceFamily is the product family of billable RDS instances
const DatabaseInstanceFamily = "Database Instance"

// ErrMalformedCatalog is returned when the document lacks a required top-level key
var ErrMalformedCatalog = errors.New("malformed pricing catalog")

// Product is one catalog SKU with its raw attributes
type Product struct {
	SKU        string
	Family     string
	Attributes map[string]string
}

// Dimension is one price dimension of one offer
type Dimension struct {
	SKU         string
	OfferCode   string
	RateCode    string
	Description string
	Unit        string
	// USD is the price exactly as published, e.g. "0.0170000000"
	USD string

	// Reserved offers only
	LeaseContractLength string
	PurchaseOption      string
}

// Catalog is the structural extraction of an offer file
type Catalog struct {
	Products []Product
	OnDemand []Dimension
	Reserved []Dimension
}

type document struct {
	Products map[string]rawProduct `json:"products"`
	Terms    *struct {
		OnDemand map[string]map[string]rawOffer `json:"OnDemand"`
		Reserved map[string]map[string]rawOffer `json:"Reserved"`
	} `json:"terms"`
}

type rawProduct struct {
	SKU           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

type rawOffer struct {
	OfferTermCode   string                  `json:"offerTermCode"`
	PriceDimensions map[string]rawDimension `json:"priceDimensions"`
	TermAttributes  map[string]string       `json:"termAttributes"`
}

type rawDimension struct {
	RateCode     string            `json:"rateCode"`
	Description  string            `json:"description"`
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// Read decodes an offer file. Missing products, terms, terms.OnDemand or
// terms.Reserved is fatal.
func Read(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	switch {
	case doc.Products == nil:
		return nil, fmt.Errorf("%w: missing products", ErrMalformedCatalog)
	case doc.Terms == nil:
		return nil, fmt.Errorf("%w: missing terms", ErrMalformedCatalog)
	case doc.Terms.OnDemand == nil:
		return nil, fmt.Errorf("%w: missing terms.OnDemand", ErrMalformedCatalog)
	case doc.Terms.Reserved == nil:
		return nil, fmt.Errorf("%w: missing terms.Reserved", ErrMalformedCatalog)
	}

	return &Catalog{
		Products: products(doc.Products),
		OnDemand: dimensions(doc.Terms.OnDemand),
		Reserved: dimensions(doc.Terms.Reserved),
	}, nil
}

func products(raw map[string]rawProduct) []Product {
	out := make([]Product, 0, len(raw))
	for _, sku := range sortedKeys(raw) {
		p := raw[sku]
		if p.ProductFamily != DatabaseInstanceFamily {
			continue
		}
		attrs := make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		out = append(out, Product{SKU: sku, Family: p.ProductFamily, Attributes: attrs})
	}
	return out
}

func dimensions(raw map[string]map[string]rawOffer) []Dimension {
	var out []Dimension
	for _, sku := range sortedKeys(raw) {
		offers := raw[sku]
		for _, code := range sortedKeys(offers) {
			offer := offers[code]
			for _, rate := range sortedKeys(offer.PriceDimensions) {
				d := offer.PriceDimensions[rate]
				out = append(out, Dimension{
					SKU:                 sku,
					OfferCode:           code,
					RateCode:            rate,
					Description:         d.Description,
					Unit:                d.Unit,
					USD:                 d.PricePerUnit["USD"],
					LeaseContractLength: offer.TermAttributes["LeaseContractLength"],
					PurchaseOption:      offer.TermAttributes["PurchaseOption"],
				})
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
