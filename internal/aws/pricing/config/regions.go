package config

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws/endpoints"
)

// AnyLocation is the catalog location used by SKUs that are not tied to a region
const AnyLocation = "Any"

// RegionToLocation maps AWS region codes to the location names used by the pricing catalog
var RegionToLocation = map[string]string{
	// US Regions
	"us-gov-east-1": "AWS GovCloud (US-East)",
	"us-gov-west-1": "AWS GovCloud (US-West)",
	"us-east-1":     "US East (N. Virginia)",
	"us-east-2":     "US East (Ohio)",
	"us-west-1":     "US West (N. California)",
	"us-west-2":     "US West (Oregon)",

	// Canada
	"ca-central-1": "Canada (Central)",
	"ca-west-1":    "Canada West (Calgary)",

	// South America
	"sa-east-1": "South America (Sao Paulo)",

	// Europe
	"eu-central-1": "EU (Frankfurt)",
	"eu-central-2": "Europe (Zurich)",
	"eu-west-1":    "EU (Ireland)",
	"eu-west-2":    "EU (London)",
	"eu-west-3":    "EU (Paris)",
	"eu-south-1":   "EU (Milan)",
	"eu-south-2":   "Europe (Spain)",
	"eu-north-1":   "EU (Stockholm)",

	// Africa
	"af-south-1": "Africa (Cape Town)",

	// Middle East
	"me-south-1":   "Middle East (Bahrain)",
	"me-central-1": "Middle East (UAE)",
	"il-central-1": "Israel (Tel Aviv)",

	// Asia Pacific
	"ap-east-1":      "Asia Pacific (Hong Kong)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-south-2":     "Asia Pacific (Hyderabad)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-southeast-3": "Asia Pacific (Jakarta)",
	"ap-southeast-4": "Asia Pacific (Melbourne)",
	"ap-southeast-5": "Asia Pacific (Malaysia)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
	"ap-northeast-3": "Asia Pacific (Osaka)",

	// China
	"cn-north-1":     "China (Beijing)",
	"cn-northwest-1": "China (Ningxia)",
}

// locationAliases covers catalog spellings that differ from every region description
var locationAliases = map[string]string{
	"AWS GovCloud (US)": "us-gov-west-1",
}

// GetLocationForRegion returns the location name for a given AWS region
func GetLocationForRegion(region string) (string, bool) {
	location, ok := RegionToLocation[region]
	return location, ok
}

// CanonicalizeLocation folds the spelling variants the catalog has used over
// time ("Europe (Paris)" vs "EU (Paris)", "São Paulo" vs "Sao Paulo").
func CanonicalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if strings.HasPrefix(location, "Europe (") {
		location = "EU (" + strings.TrimPrefix(location, "Europe (")
	}
	return strings.ReplaceAll(location, "São Paulo", "Sao Paulo")
}

// Locations resolves catalog location strings to region ids
type Locations struct {
	byLocation map[string]string
}

// NewLocations builds the lookup from the SDK's region descriptions, then the
// static RegionToLocation table, then the known aliases. Earlier sources win.
func NewLocations() *Locations {
	l := &Locations{byLocation: make(map[string]string)}

	for _, p := range endpoints.DefaultPartitions() {
		regions := p.Regions()
		ids := make([]string, 0, len(regions))
		for id := range regions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			l.add(regions[id].Description(), id)
		}
	}

	l.addTable(RegionToLocation)
	for location, region := range locationAliases {
		l.add(location, region)
	}
	return l
}

// NewLocationsFromTable builds a lookup from a region -> location table only
func NewLocationsFromTable(table map[string]string) *Locations {
	l := &Locations{byLocation: make(map[string]string)}
	l.addTable(table)
	return l
}

func (l *Locations) addTable(table map[string]string) {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		l.add(table[id], id)
	}
}

func (l *Locations) add(location, region string) {
	if location == "" {
		return
	}
	key := CanonicalizeLocation(location)
	if _, exists := l.byLocation[key]; !exists {
		l.byLocation[key] = region
	}
}

// Resolve returns the region id for a catalog location
func (l *Locations) Resolve(location string) (string, bool) {
	region, ok := l.byLocation[CanonicalizeLocation(location)]
	return region, ok
}

// Entry is one location -> region pair
type Entry struct {
	Location string `json:"location"`
	Region   string `json:"region"`
}

// Entries returns every known location sorted by region then location
func (l *Locations) Entries() []Entry {
	entries := make([]Entry, 0, len(l.byLocation))
	for loc, region := range l.byLocation {
		entries = append(entries, Entry{Location: loc, Region: region})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Region != entries[j].Region {
			return entries[i].Region < entries[j].Region
		}
		return entries[i].Location < entries[j].Location
	})
	return entries
}
