package catalog

import (
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

// Default explicit preference values
const (
	DefaultPriceMin  = 0.0
	DefaultPriceMax  = 1000.0
	DefaultExpertise = "all"
	DefaultUsageType = "all"
)

// PriceRange is an inclusive price window
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies inside the window
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Preferences are the user-declared settings stored on the account.
// An empty Categories list means all categories.
type Preferences struct {
	Categories []string   `json:"categories"`
	PriceRange PriceRange `json:"priceRange"`
	Expertise  string     `json:"expertise"`
	UsageType  string     `json:"usageType"`
}

// DefaultPreferences returns the settings used when nothing is stored
func DefaultPreferences() Preferences {
	return Preferences{
		Categories: []string{},
		PriceRange: PriceRange{Min: DefaultPriceMin, Max: DefaultPriceMax},
		Expertise:  DefaultExpertise,
		UsageType:  DefaultUsageType,
	}
}

type storedPreferences struct {
	Categories json.RawMessage `json:"categories"`
	PriceRange *PriceRange     `json:"priceRange"`
	Expertise  string          `json:"expertise"`
	UsageType  string          `json:"usageType"`
}

// DecodePreferences parses stored preferences. Missing, malformed or
// out-of-range fields fall back to their defaults individually.
func DecodePreferences(raw datatypes.JSON) Preferences {
	prefs := DefaultPreferences()
	if len(raw) == 0 {
		return prefs
	}

	var stored storedPreferences
	if err := json.Unmarshal(raw, &stored); err != nil {
		return prefs
	}

	prefs.Categories = DecodeStrings(datatypes.JSON(stored.Categories))
	if r := stored.PriceRange; r != nil && r.Min >= 0 && r.Max > 0 && r.Max >= r.Min {
		prefs.PriceRange = *r
	}
	if stored.Expertise != "" {
		prefs.Expertise = stored.Expertise
	}
	if stored.UsageType != "" {
		prefs.UsageType = stored.UsageType
	}
	return prefs
}

// EncodePreferences serializes preferences for storage
func EncodePreferences(prefs Preferences) (datatypes.JSON, error) {
	if prefs.Categories == nil {
		prefs.Categories = []string{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// DecodeStrings parses a JSON string array, trimming blanks. Anything that
// is not a string array (including "null" and corrupt bytes) yields an
// empty slice.
func DecodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return []string{}
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// EncodeStrings serializes a string list for a JSONB column
func EncodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}
