// Package recommend maps product categories to accessory suggestions shown
// in the post-order upsell step.
package recommend

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suggestion is a human-readable accessory pitch plus a promotional link.
type Suggestion struct {
	Item        string `yaml:"item"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

// Fallback values for categories outside the catalog.
const (
	fallbackItem        = "accessory"
	fallbackDescription = "Explore more HP accessories to enhance your purchase!"
	fallbackURL         = "https://tinyurl.com/3y8wx23v"
)

// Resolver resolves product categories to suggestions. The zero value is not
// usable; construct with NewResolver.
type Resolver struct {
	catalog map[string]Suggestion
}

// NewResolver returns a resolver preloaded with the built-in catalog.
func NewResolver() *Resolver {
	return &Resolver{catalog: defaultCatalog()}
}

// NewResolverFromFile returns a resolver whose catalog is extended (and
// overridden per category) by a YAML file of the form:
//
//	laptop:
//	  item: docking station
//	  description: Boost your productivity with a docking station!
//	  url: https://shorturl.at/cIPgM
func NewResolverFromFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var overrides map[string]Suggestion
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	catalog := defaultCatalog()
	for category, s := range overrides {
		catalog[strings.ToLower(category)] = s
	}
	return &Resolver{catalog: catalog}, nil
}

// Suggest returns the suggestion for a product category. Unknown categories
// get the generic fallback pair; there is no error case.
func (r *Resolver) Suggest(category string) Suggestion {
	if s, ok := r.catalog[strings.ToLower(category)]; ok {
		return s
	}
	return Suggestion{
		Item:        fallbackItem,
		Description: fallbackDescription,
		URL:         fallbackURL,
	}
}

// SuggestedURL returns just the promotional link for a category.
func (r *Resolver) SuggestedURL(category string) string {
	return r.Suggest(category).URL
}

// ItemName returns the accessory name used in card subtitles.
func (r *Resolver) ItemName(category string) string {
	return r.Suggest(category).Item
}

func defaultCatalog() map[string]Suggestion {
	return map[string]Suggestion{
		"laptop": {
			Item:        "docking station",
			Description: "Boost your productivity with a docking station!",
			URL:         "https://shorturl.at/cIPgM",
		},
		"tablet": {
			Item:        "stylus",
			Description: "Enhance your tablet experience with a stylus!",
			URL:         "https://shorturl.at/Y2bFu",
		},
		"printer": {
			Item:        "ink cartridge",
			Description: "Keep your printer running with a new ink cartridge!",
			URL:         "https://shorturl.at/rr0Wg",
		},
		"touchpad": {
			Item:        "wireless mouse",
			Description: "Complement your touchpad with a wireless mouse!",
			URL:         "https://shorturl.at/lMRaS",
		},
		"ipad": {
			Item:        "tablet case",
			Description: "Protect your device with a tablet case!",
			URL:         "https://tinyurl.com/3hvhuukb",
		},
		"computer": {
			Item:        "monitor",
			Description: "Complete your setup with a high-quality monitor!",
			URL:         "https://tinyurl.com/muru24v4",
		},
		"p_c": {
			Item:        "keyboard",
			Description: "Upgrade your PC with a new keyboard!",
			URL:         "https://tinyurl.com/35ue6py8",
		},
	}
}
