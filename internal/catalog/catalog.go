// Package catalog holds the static table of alarm brands available for
// installation. The table is read-only for the lifetime of the process:
// callers look brands up by code (case-insensitive) or list them in tier
// order for display.
package catalog

import (
	"strings"
	"time"
)

// Brand describes a single alarm product tier.
type Brand struct {
	// Name is the full product name shown to players.
	Name string
	// Tier is the subscription tier label, from "Basic" to "Black".
	Tier string
	// MonthlyPrice is the subscription price in in-game currency per month.
	MonthlyPrice int
	// DetectionRadius is the proximity detection range in world units.
	DetectionRadius float64
	// Cooldown is the minimum interval between two triggers on the same property.
	Cooldown time.Duration
	// Silent marks brands that never warn the intruder on trigger.
	Silent bool
	// Description is a one-line marketing blurb for catalog listings.
	Description string
}

// Entry pairs a brand with its catalog code for ordered listings.
type Entry struct {
	// Code is the canonical upper-case brand code.
	Code string
	// Brand is the brand definition.
	Brand Brand
}

// order fixes the display sequence, ascending by tier.
//
//nolint:gochecknoglobals // Static catalog data.
var order = []string{"SENTINEL", "GUARDIAN", "VIPER", "NEXUS", "FORTRESS", "PHANTOM"}

//nolint:gochecknoglobals // Static catalog data.
var brands = map[string]Brand{
	"SENTINEL": {
		Name:            "Sentinel Basic",
		Tier:            "Basic",
		MonthlyPrice:    500,
		DetectionRadius: 8,
		Cooldown:        120 * time.Second,
		Description:     "Entry-level alarm. Standard range, slow response.",
	},
	"GUARDIAN": {
		Name:            "Guardian Home",
		Tier:            "Standard",
		MonthlyPrice:    1200,
		DetectionRadius: 12,
		Cooldown:        90 * time.Second,
		Description:     "Reliable mid-range system. Good for residential.",
	},
	"VIPER": {
		Name:            "Viper Pro",
		Tier:            "Advanced",
		MonthlyPrice:    2500,
		DetectionRadius: 15,
		Cooldown:        60 * time.Second,
		Description:     "Fast detection, reduced cooldown, wider coverage.",
	},
	"NEXUS": {
		Name:            "Nexus Smart",
		Tier:            "Premium",
		MonthlyPrice:    4500,
		DetectionRadius: 18,
		Cooldown:        45 * time.Second,
		Description:     "Smart alerts with priority dispatch routing.",
	},
	"FORTRESS": {
		Name:            "Fortress Elite",
		Tier:            "Elite",
		MonthlyPrice:    8000,
		DetectionRadius: 22,
		Cooldown:        30 * time.Second,
		Description:     "Maximum coverage, instant response, top-tier system.",
	},
	"PHANTOM": {
		Name:            "Phantom Stealth",
		Tier:            "Black",
		MonthlyPrice:    15000,
		DetectionRadius: 28,
		Cooldown:        15 * time.Second,
		Silent:          true,
		Description:     "Silent detection. Intruder is unaware alarm was triggered.",
	},
}

// Canonical normalizes a brand code to its canonical upper-case form.
func Canonical(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup finds a brand by code, case-insensitively.
// A miss is a normal business outcome, not an error.
func Lookup(code string) (Brand, bool) {
	b, ok := brands[Canonical(code)]

	return b, ok
}

// All returns the catalog in display order, ascending by tier.
func All() []Entry {
	entries := make([]Entry, 0, len(order))
	for _, code := range order {
		entries = append(entries, Entry{Code: code, Brand: brands[code]})
	}

	return entries
}
