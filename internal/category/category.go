// Package category holds the item category presets and guesses a preset
// from an item name.
package category

import "strings"

const (
	Household = "Household"
	Kitchen   = "Kitchen"
	Toilet    = "Toilet"
	Bath      = "Bath"
	Other     = "Other"
)

// Presets lists the categories offered when adding an item, in display order.
var Presets = []string{Household, Kitchen, Toilet, Bath, Other}

// Suggest returns the preset that best fits name, or "" when nothing does.
// Matching is case-insensitive: whole name first, then keywords in order.
func Suggest(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if cat, ok := exact[name]; ok {
		return cat
	}
	for _, k := range keywords {
		if strings.Contains(name, k.word) {
			return k.category
		}
	}
	return ""
}

var exact = map[string]string{
	"soap":        Bath,
	"shampoo":     Bath,
	"conditioner": Bath,
	"towel":       Bath,
	"towels":      Bath,
	"razor":       Bath,
	"razors":      Bath,

	"toilet paper": Toilet,
	"tp":           Toilet,
	"plunger":      Toilet,

	"sponge":    Kitchen,
	"sponges":   Kitchen,
	"foil":      Kitchen,
	"napkins":   Kitchen,
	"dish soap": Kitchen,

	"batteries":  Household,
	"bleach":     Household,
	"detergent":  Household,
	"light bulb": Household,
}

type keyword struct {
	word     string
	category string
}

// More specific phrases come before the words they contain.
var keywords = []keyword{
	{"dish", Kitchen},
	{"paper towel", Kitchen},
	{"trash bag", Kitchen},
	{"garbage bag", Kitchen},
	{"plastic wrap", Kitchen},
	{"zip bag", Kitchen},

	{"toilet", Toilet},
	{"bidet", Toilet},
	{"wipes", Toilet},

	{"body wash", Bath},
	{"shower", Bath},
	{"toothpaste", Bath},
	{"toothbrush", Bath},
	{"floss", Bath},
	{"deodorant", Bath},
	{"lotion", Bath},
	{"soap", Bath},
	{"shampoo", Bath},

	{"laundry", Household},
	{"detergent", Household},
	{"battery", Household},
	{"batteries", Household},
	{"bulb", Household},
	{"cleaner", Household},
	{"filter", Household},
	{"tape", Household},
}
