package business

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Island is one of the Hawaiian islands a business is located on
type Island string

const (
	IslandOahu      Island = "Oahu"
	IslandMaui      Island = "Maui"
	IslandBigIsland Island = "BigIsland"
	IslandKauai     Island = "Kauai"
	IslandMolokai   Island = "Molokai"
	IslandLanai     Island = "Lanai"
	IslandUnknown   Island = "Unknown"
)

// Islands lists every island value, Unknown last.
var Islands = []Island{
	IslandOahu,
	IslandMaui,
	IslandBigIsland,
	IslandKauai,
	IslandMolokai,
	IslandLanai,
	IslandUnknown,
}

// IsValid checks if the island value is one of the fixed set
func (i Island) IsValid() bool {
	switch i {
	case IslandOahu, IslandMaui, IslandBigIsland, IslandKauai, IslandMolokai, IslandLanai, IslandUnknown:
		return true
	}
	return false
}

// String returns the string representation
func (i Island) String() string {
	return string(i)
}

// ParseIsland maps an island name (as used in query parameters and CSV
// exports) to an Island. Place names are not resolved here; see NormalizeIsland.
func ParseIsland(s string) (Island, bool) {
	key := strings.ReplaceAll(foldText(s), " ", "")
	switch key {
	case "oahu":
		return IslandOahu, true
	case "maui":
		return IslandMaui, true
	case "bigisland", "hawaiiisland", "islandofhawaii":
		return IslandBigIsland, true
	case "kauai":
		return IslandKauai, true
	case "molokai":
		return IslandMolokai, true
	case "lanai":
		return IslandLanai, true
	case "unknown":
		return IslandUnknown, true
	}
	return IslandUnknown, false
}

type islandRule struct {
	keyword string
	island  Island
}

// islandRules is checked top to bottom. Compound names that contain another
// island's town ("kailua-kona") sit above the plain town names.
var islandRules = []islandRule{
	{"kailua-kona", IslandBigIsland},
	{"kailua kona", IslandBigIsland},
	{"big island", IslandBigIsland},
	{"hawaii island", IslandBigIsland},
	{"island of hawaii", IslandBigIsland},
	{"lanai city", IslandLanai},

	{"honolulu", IslandOahu},
	{"pearl city", IslandOahu},
	{"kailua", IslandOahu},
	{"kaneohe", IslandOahu},
	{"waipahu", IslandOahu},
	{"mililani", IslandOahu},
	{"aiea", IslandOahu},
	{"ewa beach", IslandOahu},
	{"kapolei", IslandOahu},
	{"waikiki", IslandOahu},
	{"haleiwa", IslandOahu},
	{"oahu", IslandOahu},

	{"kahului", IslandMaui},
	{"lahaina", IslandMaui},
	{"kihei", IslandMaui},
	{"wailuku", IslandMaui},
	{"makawao", IslandMaui},
	{"paia", IslandMaui},
	{"haiku", IslandMaui},
	{"wailea", IslandMaui},
	{"kapalua", IslandMaui},
	{"maui", IslandMaui},

	{"hilo", IslandBigIsland},
	{"kona", IslandBigIsland},
	{"waimea", IslandBigIsland},
	{"kamuela", IslandBigIsland},
	{"pahoa", IslandBigIsland},
	{"waikoloa", IslandBigIsland},
	{"keaau", IslandBigIsland},

	{"lihue", IslandKauai},
	{"kapaa", IslandKauai},
	{"princeville", IslandKauai},
	{"poipu", IslandKauai},
	{"hanapepe", IslandKauai},
	{"koloa", IslandKauai},
	{"kauai", IslandKauai},

	{"kaunakakai", IslandMolokai},
	{"maunaloa", IslandMolokai},
	{"molokai", IslandMolokai},

	{"lanai", IslandLanai},
}

// NormalizeIsland resolves free location text ("Honolulu, HI 96813") to an
// island. Rules are tried in table order and the first rule that hits wins,
// wherever its keyword sits in the text: "Hilo and Honolulu" is Oahu.
// Matching is case-insensitive, okina-insensitive and word-bounded.
func NormalizeIsland(text string) Island {
	_, island := LocatePlace(text)
	return island
}

// LocatePlace returns the place name that NormalizeIsland would resolve text
// by, title-cased ("Kona"), together with its island. place is empty and the
// island Unknown when no keyword occurs as a whole word.
func LocatePlace(text string) (place string, island Island) {
	folded := foldText(text)
	if folded == "" {
		return "", IslandUnknown
	}
	for _, rule := range islandRules {
		if containsWord(folded, rule.keyword) {
			return cases.Title(language.English).String(rule.keyword), rule.island
		}
	}
	return "", IslandUnknown
}
