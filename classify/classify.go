// Package classify assigns a saved item to a display bucket: things
// to go do, things to buy, things to read up on. Classification is a
// pure keyword heuristic over the item's text fields; identical input
// always yields the same bucket so list membership is stable across
// renders.
package classify

import (
	"strings"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Bucket is a display grouping.
type Bucket string

const (
	// Do holds actionable outings: events, restaurants, hikes.
	Do Bucket = "Do"
	// Buy holds shopping references.
	Buy Bucket = "Buy"
	// Learn holds everything saved to read or research later.
	Learn Bucket = "Learn"
)

// Rule order matters: exclusions beat inclusions, inclusions beat
// date/category signals, and Learn is the default. Slices, not maps,
// so evaluation order is fixed.

// notActionable forces an item out of the Do bucket regardless of
// other signals. A recipe mentioning a restaurant is still a recipe.
var notActionable = []string{
	"recipe", "article", "book", "podcast", "course", "tutorial",
	"documentary", "playlist", "newsletter",
}

var buyKeywords = []string{
	"shop", "store", "boutique", "market", "buy", "purchase",
	"merch", "outlet", "mall",
}

var doKeywords = []string{
	"restaurant", "cafe", "bar", "event", "concert", "festival",
	"show", "hike", "trail", "beach", "park", "museum", "tour",
	"club", "brunch", "dinner", "tasting", "exhibit",
}

// doCategories are the canonical categories that imply an outing even
// without a matching keyword.
var doCategories = []string{
	strings.ToLower(types.CategoryEvents),
	strings.ToLower(types.CategoryFood),
	strings.ToLower(types.CategoryHikes),
	strings.ToLower(types.CategoryDateNight),
	strings.ToLower(types.CategoryTravel),
}

// Classify buckets an item. The decision reads only the item's text
// and date fields, never external state.
func Classify(it types.SavedItem) Bucket {
	text := strings.ToLower(strings.Join([]string{
		it.Category, it.Title, it.Notes, it.Source,
	}, " "))

	if containsAny(text, notActionable) {
		if containsAny(text, buyKeywords) {
			return Buy
		}
		return Learn
	}
	if containsAny(text, buyKeywords) {
		return Buy
	}
	if containsAny(text, doKeywords) {
		return Do
	}
	if it.DateTimeISO != "" {
		return Do
	}
	for _, c := range doCategories {
		if strings.ToLower(it.Category) == c {
			return Do
		}
	}
	return Learn
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
