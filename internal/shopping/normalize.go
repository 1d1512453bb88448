package shopping

import (
	"regexp"
	"strings"
	"unicode"
)

// staples are pantry items assumed to be at home already.
var staples = []string{
	"water", "salt", "pepper", "black pepper", "oil", "olive oil", "cooking oil", "vegetable oil", "sugar",
	"butter", "garlic", "onion", "garlic powder", "onion powder", "paprika", "cumin",
	"cayenne pepper", "chili powder", "oregano", "thyme", "rosemary", "bay leaves",
	"soy sauce", "vinegar", "lemon juice", "lime juice", "honey", "flour", "milk", "egg", "eggs",
	"baking powder", "baking soda", "vanilla extract", "cinnamon", "nutmeg", "cloves", "allspice",
	"coriander", "cardamom", "ginger", "turmeric", "parsley", "cilantro", "chives", "dill",
	"mustard", "ketchup", "mayonnaise", "yeast", "mushrooms", "tomato", "tomatoes",
	"potato", "potatoes", "carrot", "carrots", "celery", "lettuce", "spinach",
	"bell pepper", "bell peppers", "cheese", "cheeses",
}

var placeholders = map[string]bool{
	"to taste":    true,
	"as needed":   true,
	"for garnish": true,
	"optional":    true,
}

const (
	unitPattern     = `(?:cups?|tablespoons?|teaspoons?|pieces?|slices?|cloves?|pinch(?:es)?|drops?|pounds?|ounces?|grams?|kilograms?|liters?|litres?|quarts?|pints?|tbsps?|tsps?|lbs?|oz|kgs?|mls?|gs?|ls?)`
	quantityPattern = `\d+(?:\.\d+)?(?:\s+\d+\s*/\s*\d+|\s*/\s*\d+)?`
)

var (
	quantityUnitRe = regexp.MustCompile(`(?i)^\s*` + quantityPattern + `(?:\s*(?:to|-)\s*` + quantityPattern + `)?\s*` + unitPattern + `\b\.?\s*(?:of\s+)?`)
	articleUnitRe  = regexp.MustCompile(`(?i)^\s*(?:a|an)\s+` + unitPattern + `\b\.?\s*(?:of\s+)?`)
	prepClauseRe   = regexp.MustCompile(`(?i),\s*(?:fresh|chopped|minced|grated|ground|sliced|diced).*$`)
	prepWordRe     = regexp.MustCompile(`(?i)\b(?:fresh|dried|ground|chopped|minced|grated|sliced|diced)\b\s*`)
	trailingRe     = regexp.MustCompile(`[\s,]+$`)
)

// Normalize turns a recipe's ingredient lines into shopping list items. Staples
// and placeholders such as "to taste" are dropped; quantities, units and
// preparation words are removed from the rest. Order is preserved.
func Normalize(recipeName string, ingredients []string) []Item {
	items := make([]Item, 0, len(ingredients))
	for _, ingredient := range ingredients {
		if excluded(stripMeasurements(ingredient)) {
			continue
		}
		cleaned := Clean(ingredient)
		if cleaned == "" || excluded(cleaned) {
			continue
		}
		items = append(items, Item{Text: cleaned, RecipeName: recipeName})
	}
	return items
}

// Clean strips measurements and preparation descriptors from one ingredient
// line. It is applied until the text stops changing, so Clean(Clean(s)) ==
// Clean(s).
func Clean(ingredient string) string {
	s := ingredient
	for i := 0; i < 8; i++ {
		next := cleanOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanOnce(s string) string {
	s = stripMeasurements(s)
	s = prepClauseRe.ReplaceAllString(s, "")
	s = prepWordRe.ReplaceAllString(s, "")
	s = trailingRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func stripMeasurements(s string) string {
	for {
		next := quantityUnitRe.ReplaceAllString(s, "")
		next = articleUnitRe.ReplaceAllString(next, "")
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}

func excluded(s string) bool {
	return isPlaceholder(s) || isStaple(s)
}

func isPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// isStaple matches staples as whole words: "salt" matches "sea salt" but
// not "saltine crackers".
func isStaple(s string) bool {
	text := matchText(s)
	for _, staple := range staples {
		if text == staple ||
			strings.HasPrefix(text, staple+" ") ||
			strings.HasSuffix(text, " "+staple) ||
			strings.Contains(text, " "+staple+" ") {
			return true
		}
	}
	return false
}

// matchText lower-cases s and turns punctuation into single spaces.
func matchText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
