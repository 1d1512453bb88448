package recipe

import (
	"fmt"
	"strings"
)

// ShareTitle is the title used when sharing a recipe.
func ShareTitle(r *Recipe) string {
	return "Recipe: " + r.RecipeName
}

// ShareText renders a recipe as the plain text body used for copy and share.
func ShareText(r *Recipe) string {
	var b strings.Builder
	b.WriteString(ShareTitle(r))
	b.WriteString("\n\n")
	b.WriteString(r.Description)
	b.WriteString("\n\nIngredients:\n- ")
	b.WriteString(strings.Join(r.Ingredients, "\n- "))
	b.WriteString("\n\nInstructions:\n")
	for i, step := range r.Instructions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, step)
	}
	return b.String()
}
