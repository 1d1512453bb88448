package recipe

import (
	"encoding/json"
	"strings"
	"time"
)

// Recipe represents the structure of the generated recipe
type Recipe struct {
	ID           string     `json:"id,omitempty"`
	RecipeName   string     `json:"recipeName"`
	Description  string     `json:"description"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Recipe.
// Model output often carries stray whitespace and blank list entries.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // Create an alias to avoid infinite recursion
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.RecipeName = strings.TrimSpace(r.RecipeName)
	r.Description = strings.TrimSpace(r.Description)
	r.Ingredients = compact(r.Ingredients)
	r.Instructions = compact(r.Instructions)

	return nil
}

// Validate reports whether a generated recipe carries the required fields.
func (r *Recipe) Validate() error {
	switch {
	case r.RecipeName == "":
		return errMissingField("recipeName")
	case len(r.Ingredients) == 0:
		return errMissingField("ingredients")
	case len(r.Instructions) == 0:
		return errMissingField("instructions")
	}
	return nil
}

func compact(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
