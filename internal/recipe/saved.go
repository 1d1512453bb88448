package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"snaparecipe/internal/storage"
)

// SavedKey is the storage key of the saved-recipes document.
const SavedKey = "savedRecipes"

// Saved is the gallery of saved recipes, unique by name and kept newest
// first. Updates are serialized within one process; running several
// instances on one store is not supported.
type Saved struct {
	mu  sync.Mutex
	doc *storage.Document[[]Recipe]
	now func() time.Time
}

// NewSaved creates a Saved repository on store.
func NewSaved(store storage.Store) *Saved {
	return &Saved{doc: storage.NewDocument[[]Recipe](store, SavedKey), now: time.Now}
}

// WithClock replaces the clock used to stamp new recipes.
func (s *Saved) WithClock(now func() time.Time) *Saved {
	s.now = now
	return s
}

// List returns the saved recipes sorted by timestamp, newest first.
func (s *Saved) List(ctx context.Context) ([]Recipe, error) {
	recipes, err := s.doc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved recipes: %w", err)
	}
	sortByTimestamp(recipes)
	if recipes == nil {
		recipes = []Recipe{}
	}
	return recipes, nil
}

// Get returns the saved recipe with the given name.
func (s *Saved) Get(ctx context.Context, name string) (*Recipe, error) {
	name = strings.TrimSpace(name)
	recipes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].RecipeName == name {
			return &recipes[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add saves r unless a recipe with the same name is already saved, in which
// case the stored recipe is returned with existed set.
func (s *Saved) Add(ctx context.Context, r Recipe) (stored Recipe, existed bool, err error) {
	r.RecipeName = strings.TrimSpace(r.RecipeName)
	if r.RecipeName == "" {
		return Recipe{}, false, ErrMissingName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.List(ctx)
	if err != nil {
		return Recipe{}, false, err
	}
	for _, existing := range recipes {
		if existing.RecipeName == r.RecipeName {
			return existing, true, nil
		}
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	ts := s.now().UTC()
	r.Timestamp = &ts

	if err := s.save(ctx, append([]Recipe{r}, recipes...)); err != nil {
		return Recipe{}, false, err
	}
	return r, false, nil
}

// Delete removes the saved recipe with the given name.
func (s *Saved) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := recipes[:0]
	for _, r := range recipes {
		if r.RecipeName != name {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recipes) {
		return ErrNotFound
	}
	return s.save(ctx, kept)
}

// Save replaces the saved set. Recipes without a timestamp are stamped now
// and the set is stored newest first.
func (s *Saved) Save(ctx context.Context, recipes []Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, recipes)
}

func (s *Saved) save(ctx context.Context, recipes []Recipe) error {
	ts := s.now().UTC()
	out := make([]Recipe, len(recipes))
	for i, r := range recipes {
		if r.Timestamp == nil {
			stamp := ts
			r.Timestamp = &stamp
		}
		out[i] = r
	}
	sortByTimestamp(out)
	if err := s.doc.Save(ctx, out); err != nil {
		return fmt.Errorf("failed to save recipes: %w", err)
	}
	return nil
}

// Clear removes every saved recipe.
func (s *Saved) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clear(ctx)
}

func sortByTimestamp(recipes []Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return unix(recipes[i].Timestamp) > unix(recipes[j].Timestamp)
	})
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}
