package shopping

import (
	"context"
	"fmt"
	"sync"

	"snaparecipe/internal/recipe"
	"snaparecipe/internal/storage"
)

// Key is the storage key of the shopping list document.
const Key = "shoppingList"

// Item is one entry of the shopping list.
type Item struct {
	Text       string `json:"text"`
	Checked    bool   `json:"checked"`
	RecipeName string `json:"recipeName"`
}

// Group is the items of one recipe, in list order.
type Group struct {
	RecipeName string `json:"recipeName"`
	Items      []Item `json:"items"`
}

// List is the persisted shopping list. Updates are serialized within one
// process; running several instances on one store is not supported.
type List struct {
	mu  sync.Mutex
	doc *storage.Document[[]Item]
}

// NewList creates a List on store.
func NewList(store storage.Store) *List {
	return &List{doc: storage.NewDocument[[]Item](store, Key)}
}

// Items returns every item on the list.
func (l *List) Items(ctx context.Context) ([]Item, error) {
	items, err := l.doc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Contains reports whether the list already has items for recipeName.
func (l *List) Contains(ctx context.Context, recipeName string) (bool, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return false, err
	}
	return containsRecipe(items, recipeName), nil
}

// AddRecipe appends the normalized ingredients of r. A recipe that is
// already on the list is left alone and reported with already set.
func (l *List) AddRecipe(ctx context.Context, r *recipe.Recipe) (added []Item, already bool, err error) {
	if r.RecipeName == "" {
		return nil, false, recipe.ErrMissingName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.Items(ctx)
	if err != nil {
		return nil, false, err
	}
	if containsRecipe(items, r.RecipeName) {
		return []Item{}, true, nil
	}

	added = Normalize(r.RecipeName, r.Ingredients)
	if err := l.save(ctx, append(items, added...)); err != nil {
		return nil, false, err
	}
	return added, false, nil
}

// Toggle flips the checked state of items matching text and recipeName and
// returns the updated list.
func (l *List) Toggle(ctx context.Context, text, recipeName string) ([]Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Text == text && items[i].RecipeName == recipeName {
			items[i].Checked = !items[i].Checked
		}
	}
	if err := l.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear empties the list.
func (l *List) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.doc.Save(ctx, []Item{}); err != nil {
		return fmt.Errorf("failed to clear shopping list: %w", err)
	}
	return nil
}

func (l *List) save(ctx context.Context, items []Item) error {
	if err := l.doc.Save(ctx, items); err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}

// GroupByRecipe groups items by recipe name in first-seen order.
func GroupByRecipe(items []Item) []Group {
	groups := []Group{}
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.RecipeName]
		if !ok {
			i = len(groups)
			index[item.RecipeName] = i
			groups = append(groups, Group{RecipeName: item.RecipeName})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Unchecked counts the items still to buy.
func Unchecked(items []Item) int {
	n := 0
	for _, item := range items {
		if !item.Checked {
			n++
		}
	}
	return n
}

func containsRecipe(items []Item, recipeName string) bool {
	for _, item := range items {
		if item.RecipeName == recipeName {
			return true
		}
	}
	return false
}
