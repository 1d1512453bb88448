package shopping

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaparecipe/internal/recipe"
	"snaparecipe/internal/storage"
)

var pesto = &recipe.Recipe{
	RecipeName:  "Pesto Pasta",
	Ingredients: []string{"2 cups chopped fresh basil", "1 tsp salt", "200 g spaghetti", "1/4 cup pine nuts"},
}

func TestList_AddRecipe(t *testing.T) {
	ctx := context.Background()
	list := NewList(storage.NewMemoryStore())

	added, already, err := list.AddRecipe(ctx, pesto)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, []string{"basil", "spaghetti", "pine nuts"}, texts(added))

	items, err := list.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, added, items)

	ok, err := list.Contains(ctx, "Pesto Pasta")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestList_AddRecipeTwiceDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	list := NewList(storage.NewMemoryStore())

	_, _, err := list.AddRecipe(ctx, pesto)
	require.NoError(t, err)
	added, already, err := list.AddRecipe(ctx, pesto)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Empty(t, added)

	items, err := list.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestList_AddRecipeRequiresName(t *testing.T) {
	list := NewList(storage.NewMemoryStore())
	_, _, err := list.AddRecipe(context.Background(), &recipe.Recipe{Ingredients: []string{"1 lime"}})
	assert.ErrorIs(t, err, recipe.ErrMissingName)
}

func TestList_ToggleAndClear(t *testing.T) {
	ctx := context.Background()
	list := NewList(storage.NewMemoryStore())
	_, _, err := list.AddRecipe(ctx, pesto)
	require.NoError(t, err)

	items, err := list.Toggle(ctx, "spaghetti", "Pesto Pasta")
	require.NoError(t, err)
	assert.True(t, items[1].Checked)
	assert.Equal(t, 2, Unchecked(items))

	items, err = list.Toggle(ctx, "spaghetti", "Pesto Pasta")
	require.NoError(t, err)
	assert.False(t, items[1].Checked)

	// a different recipe name does not match
	items, err = list.Toggle(ctx, "spaghetti", "Carbonara")
	require.NoError(t, err)
	assert.Equal(t, 3, Unchecked(items))

	require.NoError(t, list.Clear(ctx))
	items, err = list.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestList_ConcurrentAddsKeepEveryRecipe(t *testing.T) {
	ctx := context.Background()
	list := NewList(storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := &recipe.Recipe{RecipeName: fmt.Sprintf("Recipe %d", i), Ingredients: []string{"pine nuts"}}
			_, _, err := list.AddRecipe(ctx, r)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	items, err := list.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 50)
}

func TestList_ConcurrentAddsOfSameRecipeDoNotDuplicate(t *testing.T) {
	ctx := context.Background()
	list := NewList(storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := list.AddRecipe(ctx, pesto)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := list.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"basil", "spaghetti", "pine nuts"}, texts(items))
}

func TestList_CorruptDocumentResets(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, Key, []byte(`[{"text": 1`)))

	items, err := NewList(store).Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGroupByRecipe(t *testing.T) {
	items := []Item{
		{Text: "basil", RecipeName: "Pesto"},
		{Text: "beef", RecipeName: "Tacos"},
		{Text: "pine nuts", RecipeName: "Pesto"},
	}
	groups := GroupByRecipe(items)
	require.Len(t, groups, 2)
	assert.Equal(t, "Pesto", groups[0].RecipeName)
	assert.Equal(t, []string{"basil", "pine nuts"}, texts(groups[0].Items))
	assert.Equal(t, "Tacos", groups[1].RecipeName)
	assert.Empty(t, GroupByRecipe(nil))
}
