package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"snaparecipe/internal/recipe"
)

// mockModel is a mock of the Gemini generative model.
type mockModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int
	parts []genai.Part
}

func (m *mockModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.parts = parts
	return m.resp, m.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, len(texts))
	for i, t := range texts {
		parts[i] = genai.Text(t)
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

const recipeJSON = `{"recipeName":"Margherita Pizza","description":"Classic.","ingredients":["1 ball pizza dough","2 cups chopped fresh basil"],"instructions":["Stretch the dough.","Bake."]}`

const imageDataURL = "data:image/jpeg;base64,aGVsbG8="

func TestGenerateRecipe(t *testing.T) {
	m := &mockModel{resp: textResponse(recipeJSON)}
	c := &Client{model: m}

	r, err := c.GenerateRecipe(context.Background(), imageDataURL, "  French ")
	require.NoError(t, err)
	assert.Equal(t, "Margherita Pizza", r.RecipeName)
	assert.Equal(t, []string{"Stretch the dough.", "Bake."}, r.Instructions)

	require.Len(t, m.parts, 2)
	blob, ok := m.parts[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", blob.MIMEType)
	assert.Equal(t, []byte("hello"), blob.Data)

	prompt, ok := m.parts[1].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(prompt), "ENTIRE recipe in French language")
}

func TestGenerateRecipe_DefaultLanguage(t *testing.T) {
	m := &mockModel{resp: textResponse(recipeJSON)}
	_, err := (&Client{model: m}).GenerateRecipe(context.Background(), imageDataURL, "")
	require.NoError(t, err)
	assert.Contains(t, string(m.parts[1].(genai.Text)), "in English language")
}

func TestGenerateRecipe_JoinsTextParts(t *testing.T) {
	half := len(recipeJSON) / 2
	m := &mockModel{resp: textResponse(recipeJSON[:half], recipeJSON[half:])}
	r, err := (&Client{model: m}).GenerateRecipe(context.Background(), imageDataURL, "English")
	require.NoError(t, err)
	assert.Equal(t, "Margherita Pizza", r.RecipeName)
}

func TestGenerateRecipe_InvalidImageSkipsNetwork(t *testing.T) {
	m := &mockModel{resp: textResponse(recipeJSON)}
	_, err := (&Client{model: m}).GenerateRecipe(context.Background(), "not a data url", "English")
	assert.Equal(t, recipe.ErrInvalidImage, recipe.KindOf(err))
	assert.Equal(t, 0, m.calls)
}

func TestGenerateRecipe_EmptyResponses(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"no content":    {Candidates: []*genai.Candidate{{}}},
		"blank text":    textResponse("   "),
		"missing name":  textResponse(`{"recipeName":"","description":"","ingredients":["a"],"instructions":["b"]}`),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := (&Client{model: &mockModel{resp: resp}}).GenerateRecipe(context.Background(), imageDataURL, "English")
			assert.Equal(t, recipe.ErrEmptyResponse, recipe.KindOf(err))
		})
	}
}

func TestGenerateRecipe_BadJSON(t *testing.T) {
	_, err := (&Client{model: &mockModel{resp: textResponse("{nope")}}).GenerateRecipe(context.Background(), imageDataURL, "English")
	var gerr *recipe.GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, recipe.ErrUnknown, gerr.Kind)
	assert.Equal(t, "An unexpected error occurred while generating the recipe. Please try again.", gerr.Message)
}

func TestGenerateRecipe_UpstreamErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		want recipe.ErrorKind
	}{
		"invalid key message": {
			err:  &googleapi.Error{Code: http.StatusBadRequest, Message: "API key not valid. Please pass a valid API key."},
			want: recipe.ErrInvalidAPIKey,
		},
		"unauthorized": {
			err:  &googleapi.Error{Code: http.StatusUnauthorized},
			want: recipe.ErrInvalidAPIKey,
		},
		"rate limited": {
			err:  fmt.Errorf("rpc: %w", &googleapi.Error{Code: http.StatusTooManyRequests}),
			want: recipe.ErrQuotaExceeded,
		},
		"quota message": {
			err:  errors.New("You exceeded your current quota, please check your plan"),
			want: recipe.ErrQuotaExceeded,
		},
		"blocked": {
			err:  &genai.BlockedError{},
			want: recipe.ErrEmptyResponse,
		},
		"other": {
			err:  errors.New("connection reset by peer"),
			want: recipe.ErrUnknown,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&Client{model: &mockModel{err: tc.err}}).GenerateRecipe(context.Background(), imageDataURL, "English")
			assert.Equal(t, tc.want, recipe.KindOf(err))
		})
	}
}

func TestGenerateRecipe_DeadlineIsKept(t *testing.T) {
	_, err := (&Client{model: &mockModel{err: context.DeadlineExceeded}}).GenerateRecipe(context.Background(), imageDataURL, "English")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRemixRecipe(t *testing.T) {
	m := &mockModel{resp: textResponse(recipeJSON)}
	current := &recipe.Recipe{
		RecipeName:   "Pizza",
		Ingredients:  []string{"mozzarella"},
		Instructions: []string{"Bake."},
	}

	r, err := (&Client{model: m}).RemixRecipe(context.Background(), current, "Make it vegan", "")
	require.NoError(t, err)
	assert.Equal(t, "Margherita Pizza", r.RecipeName)

	require.Len(t, m.parts, 1)
	prompt := string(m.parts[0].(genai.Text))
	assert.Contains(t, prompt, `"Make it vegan"`)
	assert.Contains(t, prompt, `"recipeName":"Pizza"`)
	assert.True(t, strings.Contains(prompt, "in English language"))
}

func TestGenerateImageHash(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", GenerateImageHash([]byte("hello")))
}
