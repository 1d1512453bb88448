package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"snaparecipe/internal/imaging"
	"snaparecipe/internal/recipe"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultLanguage is used when the caller asks for no language.
const DefaultLanguage = "English"

// contentGenerator is the part of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client is a client for the Gemini API.
type Client struct {
	client *genai.Client
	model  contentGenerator
}

// NewClient creates a new Gemini client whose model answers with JSON
// matching RecipeSchema.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = RecipeSchema
	return &Client{client: client, model: model}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// RecipeSchema is the structured output the model must produce.
var RecipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recipeName": {Type: genai.TypeString, Description: "The name of the recipe."},
		"description": {Type: genai.TypeString, Description: "A brief description of the dish."},
		"ingredients": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of ingredients with quantities.",
		},
		"instructions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Step-by-step cooking instructions.",
		},
	},
	Required: []string{"recipeName", "description", "ingredients", "instructions"},
}

// GenerateImageHash calculates the SHA256 hash of the image data.
func GenerateImageHash(imageData []byte) string {
	hash := sha256.Sum256(imageData)
	return hex.EncodeToString(hash[:])
}

// NormalizeLanguage trims language and falls back to DefaultLanguage.
func NormalizeLanguage(language string) string {
	if language = strings.TrimSpace(language); language == "" {
		return DefaultLanguage
	}
	return language
}

// GeneratePrompt is the instruction sent alongside the image.
func GeneratePrompt(language string) string {
	return fmt.Sprintf(`Analyze the food in this image and generate a detailed recipe.

CRITICAL INSTRUCTION: You MUST generate the ENTIRE recipe in %[1]s language. This includes:
- Recipe name: Must be in %[1]s
- Description: Must be in %[1]s
- All ingredients: Must be in %[1]s
- All instructions: Must be in %[1]s

The recipe should include a creative name, a short description, a list of ingredients with measurements, and step-by-step instructions. EVERY SINGLE WORD of the recipe must be written in %[1]s, not English or any other language.

Return the response as JSON with all text content in %[1]s language.`, language)
}

// RemixPrompt asks the model to rewrite current according to instruction.
func RemixPrompt(current *recipe.Recipe, instruction, language string) (string, error) {
	body, err := json.Marshal(struct {
		RecipeName   string   `json:"recipeName"`
		Description  string   `json:"description"`
		Ingredients  []string `json:"ingredients"`
		Instructions []string `json:"instructions"`
	}{current.RecipeName, current.Description, current.Ingredients, current.Instructions})
	if err != nil {
		return "", fmt.Errorf("failed to marshal recipe: %w", err)
	}
	return fmt.Sprintf(`Here is a recipe as JSON:
%s

Modify the recipe according to this request: "%s".
Keep what the request does not change. Give the modified recipe a fitting name.
Write the ENTIRE recipe in %s language and return it as JSON.`, body, instruction, language), nil
}

// GenerateRecipe generates a recipe from an image data URL.
func (c *Client) GenerateRecipe(ctx context.Context, imageDataURL, language string) (*recipe.Recipe, error) {
	img, err := imaging.ParseDataURL(imageDataURL)
	if err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrInvalidImage, err)
	}
	language = NormalizeLanguage(language)
	log.Printf("Generating recipe with Gemini for image hash: %s, language: %s", GenerateImageHash(img.Data), language)

	return c.generate(ctx,
		genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		genai.Text(GeneratePrompt(language)),
	)
}

// RemixRecipe rewrites an existing recipe following a free-form instruction
// such as "Make it vegan".
func (c *Client) RemixRecipe(ctx context.Context, current *recipe.Recipe, instruction, language string) (*recipe.Recipe, error) {
	prompt, err := RemixPrompt(current, instruction, NormalizeLanguage(language))
	if err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrUnknown, err)
	}
	log.Printf("Remixing recipe %q with Gemini: %s", current.RecipeName, instruction)
	return c.generate(ctx, genai.Text(prompt))
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (*recipe.Recipe, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Printf("Error generating recipe from Gemini: %v", err)
		return nil, classify(err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, recipe.NewGenerationError(recipe.ErrEmptyResponse, errors.New("empty response from Gemini"))
	}

	var r recipe.Recipe
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrUnknown, fmt.Errorf("failed to unmarshal recipe JSON: %w. Raw response: %s", err, text))
	}
	if err := r.Validate(); err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrEmptyResponse, err)
	}
	return &r, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// classify maps an upstream error onto the user-facing error kinds.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return recipe.NewGenerationError(recipe.ErrUnknown, err)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return recipe.NewGenerationError(recipe.ErrEmptyResponse, err)
	}

	msg := err.Error()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.Message + " " + msg
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return recipe.NewGenerationError(recipe.ErrQuotaExceeded, err)
		case http.StatusUnauthorized:
			return recipe.NewGenerationError(recipe.ErrInvalidAPIKey, err)
		}
	}

	switch lower := strings.ToLower(msg); {
	case strings.Contains(lower, "api key not valid"), strings.Contains(lower, "api_key_invalid"):
		return recipe.NewGenerationError(recipe.ErrInvalidAPIKey, err)
	case strings.Contains(lower, "quota"), strings.Contains(lower, "resource_exhausted"):
		return recipe.NewGenerationError(recipe.ErrQuotaExceeded, err)
	}
	return recipe.NewGenerationError(recipe.ErrUnknown, err)
}
