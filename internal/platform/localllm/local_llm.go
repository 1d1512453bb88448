package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"snaparecipe/internal/imaging"
	"snaparecipe/internal/platform/gemini"
	"snaparecipe/internal/recipe"
)

// DefaultURL is the chat-completions endpoint of a local LM Studio server.
const DefaultURL = "http://localhost:1234/v1/chat/completions"

// DefaultModel is the vision model requested when none is configured.
const DefaultModel = "gemma-3-12b-it:2"

// Client represents a client for the local LLM.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a new client for the local LLM.
func NewClient(apiURL, model string) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		model:      model,
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat asks the server for JSON output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Message represents a message in the request.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content represents the content of a message.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents the image URL in the content.
type ImageURL struct {
	URL string `json:"url"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContent sends a request to the local LLM and returns the response.
func (c *Client) GenerateContent(ctx context.Context, content ...Content) (string, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: content,
			},
		},
		Temperature:    1,
		MaxTokens:      2048,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode}
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) > 0 {
		return llmResp.Choices[0].Message.Content, nil
	}

	return "", nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("received non-OK status code: %d", e.code)
}

// GenerateRecipe generates a recipe from an image data URL.
func (c *Client) GenerateRecipe(ctx context.Context, imageDataURL, language string) (*recipe.Recipe, error) {
	img, err := imaging.ParseDataURL(imageDataURL)
	if err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrInvalidImage, err)
	}
	language = gemini.NormalizeLanguage(language)
	log.Printf("Generating recipe with Local LLM for image hash: %s, language: %s", gemini.GenerateImageHash(img.Data), language)

	return c.generate(ctx,
		Content{Type: "text", Text: gemini.GeneratePrompt(language) + "\n\n" + schemaHint},
		Content{Type: "image_url", ImageURL: &ImageURL{URL: img.String()}},
	)
}

// RemixRecipe rewrites an existing recipe following a free-form instruction.
func (c *Client) RemixRecipe(ctx context.Context, current *recipe.Recipe, instruction, language string) (*recipe.Recipe, error) {
	prompt, err := gemini.RemixPrompt(current, instruction, gemini.NormalizeLanguage(language))
	if err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrUnknown, err)
	}
	return c.generate(ctx, Content{Type: "text", Text: prompt + "\n\n" + schemaHint})
}

// schemaHint spells out the JSON shape; local servers do not take a schema.
const schemaHint = "Return a single, clean JSON object with the keys 'recipeName' (string), 'description' (string), 'ingredients' (array of strings) and 'instructions' (array of strings). The JSON response should be clean and not contain any markdown formatting."

func (c *Client) generate(ctx context.Context, content ...Content) (*recipe.Recipe, error) {
	responseText, err := c.GenerateContent(ctx, content...)
	if err != nil {
		log.Printf("Error generating recipe from Local LLM: %v", err)
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusTooManyRequests {
			return nil, recipe.NewGenerationError(recipe.ErrQuotaExceeded, err)
		}
		if errors.As(err, &se) && (se.code == http.StatusUnauthorized || se.code == http.StatusForbidden) {
			return nil, recipe.NewGenerationError(recipe.ErrInvalidAPIKey, err)
		}
		return nil, recipe.NewGenerationError(recipe.ErrUnknown, err)
	}

	// Clean up the response text
	cleanedResponse := strings.TrimSpace(responseText)
	cleanedResponse = strings.TrimPrefix(cleanedResponse, "```json")
	cleanedResponse = strings.TrimPrefix(cleanedResponse, "```")
	cleanedResponse = strings.TrimSuffix(cleanedResponse, "```")
	cleanedResponse = strings.TrimSpace(cleanedResponse)
	if cleanedResponse == "" {
		return nil, recipe.NewGenerationError(recipe.ErrEmptyResponse, errors.New("no content found in response"))
	}

	var r recipe.Recipe
	if err := json.Unmarshal([]byte(cleanedResponse), &r); err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrUnknown, fmt.Errorf("failed to unmarshal recipe from response: %w", err))
	}
	if err := r.Validate(); err != nil {
		return nil, recipe.NewGenerationError(recipe.ErrEmptyResponse, err)
	}
	return &r, nil
}
