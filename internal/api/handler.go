package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snaparecipe/internal/imaging"
	"snaparecipe/internal/legal"
	"snaparecipe/internal/recipe"
	"snaparecipe/internal/shopping"
)

const (
	generateTimeout = 45 * time.Second
	storageTimeout  = 5 * time.Second
)

// RemixSuggestions are the one-tap remix instructions offered to the user.
var RemixSuggestions = []string{
	"Make it vegan",
	"Make it gluten-free",
	"Double the servings",
	"Make it healthier",
	"Add a spicy kick",
}

// RecipeGenerator defines the interface for the recipe generation backends.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, imageDataURL, language string) (*recipe.Recipe, error)
	RemixRecipe(ctx context.Context, current *recipe.Recipe, instruction, language string) (*recipe.Recipe, error)
}

// SavedRecipes defines the saved-recipe gallery operations.
type SavedRecipes interface {
	List(ctx context.Context) ([]recipe.Recipe, error)
	Get(ctx context.Context, name string) (*recipe.Recipe, error)
	Add(ctx context.Context, r recipe.Recipe) (recipe.Recipe, bool, error)
	Delete(ctx context.Context, name string) error
}

// ShoppingList defines the shopping list operations.
type ShoppingList interface {
	Items(ctx context.Context) ([]shopping.Item, error)
	AddRecipe(ctx context.Context, r *recipe.Recipe) ([]shopping.Item, bool, error)
	Toggle(ctx context.Context, text, recipeName string) ([]shopping.Item, error)
	Clear(ctx context.Context) error
}

// Handler handles HTTP requests.
type Handler struct {
	Generator    RecipeGenerator
	Saved        SavedRecipes
	Shopping     ShoppingList
	ContactEmail string
	Now          func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(generator RecipeGenerator, saved SavedRecipes, shoppingList ShoppingList) *Handler {
	return &Handler{Generator: generator, Saved: saved, Shopping: shoppingList, Now: time.Now}
}

type errorResponse struct {
	Error string `json:"error"`
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{Error: message})
}

type generateRequest struct {
	Image    string `json:"image" binding:"required"`
	Language string `json:"language"`
}

// Generate handles image submissions and returns the generated recipe.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "An image data URL is required.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	r, err := h.Generator.GenerateRecipe(ctx, req.Image, req.Language)
	if err != nil {
		trackEvent("generate_recipe", map[string]any{"success": false, "error": recipe.KindOf(err).String()})
		h.generationFailed(c, err)
		return
	}

	r.ID = uuid.NewString()
	r.ImageURL = req.Image
	trackEvent("generate_recipe", map[string]any{"success": true, "recipe_name": r.RecipeName})
	c.JSON(http.StatusOK, r)
}

type remixRequest struct {
	Recipe      recipe.Recipe `json:"recipe"`
	Instruction string        `json:"instruction"`
	Language    string        `json:"language"`
}

// Remix rewrites a recipe following the user's instruction.
func (h *Handler) Remix(c *gin.Context) {
	var req remixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid remix request: "+err.Error())
		return
	}
	req.Instruction = strings.TrimSpace(req.Instruction)
	if req.Instruction == "" {
		fail(c, http.StatusBadRequest, "Tell us how to remix the recipe.")
		return
	}
	if req.Recipe.RecipeName == "" {
		fail(c, http.StatusBadRequest, recipe.ErrMissingName.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	r, err := h.Generator.RemixRecipe(ctx, &req.Recipe, req.Instruction, req.Language)
	if err != nil {
		trackEvent("remix_recipe", map[string]any{"success": false, "error": recipe.KindOf(err).String()})
		h.generationFailed(c, err)
		return
	}

	r.ID = uuid.NewString()
	r.ImageURL = req.Recipe.ImageURL
	trackEvent("remix_recipe", map[string]any{"success": true, "recipe_name": r.RecipeName, "prompt": req.Instruction})
	c.JSON(http.StatusOK, r)
}

// RemixSuggestionList returns the suggested remix instructions.
func (h *Handler) RemixSuggestionList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": RemixSuggestions})
}

func (h *Handler) generationFailed(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusRequestTimeout, errorResponse{Error: "Recipe generation timed out after 45 seconds. Please try again."})
		return
	}

	var gerr *recipe.GenerationError
	if !errors.As(err, &gerr) {
		gerr = recipe.NewGenerationError(recipe.ErrUnknown, err)
	}
	log.Printf("recipe generation failed: %v", err)

	status := http.StatusInternalServerError
	switch gerr.Kind {
	case recipe.ErrInvalidImage:
		status = http.StatusBadRequest
	case recipe.ErrEmptyResponse, recipe.ErrInvalidAPIKey:
		status = http.StatusBadGateway
	case recipe.ErrQuotaExceeded:
		status = http.StatusTooManyRequests
	}
	fail(c, status, gerr.Message)
}

type cropRequest struct {
	Image    string `json:"image" binding:"required"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MaxWidth uint   `json:"maxWidth"`
}

// Crop crops and downsizes an image before it is sent for generation.
func (h *Handler) Crop(c *gin.Context) {
	var req cropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "An image data URL is required.")
		return
	}

	src, err := imaging.ParseDataURL(req.Image)
	if err != nil {
		fail(c, http.StatusBadRequest, recipe.NewGenerationError(recipe.ErrInvalidImage, err).Message)
		return
	}

	out, err := imaging.Crop(src, imaging.CropArea{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}, req.MaxWidth)
	if err != nil {
		log.Printf("Error cropping image: %v", err)
		fail(c, http.StatusBadRequest, "Failed to crop the image: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": out.String()})
}

// ListSaved returns the saved recipes, newest first.
func (h *Handler) ListSaved(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	recipes, err := h.Saved.List(ctx)
	if err != nil {
		storageFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// SaveRecipe adds a recipe to the gallery. Saving a name twice is a no-op.
func (h *Handler) SaveRecipe(c *gin.Context) {
	var r recipe.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		fail(c, http.StatusBadRequest, "invalid recipe: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	stored, existed, err := h.Saved.Add(ctx, r)
	if err != nil {
		if errors.Is(err, recipe.ErrMissingName) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		storageFailed(c, err)
		return
	}
	if existed {
		c.JSON(http.StatusOK, stored)
		return
	}
	trackEvent("save_recipe", map[string]any{"recipe_name": stored.RecipeName})
	c.JSON(http.StatusCreated, stored)
}

// GetSaved returns one saved recipe by name.
func (h *Handler) GetSaved(c *gin.Context) {
	r, ok := h.lookupSaved(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteSaved removes a saved recipe by name.
func (h *Handler) DeleteSaved(c *gin.Context) {
	name := c.Param("name")

	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	if err := h.Saved.Delete(ctx, name); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			fail(c, http.StatusNotFound, "Recipe not found")
			return
		}
		storageFailed(c, err)
		return
	}
	trackEvent("delete_recipe", map[string]any{"recipe_name": name})
	c.Status(http.StatusNoContent)
}

// ShareSaved returns the share title and plain text of a saved recipe.
func (h *Handler) ShareSaved(c *gin.Context) {
	r, ok := h.lookupSaved(c)
	if !ok {
		return
	}
	trackEvent("share_recipe", map[string]any{"recipe_name": r.RecipeName})
	c.JSON(http.StatusOK, gin.H{"title": recipe.ShareTitle(r), "text": recipe.ShareText(r)})
}

// KitchenStep returns one instruction of a saved recipe for kitchen mode.
func (h *Handler) KitchenStep(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, http.StatusBadRequest, "step index must be a number")
		return
	}
	r, ok := h.lookupSaved(c)
	if !ok {
		return
	}

	step, err := recipe.NewKitchen(r).Step(index)
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, step)
}

type kitchenRequest struct {
	State  recipe.KitchenState `json:"state"`
	Action string              `json:"action"`
	Step   int                 `json:"step"`
}

type kitchenResponse struct {
	Step  recipe.StepView     `json:"step"`
	State recipe.KitchenState `json:"state"`
	Done  bool                `json:"done"`
}

// KitchenProgress applies one kitchen-mode action to the progress the client
// sends and returns the new progress. complete marks the current step, toggle
// flips any step.
func (h *Handler) KitchenProgress(c *gin.Context) {
	var req kitchenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid kitchen request: "+err.Error())
		return
	}
	r, ok := h.lookupSaved(c)
	if !ok {
		return
	}

	k, err := recipe.RestoreKitchen(r, req.State)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Action {
	case "", "view":
	case "next":
		k.Next()
	case "prev":
		k.Prev()
	case "complete":
		k.Complete(req.State.Current)
	case "toggle":
		if err := k.Toggle(req.Step); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	case "reset":
		k.Reset()
	default:
		fail(c, http.StatusBadRequest, "unknown kitchen action "+strconv.Quote(req.Action))
		return
	}

	step, err := k.Current()
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	if k.Done() {
		trackEvent("kitchen_mode_done", map[string]any{"recipe_name": r.RecipeName})
	}
	c.JSON(http.StatusOK, kitchenResponse{Step: step, State: k.State(), Done: k.Done()})
}

func (h *Handler) lookupSaved(c *gin.Context) (*recipe.Recipe, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	r, err := h.Saved.Get(ctx, c.Param("name"))
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			fail(c, http.StatusNotFound, "Recipe not found")
			return nil, false
		}
		storageFailed(c, err)
		return nil, false
	}
	return r, true
}

type shoppingListResponse struct {
	Items     []shopping.Item  `json:"items"`
	Groups    []shopping.Group `json:"groups"`
	Unchecked int              `json:"unchecked"`
}

func newShoppingListResponse(items []shopping.Item) shoppingListResponse {
	return shoppingListResponse{
		Items:     items,
		Groups:    shopping.GroupByRecipe(items),
		Unchecked: shopping.Unchecked(items),
	}
}

// GetShoppingList returns the shopping list grouped by recipe.
func (h *Handler) GetShoppingList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	items, err := h.Shopping.Items(ctx)
	if err != nil {
		storageFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, newShoppingListResponse(items))
}

// AddToShoppingList adds a recipe's ingredients to the shopping list.
func (h *Handler) AddToShoppingList(c *gin.Context) {
	var r recipe.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		fail(c, http.StatusBadRequest, "invalid recipe: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	added, already, err := h.Shopping.AddRecipe(ctx, &r)
	if err != nil {
		if errors.Is(err, recipe.ErrMissingName) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		storageFailed(c, err)
		return
	}

	status := http.StatusCreated
	if already {
		status = http.StatusOK
	} else {
		trackEvent("add_to_shopping_list", map[string]any{"recipe_name": r.RecipeName})
	}
	c.JSON(status, gin.H{"added": added, "alreadyInList": already})
}

type toggleRequest struct {
	Text       string `json:"text" binding:"required"`
	RecipeName string `json:"recipeName" binding:"required"`
}

// ToggleShoppingItem flips the checked state of a shopping list item.
func (h *Handler) ToggleShoppingItem(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "text and recipeName are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	items, err := h.Shopping.Toggle(ctx, req.Text, req.RecipeName)
	if err != nil {
		storageFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, newShoppingListResponse(items))
}

// ClearShoppingList empties the shopping list.
func (h *Handler) ClearShoppingList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
	defer cancel()

	if err := h.Shopping.Clear(ctx); err != nil {
		storageFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Legal returns the privacy policy or terms of service.
func (h *Handler) Legal(c *gin.Context) {
	page, err := legal.Render(c.Param("page"), h.ContactEmail, h.Now())
	if err != nil {
		if errors.Is(err, legal.ErrUnknownPage) {
			fail(c, http.StatusNotFound, "Page not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, page)
}

// Health reports that the server is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func storageFailed(c *gin.Context, err error) {
	log.Printf("storage error: %v", err)
	if errors.Is(err, context.DeadlineExceeded) {
		fail(c, http.StatusRequestTimeout, "Storage request timed out after 5 seconds")
		return
	}
	fail(c, http.StatusInternalServerError, "storage error")
}
