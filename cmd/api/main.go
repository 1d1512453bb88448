package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"snaparecipe/internal/api"
	"snaparecipe/internal/config"
	"snaparecipe/internal/platform/gemini"
	"snaparecipe/internal/platform/localllm"
	"snaparecipe/internal/recipe"
	"snaparecipe/internal/shopping"
	"snaparecipe/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("error creating recipe generator: %v", err)
	}
	defer closeGenerator()

	store, redisClient, err := newStore(cfg)
	if err != nil {
		log.Fatalf("error creating storage: %v", err)
	}

	handler := api.NewHandler(generator, recipe.NewSaved(store), shopping.NewList(store))
	handler.ContactEmail = cfg.ContactEmail

	r := setupRouter(handler, cfg.AllowedOrigins, newLimiter(cfg, redisClient))
	log.Printf("listening on :%s with %s generator", cfg.Port, cfg.Generator)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newGenerator(ctx context.Context, cfg *config.Config) (api.RecipeGenerator, func(), error) {
	if cfg.Generator == config.GeneratorLocal {
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel), func() {}, nil
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

// newStore picks Postgres, then Redis, then memory. The Redis client is
// returned whenever one is configured so the rate limiter can share it.
func newStore(cfg *config.Config) (storage.Store, *redis.Client, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := storage.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		redisClient = client
	}

	switch {
	case cfg.DatabaseURL != "":
		store, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, redisClient, nil
	case redisClient != nil:
		return storage.NewRedisStore(redisClient, "snaparecipe:"), redisClient, nil
	default:
		log.Println("no DATABASE_URL or REDIS_URL set, data will not survive a restart")
		return storage.NewMemoryStore(), nil, nil
	}
}

// newLimiter returns nil when Redis is not configured or the limit is 0.
func newLimiter(cfg *config.Config, redisClient *redis.Client) *api.RateLimiter {
	if redisClient == nil || cfg.GenerationLimit() <= 0 {
		return nil
	}
	return api.NewGenerationRateLimiter(redisClient, cfg.GenerationLimit())
}

func setupRouter(handler *api.Handler, allowedOrigins []string, limiter *api.RateLimiter) *gin.Engine {
	r := gin.Default()
	// recipe names may contain "/", so match on the escaped path
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	generation := r.Group("/recipes")
	if limiter != nil {
		generation.Use(limiter.Middleware())
	}
	generation.POST("/generate", handler.Generate)
	generation.POST("/remix", handler.Remix)
	r.GET("/recipes/remix/suggestions", handler.RemixSuggestionList)

	r.POST("/images/crop", handler.Crop)

	r.GET("/saved-recipes", handler.ListSaved)
	r.POST("/saved-recipes", handler.SaveRecipe)
	r.GET("/saved-recipes/:name", handler.GetSaved)
	r.DELETE("/saved-recipes/:name", handler.DeleteSaved)
	r.GET("/saved-recipes/:name/share", handler.ShareSaved)
	r.GET("/saved-recipes/:name/steps/:index", handler.KitchenStep)
	r.POST("/saved-recipes/:name/kitchen", handler.KitchenProgress)

	r.GET("/shopping-list", handler.GetShoppingList)
	r.POST("/shopping-list/recipes", handler.AddToShoppingList)
	r.POST("/shopping-list/toggle", handler.ToggleShoppingItem)
	r.DELETE("/shopping-list", handler.ClearShoppingList)

	r.GET("/legal/:page", handler.Legal)
	r.GET("/healthz", handler.Health)
	return r
}
