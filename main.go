package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"once/config"
	"once/db"
	"once/engine"
	"once/handlers"
	"once/llm"
	"once/memory"
	"once/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if err := db.InitMongoDB(cfg.MongoURI, cfg.MongoDatabase); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer db.Close()
	db.CreateIndexes()

	llmClient, err := llm.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}

	repo := db.NewStoryRepository()
	memClient := memory.NewClient(cfg.MemoryAPIURL)
	if !memClient.Enabled() {
		log.Println("Warning: MEMORY_API_URL not set, memory retrieval disabled")
	}

	eng := engine.New(repo, llmClient, memClient)
	story := handlers.NewStoryHandler(eng, repo)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /stories", story.CreateStory)
	mux.HandleFunc("GET /stories", story.ListStories)
	mux.HandleFunc("GET /stories/{id}", story.StoryDetail)
	mux.HandleFunc("DELETE /stories/{id}", story.ArchiveStory)
	mux.HandleFunc("GET /stories/{id}/scenes", story.ListScenes)
	mux.HandleFunc("GET /stories/{id}/echoes", story.ListEchoes)
	mux.HandleFunc("GET /stories/{id}/codex", story.ListCodex)
	mux.HandleFunc("POST /stories/{id}/continue", story.ContinueStory)
	mux.HandleFunc("POST /stories/{id}/continue/stream", story.ContinueStoryStream)

	log.Printf("Server running on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, middleware.EnableCORS(cfg.AllowedOrigins, mux)))
}
