package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultFeedURL  = "https://zenn.dev/kinnkinn/feed"
	defaultDBPath   = "data/portfolio.db"
	defaultCacheTTL = 30 * time.Minute
)

type config struct {
	Port           string
	GitHubToken    string
	GitHubEndpoint string
	FeedURL        string
	DBPath         string
	CacheTTL       time.Duration
	AdminUsername  string
	AdminPassword  string
}

// loadConfig reads the environment. godotenv/autoload has already merged
// .env into it.
func loadConfig() config {
	cfg := config{
		Port:           os.Getenv("PORT"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubEndpoint: os.Getenv("GITHUB_GRAPHQL_URL"),
		FeedURL:        os.Getenv("FEED_URL"),
		DBPath:         os.Getenv("DB_PATH"),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		CacheTTL:       defaultCacheTTL,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = defaultFeedURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			log.Printf("WARNING: invalid CACHE_TTL %q, using %s", raw, defaultCacheTTL)
		} else {
			cfg.CacheTTL = ttl
		}
	}

	// Default credentials for development (remove in production)
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
		if gin.Mode() == gin.DebugMode {
			log.Println("WARNING: Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
		if gin.Mode() == gin.DebugMode {
			log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
	}
	if cfg.GitHubToken == "" {
		log.Println("WARNING: GITHUB_TOKEN is not set, the project list will be empty.")
	}
	return cfg
}
