package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Library    LibraryConfig
	PhotoPrism PhotoPrismConfig
	Places     PlacesConfig
	Embedding  EmbeddingConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Database   DatabaseConfig
	Prices     PricesConfig
}

type LibraryConfig struct {
	Path string // local photo folder scanned for geotagged images
}

type PhotoPrismConfig struct {
	DatabaseURL   string // MariaDB DSN for direct index access (e.g., photoprism:photoprism@tcp(mariadb:3306)/photoprism)
	OriginalsPath string // root of the PhotoPrism originals folder
}

type PlacesConfig struct {
	URL    string // nearby-search service URL, defaults to http://localhost:8100
	APIKey string
}

type EmbeddingConfig struct {
	URL string // defaults to http://localhost:8000
	Dim int    // defaults to 768
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL for album and embedding storage
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the photo HNSW index (optional, if empty index is rebuilt on startup)
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Library: LibraryConfig{
			Path: os.Getenv("LIBRARY_PATH"),
		},
		PhotoPrism: PhotoPrismConfig{
			DatabaseURL:   os.Getenv("PHOTOPRISM_DATABASE_URL"),
			OriginalsPath: os.Getenv("PHOTOPRISM_ORIGINALS_PATH"),
		},
		Places: PlacesConfig{
			URL:    os.Getenv("PLACES_URL"),
			APIKey: os.Getenv("PLACES_API_KEY"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 768),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
