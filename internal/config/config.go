package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	EmbedLLM    LLMConfig         `yaml:"embed_llm"`
	ChatLLM     LLMConfig         `yaml:"chat_llm"`
	RAG         RAGConfig         `yaml:"rag"`
	Valuation   ValuationConfig   `yaml:"valuation"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Artifacts   ArtifactsConfig   `yaml:"artifacts"`
}

type ServerConfig struct {
	Port               string `yaml:"port"`
	CorsAllowedOrigins string `yaml:"cors_allowed_origins"`
	SessionTTLMinutes  int    `yaml:"session_ttl_minutes"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	KeyEnv  string `yaml:"key_env"`
	Model   string `yaml:"model"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type ValuationConfig struct {
	BaseURL string `yaml:"base_url"`
}

// RecommenderConfig carries the matrix weights and the match-percentage
// normalizer. The values are compatibility constants from the prebuilt
// artifacts, not tunables with a derivation.
type RecommenderConfig struct {
	FacilityWeight float64 `yaml:"facility_weight"`
	PriceWeight    float64 `yaml:"price_weight"`
	LocationWeight float64 `yaml:"location_weight"`
	MatchNormalize float64 `yaml:"match_normalize"`
}

type ArtifactsConfig struct {
	SimilarityPath string `yaml:"similarity_path"`
	LocationPath   string `yaml:"location_path"`
	PropertiesCSV  string `yaml:"properties_csv"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.Server.CorsAllowedOrigins == "" {
		cfg.Server.CorsAllowedOrigins = "http://localhost:5173"
	}
	if cfg.Server.SessionTTLMinutes == 0 {
		cfg.Server.SessionTTLMinutes = 60
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.EmbedLLM.KeyEnv == "" {
		cfg.EmbedLLM.KeyEnv = "OPENAI_API_KEY"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "text-embedding-3-small"
	}
	if cfg.ChatLLM.BaseURL == "" {
		cfg.ChatLLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ChatLLM.KeyEnv == "" {
		cfg.ChatLLM.KeyEnv = "OPENAI_API_KEY"
	}
	if cfg.ChatLLM.Model == "" {
		cfg.ChatLLM.Model = "gpt-4.1"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 50
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.Recommender.FacilityWeight == 0 {
		cfg.Recommender.FacilityWeight = 30
	}
	if cfg.Recommender.PriceWeight == 0 {
		cfg.Recommender.PriceWeight = 20
	}
	if cfg.Recommender.LocationWeight == 0 {
		cfg.Recommender.LocationWeight = 8
	}
	if cfg.Recommender.MatchNormalize == 0 {
		cfg.Recommender.MatchNormalize = 58
	}
	if cfg.Artifacts.SimilarityPath == "" {
		cfg.Artifacts.SimilarityPath = "./artifacts/recommender.json"
	}
	if cfg.Artifacts.LocationPath == "" {
		cfg.Artifacts.LocationPath = "./artifacts/location.json"
	}
	if cfg.Artifacts.PropertiesCSV == "" {
		cfg.Artifacts.PropertiesCSV = "./artifacts/properties.csv"
	}
}
