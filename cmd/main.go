package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"estate-insights/internal/chunker"
	"estate-insights/internal/config"
	"estate-insights/internal/embedding"
	"estate-insights/internal/llm"
	"estate-insights/internal/location"
	"estate-insights/internal/market"
	"estate-insights/internal/rag"
	"estate-insights/internal/recommend"
	"estate-insights/internal/server"
	"estate-insights/internal/session"
	"estate-insights/internal/valuation"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	completer, err := llm.NewCompleter(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing completion client")
	}

	recommender, err := recommend.Load(cfg.Artifacts.SimilarityPath, &cfg.Recommender)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading recommender artifact")
	}

	finder, err := location.Load(cfg.Artifacts.LocationPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading location artifact")
	}

	store, err := market.Load(cfg.Artifacts.PropertiesCSV)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading properties dataset")
	}

	deps := server.Deps{
		Sessions:    session.NewManager(time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute),
		Ingestor:    rag.NewIngestor(chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap), embedder),
		Responder:   rag.NewResponder(embedder, completer, cfg.RAG.TopK),
		Predictor:   valuation.NewClient(&cfg.Valuation),
		Recommender: recommender,
		Locations:   finder,
		Market:      store,
	}

	srv := server.New(cfg, deps)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
