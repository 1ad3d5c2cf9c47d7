package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	"github.com/christian-word/bible-mcp/bible"
	"github.com/christian-word/bible-mcp/docstore"
	"github.com/christian-word/bible-mcp/readers"
	"github.com/mark3labs/mcp-go/server"
)

func createEmbeddingFunction(cfg *SemanticConfig) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAI != nil {
		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.OpenAI.ApiKey,
			openai.WithModel(openai.EmbeddingModel(cfg.OpenAI.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.Gemini != nil {
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.Gemini.ApiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Gemini.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	return nil, errors.New("invalid embeddings provider configuration")
}

func initDocStore(cfg *SemanticConfig, reset bool) (*docstore.ChromaStore, error) {
	ef, err := createEmbeddingFunction(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding function: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := docstore.NewChromaStore(ctx, docstore.ChromaStoreConfig{
		BaseURL:       cfg.ChromaAddr,
		Collection:    cfg.Collection,
		EmbeddingFunc: ef,
		Results:       cfg.Results,
		RequestSize:   cfg.RequestSize,
		Reset:         reset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Chroma verse store: %w", err)
	}

	return store, nil
}

func main() {
	reset := flag.Bool("reset", false, "Reinitializes the semantic index from scratch if set")
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the MCP server")
	flag.Parse()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	var retriever verseRetriever
	var index VerseIndex
	if cfg.Semantic != nil {
		store, err := initDocStore(cfg.Semantic, *reset || cfg.Semantic.Reset)
		if err != nil {
			log.Fatal(err)
		}

		retriever, index = store, store
	}

	reg := NewCorpusRegistry(logger, cfg.Source, func() *bible.Bible {
		return bible.New(readers.NewUniversalReader(cfg.Source, logger),
			bible.WithLogger(logger),
			bible.WithLoadTimeout(cfg.loadTimeout()),
			bible.WithPatternTimeout(cfg.patternTimeout()))
	})
	reg.mergeEventsDelay = cfg.reloadDebounce()
	reg.index = index

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		// queries report load errors themselves, so keep serving
		if err := reg.Sync(ctx); err != nil {
			logger.Error("initial sync failed", "error", err)
		}

		if cfg.Watch {
			if err := reg.Watch(ctx); err != nil {
				logger.Error("failed to watch corpus source", "error", err)
			}
		}
	}()

	srv := NewBibleServer(reg, retriever, cfg.patternTimeout())
	switch cfg.Transport {
	case "stdio":
		err = server.ServeStdio(srv)
	default:
		sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
		err = sse.Start(cfg.ServerAddr)
	}
	if err != nil {
		log.Println(err)
	}
}
