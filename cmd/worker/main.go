package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/avazquez/docquery/internal/config"
	"github.com/avazquez/docquery/internal/database"
	"github.com/avazquez/docquery/internal/document"
	"github.com/avazquez/docquery/internal/embedding"
	"github.com/avazquez/docquery/internal/llm"
	"github.com/avazquez/docquery/internal/queue"
	"github.com/avazquez/docquery/internal/queue/workers"
	"github.com/avazquez/docquery/internal/rag"
	"github.com/avazquez/docquery/internal/tools"
	"github.com/avazquez/docquery/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	vs := vectorstore.NewPgVectorStore(db)
	docSvc := document.NewService(db, vs)
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	gw := llm.NewGateway(cfg.LLM)
	embedSvc := embedding.NewService(gw, cfg.LLM.EmbeddingModel)
	registry := tools.NewRegistry(vs, embedSvc, cfg.LLM.TopK, cfg.Similarity)
	pipeline := rag.NewPipeline(vs, embedSvc, gw, registry, cfg)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := queue.NewMux(
		workers.NewDocumentWorker(docSvc, queueClient),
		workers.NewIngestWorker(docSvc, pipeline),
	)

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
