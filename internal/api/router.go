package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/avazquez/docquery/internal/api/handlers"
	"github.com/avazquez/docquery/internal/api/middleware"
	"github.com/avazquez/docquery/internal/auth"
	"github.com/avazquez/docquery/internal/cache"
	"github.com/avazquez/docquery/internal/config"
	"github.com/avazquez/docquery/internal/document"
	"github.com/avazquez/docquery/internal/embedding"
	"github.com/avazquez/docquery/internal/llm"
	"github.com/avazquez/docquery/internal/queue"
	"github.com/avazquez/docquery/internal/rag"
	"github.com/avazquez/docquery/internal/tools"
	"github.com/avazquez/docquery/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	vs := vectorstore.NewPgVectorStore(rt.db)
	docSvc := document.NewService(rt.db, vs)
	queueClient := queue.NewClient(rt.cfg.Redis)
	answerCache := cache.NewCache(rt.redis)

	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel)
	registry := tools.NewRegistry(vs, embedSvc, rt.cfg.LLM.TopK, rt.cfg.Similarity)
	ragPipeline := rag.NewPipeline(vs, embedSvc, rt.llmGW, registry, rt.cfg)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		// Document routes
		docH := handlers.NewDocumentHandler(docSvc, queueClient)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Delete("/{id}", docH.Delete)
			r.Get("/{id}/status", docH.Status)
		})

		// Chat route: the main question-answering entrypoint
		chatH := handlers.NewChatHandler(ragPipeline, answerCache)
		r.Post("/chat", chatH.Chat)

		// RAG routes
		ragH := handlers.NewRAGHandler(ragPipeline)
		r.Route("/rag", func(r chi.Router) {
			r.Post("/query", ragH.Query)
			r.Post("/search", ragH.Search)
		})

		// LLM routes
		llmH := handlers.NewLLMHandler(rt.llmGW)
		r.Route("/llm", func(r chi.Router) {
			r.Post("/chat", llmH.Chat)
			r.Post("/chat/stream", llmH.ChatStream)
			r.Post("/embed", llmH.Embed)
			r.Get("/models", llmH.Models)
		})
	})

	return r
}
