// Package main 文档问答服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"doc-rag-api/internal/application/rag"
	"doc-rag-api/internal/config"
	"doc-rag-api/internal/infrastructure/embedding"
	"doc-rag-api/internal/infrastructure/llm"
	"doc-rag-api/internal/infrastructure/persistence/milvus"
	"doc-rag-api/internal/infrastructure/persistence/postgres"
	"doc-rag-api/internal/infrastructure/persistence/redis"
	"doc-rag-api/internal/interfaces/http/handler"
	"doc-rag-api/internal/interfaces/http/router"
	"doc-rag-api/pkg/logger"
	"doc-rag-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-server",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 基础设施客户端
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to postgres", err)
	}
	defer pgClient.Close()

	if err := pgClient.AutoMigrate(); err != nil {
		logger.Fatal(ctx, "failed to migrate database schema", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer redisClient.Close()

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to milvus", err)
	}
	defer milvusClient.Close()

	vectorRepo := milvus.NewRepository(milvusClient)
	if err := vectorRepo.EnsureCollection(ctx); err != nil {
		logger.Fatal(ctx, "failed to ensure milvus collection", err)
	}

	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to create embedder", err)
	}

	llmFactory := llm.NewEinoFactory(cfg)

	// 仓储
	docRepo := postgres.NewDocumentRepository(pgClient)
	roomRepo := postgres.NewChatRoomRepository(pgClient)
	queryRepo := postgres.NewQueryRepository(pgClient)
	messageRepo := postgres.NewChatMessageRepository(pgClient)

	cache := redis.NewCache(redisClient)
	limiter := redis.NewRateLimiter(redisClient)

	// 应用服务
	indexer := rag.NewIndexer(embedder, vectorRepo, docRepo, llmFactory,
		cfg.Embedding.BatchSize, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	judge := rag.NewJudge(llmFactory)
	engine := rag.NewEngine(embedder, vectorRepo, judge, llmFactory,
		roomRepo, queryRepo, messageRepo, cfg.Retrieval.TopK)
	deleter := rag.NewDeleter(docRepo, vectorRepo)

	// HTTP 层
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(pgClient, redisClient, milvusClient),
		Document:  handler.NewDocumentHandler(indexer, deleter, docRepo, vectorRepo, cache),
		Query:     handler.NewQueryHandler(engine),
		ChatRoom:  handler.NewChatRoomHandler(roomRepo, messageRepo, cache),
		Dashboard: handler.NewDashboardHandler(docRepo, roomRepo, queryRepo, cache),
	}

	r := router.New(cfg, handlers, limiter)

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
