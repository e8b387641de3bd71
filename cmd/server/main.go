package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"prodicity.app/engage/common/id"
	"prodicity.app/engage/common/llm"
	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/common/otel"
	"prodicity.app/engage/core/config"
	"prodicity.app/engage/internal/analyzer"
	"prodicity.app/engage/internal/composer"
	"prodicity.app/engage/internal/http/middleware"
	httprouter "prodicity.app/engage/internal/http/router"
	"prodicity.app/engage/internal/knowledge"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/pipeline"
	"prodicity.app/engage/internal/threadstate"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "engage starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	analyzerLLM, err := llm.New(llmConfig(cfg.AnalyzerLLM))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create analyzer llm client", "error", err)
		os.Exit(1)
	}
	composerLLM, err := llm.New(llmConfig(cfg.ComposerLLM))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create composer llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm clients ready",
		"analyzer_model", analyzerLLM.Model(),
		"composer_model", composerLLM.Model())

	var knowStore knowledge.Store
	var retriever *knowledge.Retriever
	if cfg.Knowledge.Enabled() {
		knowStore, err = knowledge.NewStore(knowledge.Config{
			URL:        cfg.Knowledge.URL,
			APIKey:     cfg.Knowledge.APIKey,
			Collection: cfg.Knowledge.Collection,
			TopK:       cfg.Knowledge.TopK,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create knowledge store", "error", err)
			os.Exit(1)
		}
		if err := knowStore.EnsureCollection(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to ensure knowledge collection", "error", err)
			os.Exit(1)
		}
		retriever = knowledge.NewRetriever(knowStore, cfg.Knowledge.TopK)
		slog.InfoContext(ctx, "knowledge base connected", "collection", cfg.Knowledge.Collection)
	} else {
		slog.InfoContext(ctx, "knowledge base disabled (typesense not configured)")
	}

	var threads *threadstate.Store
	if cfg.ThreadState.Enabled() {
		threads, err = threadstate.New(threadstate.Config{
			RedisURL: cfg.ThreadState.RedisURL,
			TTL:      time.Duration(cfg.ThreadState.TTLDays) * 24 * time.Hour,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create thread state store", "error", err)
			os.Exit(1)
		}
		defer threads.Close()
		if err := threads.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "thread state store connected")
	} else {
		slog.InfoContext(ctx, "thread state store disabled (redis not configured)")
	}

	pipe := pipeline.New(
		analyzer.New(analyzerLLM, cfg.AnalyzerLLM.MaxTokens, cfg.AnalyzerLLM.Temperature),
		phase.NewGate(phase.Config{AllowHelpRequestBypass: cfg.Gate.AllowHelpRequestBypass}),
		retrieverOrNil(retriever),
		composer.New(composerLLM, cfg.Composer.MaxResponseChars, cfg.ComposerLLM.MaxTokens, cfg.ComposerLLM.Temperature),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, pipe, threads, knowStore)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, pipe *pipeline.Pipeline, threads *threadstate.Store, know knowledge.Store) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	deps := httprouter.Dependencies{Pipeline: pipe, Know: know}
	if threads != nil {
		deps.Threads = threads
	}

	httprouter.SetupRoutes(router, deps, httprouter.RouterConfig{
		AdminAPIKey:  cfg.AdminAPIKey,
		IsProduction: cfg.IsProduction(),
	})

	return router
}

func llmConfig(cfg config.LLMConfig) llm.Config {
	return llm.Config{
		Provider:        cfg.Provider,
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		Model:           cfg.Model,
		ReasoningEffort: llm.ReasoningEffort(cfg.ReasoningEffort),
	}
}

// retrieverOrNil keeps the pipeline's Retriever field a clean nil when the
// knowledge base is disabled, instead of a non-nil interface holding a nil
// pointer.
func retrieverOrNil(r *knowledge.Retriever) pipeline.Retriever {
	if r == nil {
		return nil
	}
	return r
}

const banner = `
███████╗███╗   ██╗ ██████╗  █████╗  ██████╗ ███████╗
██╔════╝████╗  ██║██╔════╝ ██╔══██╗██╔════╝ ██╔════╝
█████╗  ██╔██╗ ██║██║  ███╗███████║██║  ███╗█████╗
██╔══╝  ██║╚██╗██║██║   ██║██╔══██║██║   ██║██╔══╝
███████╗██║ ╚████║╚██████╔╝██║  ██║╚██████╔╝███████╗
╚══════╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`
