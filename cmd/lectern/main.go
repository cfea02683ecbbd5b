package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/lectern-ai/lectern/internal/agent"
	"github.com/lectern-ai/lectern/internal/ai"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/db"
	"github.com/lectern-ai/lectern/internal/docstore"
	"github.com/lectern-ai/lectern/internal/handler"
	"github.com/lectern-ai/lectern/internal/ingest"
	"github.com/lectern-ai/lectern/internal/job"
	"github.com/lectern-ai/lectern/internal/middleware"
	"github.com/lectern-ai/lectern/internal/repo"
	"github.com/lectern-ai/lectern/internal/schedule"
	"github.com/lectern-ai/lectern/internal/search"
	"github.com/lectern-ai/lectern/internal/service"
	"github.com/lectern-ai/lectern/internal/session"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lectern",
		Short: "lectern course materials assistant",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run lectern server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("docs_store", cfg.Docs.Type),
	)

	chatProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider := chatProvider
	if cfg.AI.EmbedProvider != cfg.AI.Provider {
		embedProvider, err = ai.NewProvider(cfg.AI.EmbedProvider, cfg.AI.Data)
		if err != nil {
			return fmt.Errorf("init embed provider: %w", err)
		}
	}

	courseRepo := repo.NewCourseRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel)
	engine := search.NewEngine(courseRepo, chunkRepo, embedder, cfg.Search.MaxResults)

	sessions := session.NewManager(cfg.Session.MaxHistory, time.Duration(cfg.Session.TTLMinutes)*time.Minute)
	generator := agent.NewGenerator(ai.NewChatClient(chatProvider, cfg.AI.Model))
	ragService := service.NewRAGService(engine, generator, sessions, chatProvider, cfg.AI.Timeout)

	store, err := docstore.New(cfg.Docs)
	if err != nil {
		return fmt.Errorf("init doc store: %w", err)
	}
	ingestor := ingest.NewIngestor(store, engine, cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	courses, chunks, err := ingestor.LoadAll(ctx, false)
	if err != nil {
		logutil.GetLogger(ctx).Warn("startup ingestion failed", zap.Error(err))
	} else if courses > 0 {
		logutil.GetLogger(ctx).Info("startup ingestion done", zap.Int("courses", courses), zap.Int("chunks", chunks))
	}

	var scheduler *schedule.CronScheduler
	if cfg.Docs.RefreshCron != "" {
		scheduler = schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewDocsRefreshJob(ingestor), cfg.Docs.RefreshCron); err != nil {
			return fmt.Errorf("schedule docs refresh: %w", err)
		}
		scheduler.Start(ctx)
	}

	deps := handler.RouterDeps{
		RAG: handler.NewRAGHandler(ragService),
	}

	engineWeb, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engineWeb.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	if scheduler != nil {
		scheduler.Stop()
	}
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
