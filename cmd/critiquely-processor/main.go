// Critiquely Processor — выполняет review-задачи из очереди.
//
// Processor:
//   - Получает задачи на code review из RabbitMQ
//   - Клонирует репозиторий и инспектирует изменённые файлы моделью
//   - Применяет рекомендации через инструменты и коммитит изменения
//   - Открывает PR с улучшениями и комментирует оригинальный PR
//
// Processors масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Critiquely/internal/config"
	"github.com/shaiso/Critiquely/internal/dispatcher"
	"github.com/shaiso/Critiquely/internal/engine"
	"github.com/shaiso/Critiquely/internal/gitops"
	"github.com/shaiso/Critiquely/internal/hosting"
	"github.com/shaiso/Critiquely/internal/llm"
	"github.com/shaiso/Critiquely/internal/mq"
	"github.com/shaiso/Critiquely/internal/repo"
	"github.com/shaiso/Critiquely/internal/telemetry"
	"github.com/shaiso/Critiquely/internal/tools"
	"github.com/shaiso/Critiquely/internal/workflow"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting critiquely-processor")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Postgres опционален: без него runs не персистятся,
	// а checkpoints живут в памяти процесса
	var runs dispatcher.RunStore
	var saver engine.Checkpointer[workflow.State]
	if cfg.DBURL != "" {
		pool, err := repo.NewPool(ctx, cfg.DBURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("database connected")

		runs = repo.NewRunRepo(pool)
		saver = repo.NewCheckpointRepo[workflow.State](pool)
	} else {
		logger.Warn("DB_URL is not set, runs will not be persisted")
		saver = engine.NewMemorySaver[workflow.State]()
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(cfg.RabbitURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	host, err := hosting.New(cfg.GitHubToken)
	if err != nil {
		logger.Error("failed to create GitHub client", "error", err)
		os.Exit(1)
	}

	git := gitops.New(gitops.Config{
		Token:   cfg.GitHubToken,
		TempDir: cfg.TempDir,
	})

	// Собираем review-граф
	nodes := workflow.NewNodes(workflow.Config{
		Git:  git,
		Host: host,
		Model: llm.New(llm.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		}),
		Tools: func(root string) workflow.ToolRunner {
			return tools.FSRegistry(root)
		},
		MaxToolRounds: cfg.MaxToolRounds,
		Logger:        logger,
	})

	runner, err := workflow.Build(nodes, engine.RunConfig[workflow.State]{Saver: saver})
	if err != nil {
		logger.Error("failed to build review graph", "error", err)
		os.Exit(1)
	}

	// Запускаем dispatcher
	d := dispatcher.New(dispatcher.Config{
		Conn:    mqConn,
		Queue:   cfg.QueueName,
		Runner:  runner,
		Runs:    runs,
		Cleanup: git.Cleanup,
		Logger:  logger,
	})

	if err := d.Start(ctx); err != nil {
		logger.Error("failed to start dispatcher", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := http.ListenAndServe(cfg.HTTPAddr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем dispatcher
	d.Stop()
	logger.Info("critiquely-processor stopped")
}
