// Точка входа flyshare — сервиса обмена файлами в локальной сети.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/flyshare/internal/api/handlers"
	"github.com/bigkaa/flyshare/internal/api/openapi"
	"github.com/bigkaa/flyshare/internal/config"
	"github.com/bigkaa/flyshare/internal/realtime"
	"github.com/bigkaa/flyshare/internal/server"
	"github.com/bigkaa/flyshare/internal/service"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
	"github.com/bigkaa/flyshare/internal/storage/metastore"
	"github.com/bigkaa/flyshare/internal/storage/watcher"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("flyshare запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("upload_dir", cfg.UploadDir),
		slog.String("metadata_backend", cfg.MetadataBackend),
		slog.String("file_ttl", cfg.FileTTL.String()),
		slog.String("cleanup_interval", cfg.CleanupInterval.String()),
	)

	// --- Инициализация компонентов ---

	// 1. Контракт API
	doc, err := openapi.Load()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Файловое хранилище
	store, err := filestore.New(cfg.UploadDir)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Хранилище метаданных
	meta, err := metastore.Open(metastore.Options{
		Backend:   cfg.MetadataBackend,
		Path:      cfg.MetadataPath,
		CacheSize: cfg.MetadataCacheSize,
		CacheTTL:  cfg.MetadataCacheTTL,
	}, logger)
	if err != nil {
		logger.Error("Ошибка открытия хранилища метаданных", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Наблюдатель за директорией загрузок
	watch, err := watcher.New(store.Dir(), watcher.Options{
		Stability:    cfg.WatchStability,
		PollInterval: cfg.WatchPollInterval,
	}, logger)
	if err != nil {
		logger.Error("Ошибка инициализации watcher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Планировщик удаления поверх хранилища
	retention := service.NewRetentionScheduler(store, watch.Events(), service.RetentionOptions{
		TTL:         cfg.FileTTL,
		Interval:    cfg.CleanupInterval,
		SettleDelay: cfg.SettleDelay,
	}, logger)

	// 6. Координатор жизненного цикла файлов
	files := service.NewFileService(retention, meta, cfg.PublicURL, logger)

	// 7. Фоновые процессы
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подписчики FileService запускаются до наблюдателя:
	// события начального сканирования не теряются
	hub := realtime.NewHub(files, logger)
	go hub.Run(ctx)
	realtime.NewBroadcaster(files, hub, logger).Start(ctx)

	if err := files.Start(ctx); err != nil {
		logger.Error("Ошибка запуска FileService", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := retention.Start(ctx); err != nil {
		logger.Error("Ошибка запуска планировщика удаления", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := watch.Start(ctx); err != nil {
		logger.Error("Ошибка запуска watcher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reconcileSvc := service.NewReconcileService(files, cfg.ReconcileInterval, logger)
	reconcileSvc.Start(ctx)

	// 8. Handlers
	apiHandler := handlers.NewAPIHandler(
		handlers.NewFilesHandler(files, cfg.MaxUploadSize, logger),
		handlers.NewSystemHandler(store.Dir(), files, retention, hub, logger),
		handlers.NewMaintenanceHandler(reconcileSvc, retention),
		handlers.NewHealthHandler(store.Dir(), meta),
		hub,
		promhttp.Handler(),
	)

	// 9. Создание и запуск HTTP-сервера
	srv, err := server.New(cfg, logger, apiHandler, doc)
	if err != nil {
		logger.Error("Ошибка создания HTTP-сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runErr := srv.Run(ctx)
	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
	}

	// --- Graceful shutdown фоновых процессов ---
	logger.Info("Остановка фоновых процессов...")

	reconcileSvc.Stop()
	files.Stop()
	retention.Stop()
	watch.Stop()
	cancel()
	<-hub.Done()

	if err := meta.Close(); err != nil {
		logger.Error("Ошибка закрытия хранилища метаданных", slog.String("error", err.Error()))
	}

	logger.Info("flyshare остановлен")
	if runErr != nil {
		os.Exit(1)
	}
}
