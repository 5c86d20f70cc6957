// Пакет config — загрузка и валидация конфигурации flyshare
// из переменных окружения (и опционального .env файла).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Бэкенды хранилища метаданных.
const (
	MetadataBackendJSON   = "json"
	MetadataBackendSQLite = "sqlite"
)

// defaultEnvFile — .env в рабочей директории, читается если существует.
const defaultEnvFile = ".env"

// Config содержит все параметры конфигурации flyshare.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Директория загрузок
	UploadDir string
	// Бэкенд метаданных: json или sqlite
	MetadataBackend string
	// Путь к файлу метаданных
	MetadataPath string
	// Размер LRU-кэша метаданных (0 — кэш выключен)
	MetadataCacheSize int
	// Время жизни записи в кэше метаданных
	MetadataCacheTTL time.Duration
	// Время жизни файла
	FileTTL time.Duration
	// Период удаления просроченных файлов
	CleanupInterval time.Duration
	// Задержка проверки пустого хранилища после удаления
	SettleDelay time.Duration
	// Окно стабильности файла для наблюдателя
	WatchStability time.Duration
	// Период опроса ожидающих файлов
	WatchPollInterval time.Duration
	// Интервал автоматической сверки
	ReconcileInterval time.Duration
	// Публичный адрес сервиса, основа адресов скачивания
	PublicURL string
	// Максимальный размер тела запроса загрузки
	MaxUploadSize int64
	// Разрешённые CORS origins
	CORSOrigins []string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Таймауты HTTP-сервера. WriteTimeout = 0 отключает ограничение:
	// скачивание больших файлов может длиться долго
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
// Перед чтением окружения подгружается .env (FLYSHARE_ENV_FILE или
// .env в рабочей директории). Уже заданные переменные не перезаписываются.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	var err error

	// FLYSHARE_PORT — порт HTTP-сервера (PORT — запасной вариант, по умолчанию 4001)
	port, err := getEnvInt("FLYSHARE_PORT", 0)
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_PORT: %w", err)
	}
	if port == 0 {
		port, err = getEnvInt("PORT", 4001)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("FLYSHARE_PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	cfg.UploadDir = getEnvDefault("FLYSHARE_UPLOAD_DIR", "./uploads")

	// FLYSHARE_METADATA_BACKEND — json (по умолчанию) или sqlite
	cfg.MetadataBackend = strings.ToLower(getEnvDefault("FLYSHARE_METADATA_BACKEND", MetadataBackendJSON))
	defaultMetaPath := "./metadata/db.json"
	switch cfg.MetadataBackend {
	case MetadataBackendJSON:
	case MetadataBackendSQLite:
		defaultMetaPath = "./metadata/db.sqlite"
	default:
		return nil, fmt.Errorf("FLYSHARE_METADATA_BACKEND: недопустимое значение %q, допустимые: json, sqlite", cfg.MetadataBackend)
	}
	cfg.MetadataPath = getEnvDefault("FLYSHARE_METADATA_PATH", defaultMetaPath)

	cfg.MetadataCacheSize, err = getEnvInt("FLYSHARE_METADATA_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_METADATA_CACHE_SIZE: %w", err)
	}
	if cfg.MetadataCacheSize < 0 {
		return nil, fmt.Errorf("FLYSHARE_METADATA_CACHE_SIZE: значение не может быть отрицательным")
	}

	if cfg.MetadataCacheTTL, err = getEnvPositiveDuration("FLYSHARE_METADATA_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	// FLYSHARE_FILE_TTL — время жизни файла (по умолчанию 12h)
	if cfg.FileTTL, err = getEnvPositiveDuration("FLYSHARE_FILE_TTL", 12*time.Hour); err != nil {
		return nil, err
	}

	// FLYSHARE_CLEANUP_INTERVAL — период sweep (по умолчанию 6h)
	if cfg.CleanupInterval, err = getEnvPositiveDuration("FLYSHARE_CLEANUP_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}

	if cfg.SettleDelay, err = getEnvPositiveDuration("FLYSHARE_SETTLE_DELAY", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.WatchStability, err = getEnvPositiveDuration("FLYSHARE_WATCH_STABILITY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.WatchPollInterval, err = getEnvPositiveDuration("FLYSHARE_WATCH_POLL_INTERVAL", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = getEnvPositiveDuration("FLYSHARE_RECONCILE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	cfg.PublicURL = strings.TrimRight(getEnvDefault("FLYSHARE_PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	if !strings.HasPrefix(cfg.PublicURL, "http://") && !strings.HasPrefix(cfg.PublicURL, "https://") {
		return nil, fmt.Errorf("FLYSHARE_PUBLIC_URL: ожидается адрес http:// или https://, получено %q", cfg.PublicURL)
	}

	// FLYSHARE_MAX_UPLOAD_SIZE — ограничение тела запроса (по умолчанию 1 GiB)
	cfg.MaxUploadSize, err = getEnvInt64("FLYSHARE_MAX_UPLOAD_SIZE", 1<<30)
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("FLYSHARE_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	cfg.CORSOrigins = splitList(getEnvDefault("FLYSHARE_CORS_ORIGINS", "*"))
	if len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("FLYSHARE_CORS_ORIGINS: пустой список")
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("FLYSHARE_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("FLYSHARE_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FLYSHARE_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout, err = getEnvPositiveDuration("FLYSHARE_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.ReadTimeout, err = getEnvDuration("FLYSHARE_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.WriteTimeout, err = getEnvDuration("FLYSHARE_HTTP_WRITE_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.IdleTimeout, err = getEnvDuration("FLYSHARE_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FLYSHARE_HTTP_IDLE_TIMEOUT: %w", err)
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return nil, fmt.Errorf("таймауты HTTP-сервера не могут быть отрицательными")
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// loadEnvFile подгружает переменные из FLYSHARE_ENV_FILE (файл обязан
// существовать) или из .env в рабочей директории (если он есть).
func loadEnvFile() error {
	if path := os.Getenv("FLYSHARE_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("FLYSHARE_ENV_FILE: ошибка чтения %s: %w", path, err)
		}
		return nil
	}

	err := godotenv.Load(defaultEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка чтения %s: %w", defaultEnvFile, err)
	}
	return nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	return d, nil
}

// getEnvPositiveDuration — getEnvDuration с проверкой d > 0.
// Ошибка уже содержит имя переменной.
func getEnvPositiveDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: значение должно быть положительным, получено %s", key, d)
	}
	return d, nil
}

// splitList разбирает список через запятую, отбрасывая пустые элементы.
func splitList(val string) []string {
	var result []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
