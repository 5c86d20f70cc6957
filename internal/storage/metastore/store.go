// Пакет metastore — персистентное хранилище метаданных файлов.
//
// Контракт Store: Get/List/Put/Delete по имени файла, с долговременной
// записью при каждом изменении и read-after-write консистентностью
// внутри процесса. Реализации:
//   - JSONStore — один JSON-файл {"files": {...}}, атомарная перезапись
//   - SQLiteStore — таблица files в SQLite (modernc.org/sqlite)
//   - CachedStore — LRU-кэш поверх любого Store
package metastore

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

// ErrClosed — хранилище закрыто.
var ErrClosed = errors.New("хранилище метаданных закрыто")

// Store — хранилище метаданных: имя файла → FileRecord.
type Store interface {
	// Get возвращает запись или nil, если её нет.
	Get(filename string) (*model.FileRecord, error)
	// List возвращает все записи. Отсутствующие поля заполняются
	// значениями по умолчанию.
	List() ([]model.FileRecord, error)
	// Put создаёт или заменяет запись. Возвращает управление после
	// долговременной записи.
	Put(filename string, rec model.FileRecord) error
	// Delete удаляет запись. Отсутствие записи — не ошибка.
	Delete(filename string) error
	// Close освобождает ресурсы.
	Close() error
}

// Backend — тип хранилища метаданных.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Options — параметры открытия хранилища.
type Options struct {
	// Backend — json или sqlite
	Backend string
	// Path — путь к файлу хранилища
	Path string
	// CacheSize — размер LRU-кэша (0 — без кэша)
	CacheSize int
	// CacheTTL — время жизни записи в кэше
	CacheTTL time.Duration
}

// Open открывает хранилище по параметрам конфигурации.
func Open(opts Options, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch opts.Backend {
	case BackendJSON, "":
		store, err = OpenJSON(opts.Path, logger)
	case BackendSQLite:
		store, err = OpenSQLite(opts.Path, logger)
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища метаданных: %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.CacheSize > 0 {
		store = NewCachedStore(store, opts.CacheSize, opts.CacheTTL)
	}
	return store, nil
}
