package metastore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

// SQLiteStore — хранилище метаданных в SQLite.
// Столбцы nullable: пустые значения дополняются по умолчанию при чтении.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite открывает (или создаёт) базу метаданных и таблицу files.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы метаданных %s: %w", path, err)
	}
	// Один писатель: SQLite сериализует запись, пул соединений не нужен
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		logger: logger.With(slog.String("component", "metastore_sqlite")),
	}

	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	s.logger.Info("Хранилище метаданных открыто", slog.String("path", path))
	return s, nil
}

// initTables создаёт таблицу files.
func (s *SQLiteStore) initTables() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS files (
		filename TEXT PRIMARY KEY,
		display_name TEXT,
		size INTEGER,
		mime_type TEXT,
		created_at TEXT,
		delete_on_download INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at);
	`

	_, err := s.db.Exec(query)
	return err
}

// Get возвращает запись или nil, если её нет.
func (s *SQLiteStore) Get(filename string) (*model.FileRecord, error) {
	row := s.db.QueryRow(`
	SELECT filename, display_name, size, mime_type, created_at, delete_on_download
	FROM files WHERE filename = ?`, filename)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения метаданных %s: %w", filename, err)
	}
	return rec, nil
}

// List возвращает все записи, новые первые.
func (s *SQLiteStore) List() ([]model.FileRecord, error) {
	rows, err := s.db.Query(`
	SELECT filename, display_name, size, mime_type, created_at, delete_on_download
	FROM files`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка метаданных: %w", err)
	}
	defer rows.Close()

	result := make([]model.FileRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки метаданных: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка метаданных: %w", err)
	}

	sortByDate(result)
	return result, nil
}

// Put создаёт или заменяет запись.
func (s *SQLiteStore) Put(filename string, rec model.FileRecord) error {
	_, err := s.db.Exec(`
	INSERT OR REPLACE INTO files (
		filename, display_name, size, mime_type, created_at, delete_on_download
	) VALUES (?, ?, ?, ?, ?, ?)`,
		filename,
		rec.DisplayName,
		rec.Size,
		rec.MimeType,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.DeleteOnDownload,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения метаданных %s: %w", filename, err)
	}
	return nil
}

// Delete удаляет запись.
func (s *SQLiteStore) Delete(filename string) error {
	if _, err := s.db.Exec(`DELETE FROM files WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("ошибка удаления метаданных %s: %w", filename, err)
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner — общий интерфейс *sql.Row и *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.FileRecord, error) {
	var (
		filename         string
		displayName      sql.NullString
		size             sql.NullInt64
		mimeType         sql.NullString
		createdAt        sql.NullString
		deleteOnDownload sql.NullBool
	)

	if err := row.Scan(&filename, &displayName, &size, &mimeType, &createdAt, &deleteOnDownload); err != nil {
		return nil, err
	}

	rec := &model.FileRecord{
		Filename:         filename,
		DisplayName:      displayName.String,
		Size:             size.Int64,
		MimeType:         mimeType.String,
		DeleteOnDownload: deleteOnDownload.Bool,
	}
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, createdAt.String); err == nil {
			rec.CreatedAt = t
		}
	}
	rec.ApplyDefaults()
	return rec, nil
}
