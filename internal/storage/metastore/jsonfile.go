package metastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

// jsonDocument — формат файла метаданных: {"files": {"<filename>": {...}}}.
type jsonDocument struct {
	Files map[string]jsonRecord `json:"files"`
}

// jsonRecord — запись в файле. Все поля опциональны: записи,
// созданные вручную или старыми версиями, дополняются значениями
// по умолчанию при чтении. url не сохраняется — он вычисляемый.
type jsonRecord struct {
	Filename         string     `json:"filename,omitempty"`
	DisplayName      *string    `json:"displayName,omitempty"`
	Size             *int64     `json:"size,omitempty"`
	MimeType         *string    `json:"mimetype,omitempty"`
	CreatedAt        *time.Time `json:"date,omitempty"`
	DeleteOnDownload *bool      `json:"deleteOnDownload,omitempty"`
}

// JSONStore — хранилище метаданных в одном JSON-файле.
// Все записи держатся в памяти (RWMutex), каждое изменение
// атомарно перезаписывает файл: temp → fsync → rename.
type JSONStore struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	files  map[string]jsonRecord
	closed bool
}

// OpenJSON открывает (или создаёт) JSON-хранилище метаданных.
// Невалидный JSON — ошибка: перезаписывать повреждённый файл нельзя.
func OpenJSON(path string, logger *slog.Logger) (*JSONStore, error) {
	s := &JSONStore{
		path:   path,
		files:  make(map[string]jsonRecord),
		logger: logger.With(slog.String("component", "metastore_json")),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.flushLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения файла метаданных %s: %w", path, err)
	case len(data) > 0:
		var doc jsonDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("ошибка десериализации файла метаданных %s: %w", path, err)
		}
		if doc.Files != nil {
			s.files = doc.Files
		}
	}

	s.logger.Info("Хранилище метаданных открыто",
		slog.String("path", path),
		slog.Int("files", len(s.files)),
	)

	return s, nil
}

// Get возвращает копию записи или nil, если её нет.
func (s *JSONStore) Get(filename string) (*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	stored, ok := s.files[filename]
	if !ok {
		return nil, nil
	}
	rec := fromJSON(filename, stored)
	return &rec, nil
}

// List возвращает все записи, отсортированные по дате (новые первые).
func (s *JSONStore) List() ([]model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	result := make([]model.FileRecord, 0, len(s.files))
	for name, stored := range s.files {
		result = append(result, fromJSON(name, stored))
	}
	sortByDate(result)
	return result, nil
}

// Put сохраняет запись и перезаписывает файл. При ошибке записи
// состояние в памяти откатывается.
func (s *JSONStore) Put(filename string, rec model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prev, existed := s.files[filename]
	s.files[filename] = toJSON(filename, rec)

	if err := s.flushLocked(); err != nil {
		if existed {
			s.files[filename] = prev
		} else {
			delete(s.files, filename)
		}
		return err
	}
	return nil
}

// Delete удаляет запись. Отсутствие записи — не ошибка, файл не перезаписывается.
func (s *JSONStore) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prev, ok := s.files[filename]
	if !ok {
		return nil
	}
	delete(s.files, filename)

	if err := s.flushLocked(); err != nil {
		s.files[filename] = prev
		return err
	}
	return nil
}

// Close закрывает хранилище. Данные уже записаны каждой операцией.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// flushLocked атомарно записывает текущее состояние в файл.
// Вызывается под s.mu.
func (s *JSONStore) flushLocked() error {
	data, err := json.MarshalIndent(jsonDocument{Files: s.files}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	tmpPath := s.path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

func toJSON(filename string, rec model.FileRecord) jsonRecord {
	createdAt := rec.CreatedAt.UTC()
	return jsonRecord{
		Filename:         filename,
		DisplayName:      &rec.DisplayName,
		Size:             &rec.Size,
		MimeType:         &rec.MimeType,
		CreatedAt:        &createdAt,
		DeleteOnDownload: &rec.DeleteOnDownload,
	}
}

func fromJSON(filename string, stored jsonRecord) model.FileRecord {
	rec := model.FileRecord{Filename: filename}
	if stored.DisplayName != nil {
		rec.DisplayName = *stored.DisplayName
	}
	if stored.Size != nil {
		rec.Size = *stored.Size
	}
	if stored.MimeType != nil {
		rec.MimeType = *stored.MimeType
	}
	if stored.CreatedAt != nil {
		rec.CreatedAt = *stored.CreatedAt
	}
	if stored.DeleteOnDownload != nil {
		rec.DeleteOnDownload = *stored.DeleteOnDownload
	}
	rec.ApplyDefaults()
	return rec
}

// sortByDate сортирует записи по дате (новые первые), при равенстве — по имени.
func sortByDate(records []model.FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Filename < records[j].Filename
	})
}
