// Пакет filestore — операции с физическими файлами в директории загрузок.
// Обеспечивает атомарную запись (temp → fsync → rename), получение пути,
// идемпотентное удаление и листинг с временем создания файла.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrNotFound — файл отсутствует в директории загрузок.
var ErrNotFound = errors.New("файл не найден")

// ErrInvalidName — имя файла содержит разделители пути или пустое.
var ErrInvalidName = errors.New("недопустимое имя файла")

// tempPrefix — префикс временных файлов. Скрытые файлы игнорируются
// watcher'ом и листингом.
const tempPrefix = ".upload-"

// maxNameRunes — ограничение длины исходного имени в имени хранения.
const maxNameRunes = 100

// FileStore — управление физическими файлами на диске.
type FileStore struct {
	// dir — директория загрузок
	dir string
	// now — источник времени для имён файлов (подменяется в тестах)
	now func() time.Time
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// Filename — присвоенное имя файла в директории загрузок
	Filename string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
}

// FileInfo — сведения о файле в директории загрузок.
type FileInfo struct {
	Name      string
	BirthTime time.Time
	Size      int64
}

// New создаёт новый FileStore. Создаёт директорию, если она не существует.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", dir, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абсолютный путь %s: %w", dir, err)
	}

	return &FileStore{dir: abs, now: time.Now}, nil
}

// Save записывает данные из reader на диск под уникальным именем.
// Формат имени: {unix_millis}-{uuid}-{sanitized original}.
//
// Паттерн: скрытый temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется, видимый файл не появляется.
func (fs *FileStore) Save(originalName string, reader io.Reader) (*SaveResult, error) {
	filename := generateStorageName(originalName, fs.now())
	fullPath := filepath.Join(fs.dir, filename)

	f, err := os.CreateTemp(fs.dir, tempPrefix+"*.tmp")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o640); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка установки прав: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		Filename: filename,
		FullPath: fullPath,
		Size:     size,
	}, nil
}

// Path возвращает абсолютный путь к существующему файлу.
// Возвращает ErrNotFound, если файла нет на момент вызова.
func (fs *FileStore) Path(filename string) (string, error) {
	fullPath, err := fs.resolve(filename)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return "", fmt.Errorf("ошибка получения информации о файле %s: %w", filename, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", filename, ErrNotFound)
	}

	return fullPath, nil
}

// Stat возвращает размер и время создания файла.
func (fs *FileStore) Stat(filename string) (*FileInfo, error) {
	fullPath, err := fs.resolve(filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения информации о файле %s: %w", filename, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
	}

	return &FileInfo{
		Name:      filename,
		BirthTime: birthTime(fullPath, info),
		Size:      info.Size(),
	}, nil
}

// Delete удаляет файл с диска.
// Возвращает nil, если файл уже не существует.
func (fs *FileStore) Delete(filename string) error {
	fullPath, err := fs.resolve(filename)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", filename, err)
	}
	return nil
}

// List возвращает обычные нескрытые файлы директории загрузок,
// отсортированные по времени создания (старые первые).
func (fs *FileStore) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", fs.dir, err)
	}

	result := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if IsIgnored(entry.Name()) || !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Файл удалён между ReadDir и Info
			continue
		}
		result = append(result, FileInfo{
			Name:      entry.Name(),
			BirthTime: birthTime(filepath.Join(fs.dir, entry.Name()), info),
			Size:      info.Size(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BirthTime.Before(result[j].BirthTime)
	})

	return result, nil
}

// Dir возвращает абсолютный путь директории загрузок.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// IsIgnored проверяет, что имя относится к служебному файлу
// (скрытые файлы, в том числе временные файлы загрузки).
func IsIgnored(name string) bool {
	return name == "" || strings.HasPrefix(name, ".")
}

// resolve проверяет имя и возвращает полный путь.
// Имена с разделителями пути отклоняются, выход за пределы директории невозможен.
func (fs *FileStore) resolve(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return "", fmt.Errorf("%q: %w", filename, ErrInvalidName)
	}
	return filepath.Join(fs.dir, filename), nil
}

// generateStorageName генерирует имя файла для хранения на диске.
// Формат: {unix_millis}-{uuid без дефисов}-{name}
// Пример: 1712345678901-9f8e7d6c5b4a39281706f5e4d3c2b1a0-report.pdf
func generateStorageName(originalName string, now time.Time) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), token, sanitize(originalName))
}

// sanitize убирает из имени разделители пути и управляющие символы.
// Буквы любых алфавитов, цифры и ". _-()+ " сохраняются, остальное
// заменяется на '_'. Ведущие точки удаляются, чтобы файл не стал скрытым.
func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}

	var result strings.Builder
	for _, r := range name {
		switch {
		case r == utf8.RuneError:
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r):
			result.WriteRune(r)
		case strings.ContainsRune("._-()+ ", r):
			result.WriteRune(r)
		default:
			result.WriteRune('_')
		}
	}

	s := strings.TrimLeft(strings.TrimSpace(result.String()), ".")
	if utf8.RuneCountInString(s) > maxNameRunes {
		runes := []rune(s)
		ext := filepath.Ext(s)
		if utf8.RuneCountInString(ext) < 16 {
			s = string(runes[:maxNameRunes-utf8.RuneCountInString(ext)]) + ext
		} else {
			s = string(runes[:maxNameRunes])
		}
	}
	if s == "" {
		return "file"
	}
	return s
}
