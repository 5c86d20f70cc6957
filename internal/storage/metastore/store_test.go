package metastore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// backends — все реализации Store для общего набора тестов.
// open открывает хранилище по пути; повторный вызов с тем же путём
// имитирует рестарт процесса.
var backends = []struct {
	name string
	file string
	open func(t *testing.T, path string) Store
}{
	{
		name: "json",
		file: "db.json",
		open: func(t *testing.T, path string) Store {
			s, err := OpenJSON(path, testLogger())
			if err != nil {
				t.Fatalf("ошибка открытия JSONStore: %v", err)
			}
			return s
		},
	},
	{
		name: "sqlite",
		file: "db.sqlite",
		open: func(t *testing.T, path string) Store {
			s, err := OpenSQLite(path, testLogger())
			if err != nil {
				t.Fatalf("ошибка открытия SQLiteStore: %v", err)
			}
			return s
		},
	},
	{
		name: "cached-json",
		file: "db.json",
		open: func(t *testing.T, path string) Store {
			s, err := OpenJSON(path, testLogger())
			if err != nil {
				t.Fatalf("ошибка открытия JSONStore: %v", err)
			}
			return NewCachedStore(s, 16, time.Minute)
		},
	},
}

func sampleRecord(name string, created time.Time) model.FileRecord {
	return model.FileRecord{
		Filename:         name,
		DisplayName:      "report.pdf",
		Size:             1024,
		MimeType:         "application/pdf",
		CreatedAt:        created,
		DeleteOnDownload: true,
	}
}

func TestStore_PutGet(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, filepath.Join(t.TempDir(), b.file))
			defer s.Close()

			created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			rec := sampleRecord("1-a-report.pdf", created)

			if err := s.Put(rec.Filename, rec); err != nil {
				t.Fatalf("ошибка Put: %v", err)
			}

			got, err := s.Get(rec.Filename)
			if err != nil {
				t.Fatalf("ошибка Get: %v", err)
			}
			if got == nil {
				t.Fatal("запись не найдена сразу после Put")
			}
			if got.DisplayName != rec.DisplayName || got.Size != rec.Size ||
				got.MimeType != rec.MimeType || !got.CreatedAt.Equal(created) ||
				got.DeleteOnDownload != rec.DeleteOnDownload {
				t.Errorf("запись не совпадает: %+v", got)
			}

			missing, err := s.Get("nope")
			if err != nil {
				t.Fatalf("ошибка Get: %v", err)
			}
			if missing != nil {
				t.Errorf("ожидался nil для отсутствующей записи, получено %+v", missing)
			}
		})
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, filepath.Join(t.TempDir(), b.file))
			defer s.Close()

			rec := sampleRecord("1-a-x.txt", time.Now().UTC())
			if err := s.Put(rec.Filename, rec); err != nil {
				t.Fatalf("ошибка Put: %v", err)
			}
			// Прогреваем кэш
			if _, err := s.Get(rec.Filename); err != nil {
				t.Fatalf("ошибка Get: %v", err)
			}

			rec.DeleteOnDownload = false
			rec.DisplayName = "renamed.txt"
			if err := s.Put(rec.Filename, rec); err != nil {
				t.Fatalf("ошибка Put: %v", err)
			}

			got, _ := s.Get(rec.Filename)
			if got == nil || got.DeleteOnDownload || got.DisplayName != "renamed.txt" {
				t.Errorf("обновление не применено: %+v", got)
			}
		})
	}
}

func TestStore_DeleteIdempotent(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, filepath.Join(t.TempDir(), b.file))
			defer s.Close()

			rec := sampleRecord("1-a-x.txt", time.Now().UTC())
			if err := s.Put(rec.Filename, rec); err != nil {
				t.Fatalf("ошибка Put: %v", err)
			}
			if _, err := s.Get(rec.Filename); err != nil {
				t.Fatalf("ошибка Get: %v", err)
			}

			if err := s.Delete(rec.Filename); err != nil {
				t.Fatalf("ошибка Delete: %v", err)
			}
			if got, _ := s.Get(rec.Filename); got != nil {
				t.Errorf("запись должна быть удалена: %+v", got)
			}
			if err := s.Delete(rec.Filename); err != nil {
				t.Errorf("повторное удаление не должно быть ошибкой: %v", err)
			}
		})
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, filepath.Join(t.TempDir(), b.file))
			defer s.Close()

			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, name := range []string{"1-a-old.txt", "2-b-mid.txt", "3-c-new.txt"} {
				if err := s.Put(name, sampleRecord(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatalf("ошибка Put: %v", err)
				}
			}

			list, err := s.List()
			if err != nil {
				t.Fatalf("ошибка List: %v", err)
			}
			if len(list) != 3 {
				t.Fatalf("ожидалось 3 записи, получено %d", len(list))
			}
			if list[0].Filename != "3-c-new.txt" || list[2].Filename != "1-a-old.txt" {
				t.Errorf("неверный порядок: %s, %s, %s", list[0].Filename, list[1].Filename, list[2].Filename)
			}
		})
	}
}

// TestStore_SurvivesRestart проверяет долговременность записи.
func TestStore_SurvivesRestart(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "meta", b.file)

			s := b.open(t, path)
			keep := sampleRecord("1-a-keep.txt", time.Now().UTC())
			gone := sampleRecord("2-b-gone.txt", time.Now().UTC())
			if err := s.Put(keep.Filename, keep); err != nil {
				t.Fatalf("ошибка Put: %v", err)
			}
			if err := s.Put(gone.Filename, gone); err != nil {
				t.Fatalf("ошибка Put: %v", err)
			}
			if err := s.Delete(gone.Filename); err != nil {
				t.Fatalf("ошибка Delete: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("ошибка Close: %v", err)
			}

			reopened := b.open(t, path)
			defer reopened.Close()

			list, err := reopened.List()
			if err != nil {
				t.Fatalf("ошибка List: %v", err)
			}
			if len(list) != 1 || list[0].Filename != keep.Filename {
				t.Fatalf("после рестарта ожидалась одна запись %s, получено %+v", keep.Filename, list)
			}
			if !list[0].DeleteOnDownload {
				t.Error("DeleteOnDownload потерян после рестарта")
			}
		})
	}
}

// TestJSONStore_DefaultsForMissingFields проверяет, что неполные записи
// (например, созданные вручную) дополняются значениями по умолчанию.
func TestJSONStore_DefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	raw := `{"files": {
		"1712345678901-abc-photo.png": {"size": 42},
		"plain.txt": {}
	}}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("ошибка записи файла: %v", err)
	}

	s, err := OpenJSON(path, testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия: %v", err)
	}
	defer s.Close()

	list, err := s.List()
	if err != nil {
		t.Fatalf("ошибка List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(list))
	}

	byName := map[string]model.FileRecord{}
	for _, r := range list {
		byName[r.Filename] = r
	}

	photo := byName["1712345678901-abc-photo.png"]
	if photo.DisplayName != "photo.png" || photo.Size != 42 || photo.MimeType != model.DefaultMimeType {
		t.Errorf("неверные значения по умолчанию: %+v", photo)
	}
	plain := byName["plain.txt"]
	if plain.DisplayName != "plain.txt" || plain.DeleteOnDownload {
		t.Errorf("неверные значения по умолчанию: %+v", plain)
	}
}

// TestJSONStore_CorruptFile проверяет, что повреждённый файл не перезаписывается.
func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("ошибка записи файла: %v", err)
	}

	if _, err := OpenJSON(path, testLogger()); err == nil {
		t.Fatal("ожидалась ошибка для невалидного JSON")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Error("повреждённый файл не должен перезаписываться")
	}
}

// TestJSONStore_ClosedStore проверяет ErrClosed после закрытия.
func TestJSONStore_ClosedStore(t *testing.T) {
	s, err := OpenJSON(filepath.Join(t.TempDir(), "db.json"), testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия: %v", err)
	}
	_ = s.Close()

	if _, err := s.Get("x"); err != ErrClosed {
		t.Errorf("ожидалась ErrClosed, получено %v", err)
	}
	if err := s.Put("x", model.FileRecord{}); err != ErrClosed {
		t.Errorf("ожидалась ErrClosed, получено %v", err)
	}
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	jsonStore, err := Open(Options{Backend: BackendJSON, Path: filepath.Join(dir, "a.json")}, testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия json: %v", err)
	}
	if _, ok := jsonStore.(*JSONStore); !ok {
		t.Errorf("ожидался *JSONStore, получено %T", jsonStore)
	}
	jsonStore.Close()

	cached, err := Open(Options{Backend: BackendSQLite, Path: filepath.Join(dir, "b.sqlite"), CacheSize: 8, CacheTTL: time.Minute}, testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия sqlite: %v", err)
	}
	if _, ok := cached.(*CachedStore); !ok {
		t.Errorf("ожидался *CachedStore, получено %T", cached)
	}
	cached.Close()

	if _, err := Open(Options{Backend: "redis", Path: filepath.Join(dir, "c")}, testLogger()); err == nil {
		t.Error("ожидалась ошибка для неизвестного backend")
	}
}
