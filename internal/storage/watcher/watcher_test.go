package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

const waitTimeout = 5 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// startWatcher создаёт и запускает Watcher с коротким окном стабильности.
func startWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()

	w, err := New(dir, Options{Stability: 50 * time.Millisecond, PollInterval: 10 * time.Millisecond}, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания Watcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("ошибка запуска Watcher: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

// expectEvent ждёт уведомление указанного вида для файла,
// пропуская остальные.
func expectEvent(t *testing.T, w *Watcher, kind model.StorageEventKind, name string) {
	t.Helper()

	deadline := time.After(waitTimeout)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatalf("канал событий закрыт, ожидалось %s %s", kind, name)
			}
			if ev.Kind == kind && ev.Filename == name {
				return
			}
		case <-deadline:
			t.Fatalf("не дождались события %s для %s", kind, name)
		}
	}
}

// expectNoEvent проверяет отсутствие событий в течение d.
func expectNoEvent(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()

	select {
	case ev := <-w.Events():
		t.Fatalf("неожиданное событие: %+v", ev)
	case <-time.After(d):
	}
}

func TestWatcher_AddedAfterWriteFinished(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "dropped.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	expectEvent(t, w, model.StorageAdded, "dropped.txt")
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.bin"), []byte("x"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	w := startWatcher(t, dir)

	expectEvent(t, w, model.StorageAdded, "existing.bin")
}

// TestWatcher_InitialScanImmediateLoop — окно стабильности короче
// интервала опроса: цикл обработки разбирает начальное сканирование
// одновременно с завершением Start. Запускать с -race.
func TestWatcher_InitialScanImmediateLoop(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.bin", "b.bin", "c.bin", "d.bin"}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatalf("ошибка записи: %v", err)
		}
	}

	for range 3 {
		w, err := New(dir, Options{Stability: time.Nanosecond, PollInterval: time.Millisecond}, testLogger())
		if err != nil {
			t.Fatalf("ошибка создания Watcher: %v", err)
		}
		if err := w.Start(context.Background()); err != nil {
			t.Fatalf("ошибка запуска Watcher: %v", err)
		}

		seen := make(map[string]bool)
		deadline := time.After(waitTimeout)
		for len(seen) < len(names) {
			select {
			case ev := <-w.Events():
				if ev.Kind == model.StorageAdded {
					seen[ev.Filename] = true
				}
			case <-deadline:
				t.Fatalf("получены не все события начального сканирования: %v", seen)
			}
		}
		w.Stop()
	}
}

func TestWatcher_UpdatedAndDeleted(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	expectEvent(t, w, model.StorageAdded, "doc.txt")

	if err := os.WriteFile(path, []byte("version two"), 0o600); err != nil {
		t.Fatalf("ошибка перезаписи: %v", err)
	}
	expectEvent(t, w, model.StorageUpdated, "doc.txt")

	if err := os.Remove(path); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	expectEvent(t, w, model.StorageDeleted, "doc.txt")
}

// TestWatcher_NoAddedWhileWriting проверяет, что добавление не объявляется,
// пока файл продолжает расти.
func TestWatcher_NoAddedWhileWriting(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Options{Stability: 300 * time.Millisecond, PollInterval: 10 * time.Millisecond}, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания Watcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("ошибка запуска Watcher: %v", err)
	}
	defer w.Stop()

	f, err := os.Create(filepath.Join(dir, "growing.log"))
	if err != nil {
		t.Fatalf("ошибка создания файла: %v", err)
	}
	defer f.Close()

	for i := 0; i < 5; i++ {
		if _, err := f.WriteString("chunk\n"); err != nil {
			t.Fatalf("ошибка записи: %v", err)
		}
		select {
		case ev := <-w.Events():
			t.Fatalf("событие до завершения записи: %+v", ev)
		case <-time.After(100 * time.Millisecond):
		}
	}

	expectEvent(t, w, model.StorageAdded, "growing.log")
}

func TestWatcher_IgnoresHiddenFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".upload-123.tmp"), []byte("partial"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o750); err != nil {
		t.Fatalf("ошибка создания директории: %v", err)
	}

	expectNoEvent(t, w, 300*time.Millisecond)
}

// TestWatcher_RenameFromTemp проверяет атомарную запись через
// скрытый временный файл: объявляется только итоговое имя.
func TestWatcher_RenameFromTemp(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	tmp := filepath.Join(dir, ".upload-42.tmp")
	if err := os.WriteFile(tmp, []byte("complete"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "1-a-final.txt")); err != nil {
		t.Fatalf("ошибка переименования: %v", err)
	}

	expectEvent(t, w, model.StorageAdded, "1-a-final.txt")
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := New(t.TempDir(), Options{}, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания Watcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("ошибка запуска Watcher: %v", err)
	}

	w.Stop()
	w.Stop()

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("ожидался закрытый канал")
		}
	case <-time.After(waitTimeout):
		t.Fatal("канал событий не закрыт после Stop")
	}

	if err := w.Start(context.Background()); err == nil {
		t.Error("повторный запуск после Stop должен вернуть ошибку")
	}
}
