package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
	"github.com/bigkaa/flyshare/internal/storage/metastore"
)

const waitTimeout = 5 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeFile — файл в памяти fakeStorage.
type fakeFile struct {
	data  []byte
	birth time.Time
}

// fakeStorage — Storage в памяти. Уведомления отправляются тестом вручную
// через notify.
type fakeStorage struct {
	mu        sync.Mutex
	files     map[string]fakeFile
	seq       int
	saveErr   error
	deleteErr map[string]error
	deletes   map[string]int
	notes     chan model.StorageEvent
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		files:     make(map[string]fakeFile),
		deleteErr: make(map[string]error),
		deletes:   make(map[string]int),
		notes:     make(chan model.StorageEvent, 64),
	}
}

func (f *fakeStorage) Save(originalName string, r io.Reader) (*filestore.SaveResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.seq++
	name := fmt.Sprintf("%d-%032x-%s", time.Now().UnixMilli(), f.seq, originalName)
	f.files[name] = fakeFile{data: data, birth: time.Now()}
	return &filestore.SaveResult{Filename: name, FullPath: "/fake/" + name, Size: int64(len(data))}, nil
}

func (f *fakeStorage) Stat(filename string) (*filestore.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[filename]
	if !ok {
		return nil, filestore.ErrNotFound
	}
	return &filestore.FileInfo{Name: filename, BirthTime: file.birth, Size: int64(len(file.data))}, nil
}

func (f *fakeStorage) Path(filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[filename]; !ok {
		return "", filestore.ErrNotFound
	}
	return "/fake/" + filename, nil
}

func (f *fakeStorage) Delete(filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[filename]; err != nil {
		return err
	}
	f.deletes[filename]++
	delete(f.files, filename)
	return nil
}

func (f *fakeStorage) List() ([]filestore.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]filestore.FileInfo, 0, len(f.files))
	for name, file := range f.files {
		result = append(result, filestore.FileInfo{Name: name, BirthTime: file.birth, Size: int64(len(file.data))})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BirthTime.Before(result[j].BirthTime) })
	return result, nil
}

func (f *fakeStorage) Notifications() <-chan model.StorageEvent {
	return f.notes
}

// put кладёт файл напрямую, минуя Save (имитация внешнего изменения).
func (f *fakeStorage) put(name string, data []byte, birth time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = fakeFile{data: data, birth: birth}
}

func (f *fakeStorage) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[name]
	return ok
}

func (f *fakeStorage) deleteCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes[name]
}

func (f *fakeStorage) notify(kind model.StorageEventKind, name string) {
	f.notes <- model.StorageEvent{Kind: kind, Filename: name}
}

// failingStore — metastore.Store, возвращающий ошибки по флагам.
type failingStore struct {
	metastore.Store
	mu      sync.Mutex
	failGet bool
	failPut bool
}

var errInjected = errors.New("injected failure")

func (s *failingStore) Get(filename string) (*model.FileRecord, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, errInjected
	}
	return s.Store.Get(filename)
}

func (s *failingStore) Put(filename string, rec model.FileRecord) error {
	s.mu.Lock()
	fail := s.failPut
	s.mu.Unlock()
	if fail {
		return errInjected
	}
	return s.Store.Put(filename, rec)
}

func openTestMeta(t *testing.T) metastore.Store {
	t.Helper()

	s, err := metastore.OpenJSON(filepath.Join(t.TempDir(), "db.json"), testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия хранилища метаданных: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestService создаёт запущенный FileService поверх storage и meta.
func newTestService(t *testing.T, storage Storage, meta metastore.Store) *FileService {
	t.Helper()

	svc := NewFileService(storage, meta, "http://share.local:4001", testLogger())
	if err := svc.Start(t.Context()); err != nil {
		t.Fatalf("ошибка запуска FileService: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

// nextEvent ждёт следующее событие подписки.
func nextEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()

	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("не дождались события")
		return Event{}
	}
}

// waitEvent ждёт событие указанного типа, пропуская остальные.
func waitEvent(t *testing.T, sub *Subscription, typ EventType) Event {
	t.Helper()

	deadline := time.After(waitTimeout)
	for {
		select {
		case ev := <-sub.Events():
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("не дождались события %s", typ)
			return Event{}
		}
	}
}

// expectNoEvents проверяет отсутствие событий в течение d.
func expectNoEvents(t *testing.T, sub *Subscription, d time.Duration) {
	t.Helper()

	select {
	case ev := <-sub.Events():
		t.Fatalf("неожиданное событие: %+v", ev)
	case <-time.After(d):
	}
}

// waitFor опрашивает cond до истечения таймаута.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("не дождались: %s", what)
}
