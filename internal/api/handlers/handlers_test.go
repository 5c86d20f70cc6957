package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/bigkaa/flyshare/internal/api/generated"
	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/realtime"
	"github.com/bigkaa/flyshare/internal/service"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
	"github.com/bigkaa/flyshare/internal/storage/metastore"
)

const waitTimeout = 5 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv — HTTP API поверх настоящих filestore, metastore, планировщика
// и координатора. Наблюдатель не запускается: уведомления о директории
// в этих тестах не нужны.
type testEnv struct {
	server    *httptest.Server
	dir       string
	store     *filestore.FileStore
	meta      metastore.Store
	retention *service.RetentionScheduler
	files     *service.FileService
	hub       *realtime.Hub
}

func newTestEnv(t *testing.T, maxUploadSize int64) *testEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	logger := testLogger()

	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := filestore.New(dir)
	if err != nil {
		t.Fatalf("ошибка создания filestore: %v", err)
	}
	meta, err := metastore.OpenJSON(filepath.Join(t.TempDir(), "db.json"), logger)
	if err != nil {
		t.Fatalf("ошибка открытия metastore: %v", err)
	}

	retention := service.NewRetentionScheduler(store, nil, service.RetentionOptions{
		SettleDelay: 10 * time.Millisecond,
	}, logger)
	if err := retention.Start(ctx); err != nil {
		t.Fatalf("ошибка запуска планировщика: %v", err)
	}

	files := service.NewFileService(retention, meta, "http://share.local:4001", logger)
	if err := files.Start(ctx); err != nil {
		t.Fatalf("ошибка запуска FileService: %v", err)
	}

	hub := realtime.NewHub(files, logger)
	go hub.Run(ctx)
	realtime.NewBroadcaster(files, hub, logger).Start(ctx)

	api := NewAPIHandler(
		NewFilesHandler(files, maxUploadSize, logger),
		NewSystemHandler(store.Dir(), files, retention, hub, logger),
		NewMaintenanceHandler(service.NewReconcileService(files, time.Hour, logger), retention),
		NewHealthHandler(store.Dir(), meta),
		hub,
		nil,
	)
	router := chi.NewRouter()
	generated.HandlerFromMux(api, router)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
		files.Stop()
		retention.Stop()
		meta.Close()
	})

	return &testEnv{
		server:    server,
		dir:       store.Dir(),
		store:     store,
		meta:      meta,
		retention: retention,
		files:     files,
		hub:       hub,
	}
}

// upload отправляет multipart-запрос. name == "" — без части file.
func (e *testEnv) upload(t *testing.T, name string, data []byte, deleteOnDownload string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("ошибка создания части file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("ошибка записи части file: %v", err)
		}
	}
	if deleteOnDownload != "" {
		if err := mw.WriteField("deleteOnDownload", deleteOnDownload); err != nil {
			t.Fatalf("ошибка записи поля: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("ошибка закрытия multipart: %v", err)
	}

	resp, err := http.Post(e.server.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("ошибка запроса загрузки: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// uploadOK загружает файл и возвращает запись из ответа.
func (e *testEnv) uploadOK(t *testing.T, name string, data []byte, deleteOnDownload bool) model.FileRecord {
	t.Helper()

	resp := e.upload(t, name, data, map[bool]string{true: "true", false: "false"}[deleteOnDownload])
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("загрузка: статус %d, тело %s", resp.StatusCode, body)
	}

	var out uploadResponse
	decodeJSON(t, resp.Body, &out)
	if out.Message != "File uploaded successfully" {
		t.Errorf("message = %q", out.Message)
	}
	return out.File
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatalf("ошибка создания запроса: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("ошибка запроса %s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) listFiles(t *testing.T) []model.FileRecord {
	t.Helper()

	resp := e.do(t, http.MethodGet, "/files", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /files: статус %d", resp.StatusCode)
	}
	var list []model.FileRecord
	decodeJSON(t, resp.Body, &list)
	return list
}

func decodeJSON(t *testing.T, r io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		t.Fatalf("ошибка разбора JSON: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, errMsg string) {
	t.Helper()

	if resp.StatusCode != status {
		t.Fatalf("статус %d, ожидался %d", resp.StatusCode, status)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp.Body, &body)
	if errMsg != "" && body.Error != errMsg {
		t.Errorf("error = %q, ожидалось %q", body.Error, errMsg)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("не дождались: %s", what)
}

func contains(list []model.FileRecord, filename string) bool {
	for _, r := range list {
		if r.Filename == filename {
			return true
		}
	}
	return false
}

// wsMessage — сообщение real-time канала.
type wsMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// TestUploadAndList_Realtime: загрузка report.pdf видна в GET /files
// и приходит подписчику real-time канала.
func TestUploadAndList_Realtime(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ошибка подключения к /ws: %v", err)
	}
	defer conn.Close()

	data := bytes.Repeat([]byte("x"), 1024)
	rec := env.uploadOK(t, "report.pdf", data, false)

	if rec.DisplayName != "report.pdf" || rec.Size != 1024 || rec.DeleteOnDownload {
		t.Errorf("неверная запись: %+v", rec)
	}
	if !strings.HasSuffix(rec.Filename, "-report.pdf") {
		t.Errorf("имя хранения %q должно заканчиваться исходным именем", rec.Filename)
	}
	if rec.URL != "http://share.local:4001/download/"+rec.Filename {
		t.Errorf("url = %q", rec.URL)
	}

	if list := env.listFiles(t); !contains(list, rec.Filename) {
		t.Errorf("GET /files не содержит %s: %+v", rec.Filename, list)
	}

	_ = conn.SetReadDeadline(time.Now().Add(waitTimeout))
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("не получено files-changed с новым файлом: %v", err)
		}
		if msg.Event != string(service.EventFilesChanged) {
			continue
		}
		var list []model.FileRecord
		if err := json.Unmarshal(msg.Data, &list); err != nil {
			t.Fatalf("ошибка разбора списка: %v", err)
		}
		if contains(list, rec.Filename) {
			break
		}
	}
}

// TestDownload_ContentDispositionEscaping: кавычки и не-ASCII символы
// в displayName не ломают заголовок вложения.
func TestDownload_ContentDispositionEscaping(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	rec := env.uploadOK(t, "plain.txt", []byte("data"), false)

	tests := []struct {
		name        string
		displayName string
		header      string
	}{
		{"кавычка", `se"cret.txt`, `attachment; filename="se\"cret.txt"`},
		{"обратный слэш", `a\b.txt`, `attachment; filename="a\\b.txt"`},
		{"кириллица", "отчёт.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := json.Marshal(map[string]string{"displayName": tt.displayName})
			if err != nil {
				t.Fatalf("ошибка кодирования: %v", err)
			}
			resp := env.do(t, http.MethodPatch, "/files/"+rec.Filename, bytes.NewReader(patch))
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("PATCH: статус %d", resp.StatusCode)
			}

			resp = env.do(t, http.MethodGet, "/download/"+rec.Filename, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("скачивание: статус %d", resp.StatusCode)
			}
			cd := resp.Header.Get("Content-Disposition")
			if tt.header != "" && cd != tt.header {
				t.Errorf("Content-Disposition = %q, ожидалось %q", cd, tt.header)
			}

			disposition, params, err := mime.ParseMediaType(cd)
			if err != nil {
				t.Fatalf("заголовок %q не разбирается: %v", cd, err)
			}
			if disposition != "attachment" || params["filename"] != tt.displayName {
				t.Errorf("разобрано %q %q, ожидалось имя %q", disposition, params["filename"], tt.displayName)
			}
		})
	}
}

// TestDownload_DeleteOnDownload: файл с deleteOnDownload скачивается
// один раз, повторный запрос — 404.
func TestDownload_DeleteOnDownload(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	data := []byte("top secret content")
	rec := env.uploadOK(t, "secret.txt", data, true)
	if !rec.DeleteOnDownload {
		t.Fatal("deleteOnDownload не сохранён")
	}

	resp := env.do(t, http.MethodGet, "/download/"+rec.Filename, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("первое скачивание: статус %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ошибка чтения тела: %v", err)
	}
	if !bytes.Equal(body, data) {
		t.Errorf("содержимое не совпадает: %q", body)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="secret.txt"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	// Удаление выполняется после отправки ответа
	waitFor(t, "удаление после скачивания", func() bool {
		_, err := os.Stat(filepath.Join(env.dir, rec.Filename))
		return os.IsNotExist(err)
	})
	if got, _ := env.meta.Get(rec.Filename); got != nil {
		t.Error("запись метаданных должна быть удалена")
	}

	second := env.do(t, http.MethodGet, "/download/"+rec.Filename, nil)
	expectError(t, second, http.StatusNotFound, "File not found")
}

// TestDownload_KeepsRegularFile: файл без флага остаётся после скачивания.
func TestDownload_KeepsRegularFile(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.uploadOK(t, "notes.txt", []byte("plain text"), false)

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodGet, "/download/"+rec.Filename, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("скачивание %d: статус %d", i+1, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("Content-Type = %q", ct)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	if !contains(env.listFiles(t), rec.Filename) {
		t.Error("файл без deleteOnDownload не должен удаляться")
	}
}

// TestDownload_NotFound: неизвестное имя — 404 без событий.
func TestDownload_NotFound(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	sub := env.files.Subscribe()
	defer sub.Close()

	resp := env.do(t, http.MethodGet, "/download/nonexistent", nil)
	expectError(t, resp, http.StatusNotFound, "File not found")

	select {
	case ev := <-sub.Events():
		t.Errorf("неожиданное событие: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpload_NoFile(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	resp := env.upload(t, "", nil, "true")
	expectError(t, resp, http.StatusBadRequest, "No file uploaded")

	if len(env.listFiles(t)) != 0 {
		t.Error("загрузка без файла не должна менять состояние")
	}
}

func TestUpload_MalformedRequest(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	resp, err := http.Post(env.server.URL+"/upload", "application/json", strings.NewReader(`{"file":"x"}`))
	if err != nil {
		t.Fatalf("ошибка запроса: %v", err)
	}
	defer resp.Body.Close()

	expectError(t, resp, http.StatusBadRequest, "")
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t, 1024)

	resp := env.upload(t, "big.bin", bytes.Repeat([]byte{1}, 8192), "")
	expectError(t, resp, http.StatusRequestEntityTooLarge, "")

	entries, _ := os.ReadDir(env.dir)
	if len(entries) != 0 {
		t.Errorf("в директории загрузок остались файлы: %d", len(entries))
	}
}

func TestFileMetadata_GetPatch(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	rec := env.uploadOK(t, "photo.png", []byte("not really a png"), false)

	resp := env.do(t, http.MethodGet, "/files/"+rec.Filename, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /files/{filename}: статус %d", resp.StatusCode)
	}
	var got model.FileRecord
	decodeJSON(t, resp.Body, &got)
	if got.Filename != rec.Filename || got.DisplayName != "photo.png" {
		t.Errorf("неверная запись: %+v", got)
	}

	resp = env.do(t, http.MethodPatch, "/files/"+rec.Filename,
		strings.NewReader(`{"displayName":"holiday.png","deleteOnDownload":true}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH: статус %d", resp.StatusCode)
	}
	decodeJSON(t, resp.Body, &got)
	if got.DisplayName != "holiday.png" || !got.DeleteOnDownload {
		t.Errorf("изменения не применены: %+v", got)
	}

	stored, _ := env.meta.Get(rec.Filename)
	if stored == nil || stored.DisplayName != "holiday.png" || stored.Size != rec.Size {
		t.Errorf("запись в хранилище: %+v", stored)
	}
}

func TestFileMetadata_Errors(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	rec := env.uploadOK(t, "a.txt", []byte("a"), false)

	expectError(t, env.do(t, http.MethodGet, "/files/missing.txt", nil), http.StatusNotFound, "File not found")
	expectError(t, env.do(t, http.MethodPatch, "/files/missing.txt", strings.NewReader(`{"deleteOnDownload":true}`)),
		http.StatusNotFound, "File not found")
	expectError(t, env.do(t, http.MethodPatch, "/files/"+rec.Filename, strings.NewReader(`{broken`)),
		http.StatusBadRequest, "")
	expectError(t, env.do(t, http.MethodPatch, "/files/"+rec.Filename, strings.NewReader(`{}`)),
		http.StatusBadRequest, "")
	expectError(t, env.do(t, http.MethodPatch, "/files/"+rec.Filename, strings.NewReader(`{"displayName":""}`)),
		http.StatusBadRequest, "")
}

func TestDeleteFile_Idempotent(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	rec := env.uploadOK(t, "gone.txt", []byte("bye"), false)

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodDelete, "/files/"+rec.Filename, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("DELETE %d: статус %d", i+1, resp.StatusCode)
		}
	}

	if len(env.listFiles(t)) != 0 {
		t.Error("список должен быть пуст после удаления")
	}
	if _, err := os.Stat(filepath.Join(env.dir, rec.Filename)); !os.IsNotExist(err) {
		t.Error("файл должен быть удалён с диска")
	}

	// Удаление последнего файла деактивирует планировщик
	waitFor(t, "деактивация планировщика", func() bool { return !env.retention.IsActive() })
}

func TestRetentionEndpoints(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	resp := env.do(t, http.MethodGet, "/maintenance/retention", nil)
	var status generated.RetentionStatus
	decodeJSON(t, resp.Body, &status)
	if status.Active || status.Ttl != "12h0m0s" || status.Interval != "6h0m0s" {
		t.Errorf("начальное состояние: %+v", status)
	}

	resp = env.do(t, http.MethodPut, "/maintenance/retention", strings.NewReader(`{"ttl":"30m","active":true}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT: статус %d", resp.StatusCode)
	}
	decodeJSON(t, resp.Body, &status)
	if !status.Active || status.Ttl != "30m0s" {
		t.Errorf("состояние после PUT: %+v", status)
	}

	expectError(t, env.do(t, http.MethodPut, "/maintenance/retention", strings.NewReader(`{"ttl":"soon"}`)),
		http.StatusBadRequest, "")
	expectError(t, env.do(t, http.MethodPut, "/maintenance/retention", strings.NewReader(`{"ttl":"-1h"}`)),
		http.StatusBadRequest, "")
	if env.retention.TTL() != 30*time.Minute {
		t.Errorf("невалидный запрос изменил TTL: %s", env.retention.TTL())
	}

	resp = env.do(t, http.MethodPut, "/maintenance/retention", strings.NewReader(`{"active":false}`))
	decodeJSON(t, resp.Body, &status)
	if status.Active {
		t.Error("планировщик должен быть остановлен")
	}
}

func TestRetentionSweepEndpoint(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.uploadOK(t, "old.txt", []byte("old"), false)

	if err := env.retention.SetTTL(time.Millisecond); err != nil {
		t.Fatalf("ошибка SetTTL: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	resp := env.do(t, http.MethodPost, "/maintenance/retention/sweep", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sweep: статус %d", resp.StatusCode)
	}
	var out sweepResponse
	decodeJSON(t, resp.Body, &out)
	if out.Deleted != 1 {
		t.Errorf("deleted = %d, ожидалось 1", out.Deleted)
	}
	if out.Retention.Active {
		t.Error("после удаления всех файлов планировщик должен быть неактивен")
	}
}

func TestReconcileEndpoint(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	// Файл, появившийся в обход загрузки
	if err := os.WriteFile(filepath.Join(env.dir, "1712345678901-abc-manual.txt"), []byte("manual"), 0o600); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	resp := env.do(t, http.MethodPost, "/maintenance/reconcile", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reconcile: статус %d", resp.StatusCode)
	}
	var report service.ReconcileReport
	decodeJSON(t, resp.Body, &report)
	if report.Summary.OrphanedFiles != 1 {
		t.Errorf("orphanedFiles = %d, ожидалось 1", report.Summary.OrphanedFiles)
	}

	rec, _ := env.meta.Get("1712345678901-abc-manual.txt")
	if rec == nil || rec.DisplayName != "manual.txt" || rec.DeleteOnDownload {
		t.Errorf("синтезированная запись: %+v", rec)
	}
}

// busyReconciler всегда сообщает, что сверка уже выполняется.
type busyReconciler struct{}

func (busyReconciler) RunOnce(context.Context) (*service.ReconcileReport, bool, error) {
	return nil, true, nil
}

func TestReconcile_InProgress(t *testing.T) {
	h := NewMaintenanceHandler(busyReconciler{}, nil)

	w := httptest.NewRecorder()
	h.Reconcile(w, httptest.NewRequest(http.MethodPost, "/maintenance/reconcile", nil))

	if w.Code != http.StatusConflict {
		t.Errorf("статус %d, ожидался 409", w.Code)
	}
}

func TestInfo(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.uploadOK(t, "a.bin", bytes.Repeat([]byte("a"), 100), false)
	env.uploadOK(t, "b.bin", bytes.Repeat([]byte("b"), 50), false)

	resp := env.do(t, http.MethodGet, "/info", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /info: статус %d", resp.StatusCode)
	}
	var info storageInfo
	decodeJSON(t, resp.Body, &info)

	if info.Service != "flyshare" || info.Files != 2 || info.TotalBytes != 150 {
		t.Errorf("неверная информация: %+v", info)
	}
	if !info.Retention.Active {
		t.Error("планировщик должен быть активен при наличии файлов")
	}
	if info.Disk == nil || info.Disk.TotalBytes <= 0 {
		t.Errorf("нет информации о диске: %+v", info.Disk)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := env.do(t, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: статус %d", path, resp.StatusCode)
		}
		var body map[string]any
		decodeJSON(t, resp.Body, &body)
		if body["status"] != "ok" {
			t.Errorf("%s: status = %v", path, body["status"])
		}
	}

	if _, err := os.Stat(filepath.Join(env.dir, healthProbeKey)); !os.IsNotExist(err) {
		t.Error("проверочный файл должен удаляться")
	}
}

// brokenMeta — хранилище метаданных, которое всегда возвращает ошибку.
type brokenMeta struct{}

func (brokenMeta) Get(string) (*model.FileRecord, error) { return nil, metastore.ErrClosed }

func TestHealthReady_Fail(t *testing.T) {
	tests := []struct {
		name string
		h    *HealthHandler
	}{
		{"метаданные недоступны", NewHealthHandler(t.TempDir(), brokenMeta{})},
		{"директория отсутствует", NewHealthHandler(filepath.Join(t.TempDir(), "missing"), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if w.Code != http.StatusServiceUnavailable {
				t.Errorf("статус %d, ожидался 503", w.Code)
			}
		})
	}
}
