// Пакет errors — запись HTTP-ответов с ошибками.
// Единый формат: {"error": "...", "message": "..."} (message опционален),
// совместимый с веб-клиентом. Все ответы с ошибками пишутся через WriteError.
package errors //nolint:revive // TODO: переименовать пакет errors, конфликт со stdlib

import (
	"encoding/json"
	"net/http"
)

// Тексты ошибок, на которые опирается веб-клиент.
const (
	MsgNotFound           = "File not found"
	MsgServerError        = "Server error during file processing"
	MsgReconcileInProcess = "Reconciliation already in progress"
	MsgInternal           = "Internal server error"
	MsgContractMismatch   = "Request does not match API contract"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError записывает ответ ошибки.
// errMsg — краткое описание, message — подробности (может быть пустым).
func WriteError(w http.ResponseWriter, statusCode int, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   errMsg,
		Message: message,
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, errMsg string) {
	WriteError(w, http.StatusBadRequest, errMsg, "")
}

// NotFound — 404 файл не найден.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, MsgNotFound, "")
}

// PayloadTooLarge — 413 тело запроса превышает лимит.
func PayloadTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, "File too large", message)
}

// ReconcileInProgress — 409 сверка уже выполняется.
func ReconcileInProgress(w http.ResponseWriter) {
	WriteError(w, http.StatusConflict, MsgReconcileInProcess, "")
}

// ServerError — 500 ошибка обработки файла (формат ответа загрузки).
func ServerError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, MsgServerError, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, MsgInternal, message)
}
