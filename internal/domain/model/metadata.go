// Пакет model — доменные модели flyshare.
// FileRecord — единая структура метаданных файла: in-memory представление,
// формат ответа API и сообщений real-time канала.
package model

import (
	"net/url"
	"strings"
	"time"
)

// DefaultMimeType — MIME-тип для файлов с неизвестным содержимым.
const DefaultMimeType = "application/octet-stream"

// FileRecord — метаданные одного файла в хранилище.
// Имена JSON-полей совпадают с контрактом веб-клиента.
type FileRecord struct {
	// Filename — ключ хранения, уникальное имя файла в директории загрузок
	Filename string `json:"filename"`

	// DisplayName — имя для пользователя (по умолчанию — исходное имя при загрузке)
	DisplayName string `json:"displayName"`

	// Size — размер файла в байтах
	Size int64 `json:"size"`

	// URL — адрес скачивания. Вычисляется из Filename, не хранится.
	URL string `json:"url"`

	// MimeType — MIME-тип содержимого
	MimeType string `json:"mimetype"`

	// CreatedAt — момент первого появления файла (UTC). Не меняется.
	CreatedAt time.Time `json:"date"`

	// DeleteOnDownload — удалить файл после первого полного скачивания
	DeleteOnDownload bool `json:"deleteOnDownload"`
}

// DefaultDisplayName выводит отображаемое имя из имени хранения.
// Формат имени хранения: {timestamp}-{token}-{original}, поэтому
// отбрасываются первые два сегмента. Если сегментов не хватает —
// возвращается имя целиком.
func DefaultDisplayName(filename string) string {
	parts := strings.Split(filename, "-")
	if len(parts) < 3 {
		return filename
	}
	name := strings.Join(parts[2:], "-")
	if name == "" {
		return filename
	}
	return name
}

// ApplyDefaults заполняет пустые поля значениями по умолчанию.
func (r *FileRecord) ApplyDefaults() {
	if r.DisplayName == "" {
		r.DisplayName = DefaultDisplayName(r.Filename)
	}
	if r.MimeType == "" {
		r.MimeType = DefaultMimeType
	}
	if r.Size < 0 {
		r.Size = 0
	}
}

// WithURL возвращает копию записи с вычисленным адресом скачивания.
func (r FileRecord) WithURL(baseURL string) FileRecord {
	r.URL = DownloadURL(baseURL, r.Filename)
	return r
}

// DownloadURL строит адрес скачивания файла: {baseURL}/download/{filename}.
func DownloadURL(baseURL, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/download/" + url.PathEscape(filename)
}
