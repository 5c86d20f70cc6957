package service

import (
	"io"

	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
)

// BlobStore — операции над директорией загрузок.
// Реализуется *filestore.FileStore и RetentionScheduler.
type BlobStore interface {
	Save(originalName string, r io.Reader) (*filestore.SaveResult, error)
	Stat(filename string) (*filestore.FileInfo, error)
	Path(filename string) (string, error)
	Delete(filename string) error
	List() ([]filestore.FileInfo, error)
}

// Storage — BlobStore с уведомлениями об изменениях директории.
type Storage interface {
	BlobStore
	// Notifications возвращает канал уведомлений added/deleted/updated.
	// Канал закрывается при остановке хранилища.
	Notifications() <-chan model.StorageEvent
}
