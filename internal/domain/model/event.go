package model

// StorageEventKind — вид изменения в директории загрузок.
type StorageEventKind string

const (
	// StorageAdded — новый файл полностью записан
	StorageAdded StorageEventKind = "added"
	// StorageDeleted — файл исчез из директории
	StorageDeleted StorageEventKind = "deleted"
	// StorageUpdated — содержимое существующего файла изменилось
	StorageUpdated StorageEventKind = "updated"
)

// StorageEvent — уведомление Blob Storage об изменении файла.
type StorageEvent struct {
	Kind     StorageEventKind
	Filename string
}
