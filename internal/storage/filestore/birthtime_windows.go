//go:build windows

package filestore

import (
	"os"
	"syscall"
	"time"
)

// birthTime возвращает CreationTime файла.
func birthTime(_ string, info os.FileInfo) time.Time {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime().UTC()
	}
	return time.Unix(0, data.CreationTime.Nanoseconds()).UTC()
}
