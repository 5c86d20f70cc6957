//go:build darwin

package filestore

import (
	"os"
	"syscall"
	"time"
)

// birthTime возвращает время создания файла из Birthtimespec.
func birthTime(_ string, info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime().UTC()
	}
	return time.Unix(st.Birthtimespec.Unix()).UTC()
}
