//go:build !linux && !darwin && !windows

package filestore

import (
	"os"
	"time"
)

// birthTime — на остальных платформах время создания недоступно, используется mtime.
func birthTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime().UTC()
}
