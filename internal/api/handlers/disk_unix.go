//go:build unix

package handlers

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statDisk возвращает ёмкость файловой системы, на которой лежит path.
// Зарезервированные за root блоки не входят ни в used, ни в available.
func statDisk(path string) (*diskInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}

	bsize := int64(st.Bsize) //nolint:unconvert // тип Bsize зависит от платформы
	return &diskInfo{
		TotalBytes:     int64(st.Blocks) * bsize,
		UsedBytes:      int64(st.Blocks-st.Bfree) * bsize,
		AvailableBytes: int64(st.Bavail) * bsize,
	}, nil
}
