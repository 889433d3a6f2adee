//go:build unix

package util

import (
	"fmt"
	"os"
	"syscall"
)

// GetFileID 文件的稳定标识，由设备号和 inode 派生
func GetFileID(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", fmt.Errorf("unexpected stat type for %s", path)
	}

	return fmt.Sprintf("%d-%d", stat.Dev, stat.Ino), nil
}
