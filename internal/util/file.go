package util

import (
	"path/filepath"
	"strings"
)

func GetFileExt(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

func GetFileName(path string) string {
	return filepath.Base(path)
}
