package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdeng/goheif"
)

// MaxImagePixels 超过该像素数的图片按解压炸弹处理
const MaxImagePixels = 178956970

var (
	// ErrDecode 文件无法按图片解码
	ErrDecode = errors.New("media: image decode failed")
	// ErrBombProtection 尺寸超出解压炸弹保护阈值
	ErrBombProtection = errors.New("media: decompression bomb protection triggered")
)

// Resolution 读取图片分辨率，只解析头部不解码像素（HEIC 除外）
func Resolution(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".heic" {
		img, err := goheif.Decode(f)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s", ErrDecode, err)
		}
		bounds := img.Bounds()
		width, height = bounds.Dx(), bounds.Dy()
	} else {
		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s", ErrDecode, err)
		}
		width, height = cfg.Width, cfg.Height
	}

	if width*height > MaxImagePixels {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrBombProtection, width, height)
	}

	return width, height, nil
}
