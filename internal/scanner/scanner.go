package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/config"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/media"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/util"
	"github.com/samber/lo"
)

// Scanner 遍历存储根目录，把候选文件物化为 Object
type Scanner struct {
	cfg   *config.Config
	store *store.Store
}

func New(cfg *config.Config, s *store.Store) *Scanner {
	return &Scanner{cfg: cfg, store: s}
}

// Summary 一次完整扫描的统计
type Summary struct {
	Saved      int
	Duplicates int
	Ignored    int
	Elapsed    time.Duration
}

// RunPass 跑一遍所有根目录。取消信号在每个目录/文件边界检查，
// 不打断单个文件的处理
func (s *Scanner) RunPass(ctx context.Context) (Summary, error) {
	st := time.Now()
	log.Println("Scanning objects to save.")

	extensions := s.cfg.FileExtensions()
	summary := Summary{}

	for _, root := range s.cfg.Scanner.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				// 无权限等目录错误跳过，不中断整个 pass
				log.Printf("Skipping '%s': %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && s.cfg.IsIgnoredDirectory(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			s.visitFile(path, extensions, &summary)
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Println("Stopping objects scanner...")
				return summary, err
			}
			log.Printf("Error scanning root '%s': %v", root, err)
		}
	}

	summary.Elapsed = time.Since(st)

	log.Printf("%d File(s) saved.", summary.Saved)
	log.Printf("%d Duplicate(s) found and ignored.", summary.Duplicates)
	log.Printf("Completion time: %.2f seconds.", summary.Elapsed.Seconds())

	return summary, nil
}

func (s *Scanner) visitFile(path string, extensions []string, summary *Summary) {
	if !lo.Contains(extensions, util.GetFileExt(path)) {
		return
	}

	fileID, err := util.GetFileID(path)
	if err != nil {
		log.Printf("Failed to stat '%s': %v", path, err)
		return
	}

	seen, err := s.store.FileSeen(fileID)
	if err != nil {
		log.Printf("Failed to check file id for '%s': %v", path, err)
		return
	}
	if seen {
		summary.Duplicates++
		return
	}

	obj, reason := s.objectFromPath(path, fileID)
	if obj == nil {
		log.Printf("Adding '%s' to ignored file list because of '%s'.", path, reason)
		if err := s.store.CreateIgnoredFile(fileID, reason); err != nil {
			log.Printf("Failed to save ignored file for '%s': %v", path, err)
			return
		}
		summary.Ignored++
		return
	}

	if err := s.store.CreateObject(obj); err != nil {
		log.Printf("Failed to save object for '%s': %v", path, err)
		return
	}
	summary.Saved++
}

// objectFromPath 根据文件构造 Object。返回 nil 表示应忽略，
// 第二个返回值为忽略原因
func (s *Scanner) objectFromPath(path, fileID string) (*model.Object, string) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, model.IgnoreInvalidFile
	}

	objType, ok := s.cfg.TypeForExtension(util.GetFileExt(path))
	if !ok {
		return nil, model.IgnoreInvalidFile
	}

	metadata := model.JSONMap{"file_size": info.Size()}

	if objType == "image" {
		width, height, err := media.Resolution(path)
		if err != nil {
			if errors.Is(err, media.ErrBombProtection) {
				s.store.LogError(
					model.ErrorDecompressionBomb,
					"Decompression Bomb Error",
					fmt.Sprintf("A decompression bomb error has occurred while trying to create an object from the path '%s'.", path),
					err.Error(),
					model.JSONMap{"path": path},
				)
				return nil, model.IgnoreDecompressionBomb
			}

			s.store.LogError(
				model.ErrorResolutionNotFound,
				"Resolution not found",
				fmt.Sprintf("Not saving '%s' as an image object.", path),
				err.Error(),
				model.JSONMap{"path": path},
			)
			return nil, model.IgnoreInvalidFile
		}

		metadata["resolution"] = map[string]interface{}{
			"width":  width,
			"height": height,
			"total":  width + height,
		}
	}

	return &model.Object{
		Type:             objType,
		Path:             path,
		Name:             util.GetFileName(path),
		FileID:           fileID,
		FileCreationDate: info.ModTime(),
		Metadata:         metadata,
	}, ""
}
