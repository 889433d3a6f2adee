package processor

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
)

// Factory 按配置实例化一个处理器
type Factory func(cfg Config, deps Deps) (Processor, error)

// Deps 处理器可用的外部协作方
type Deps struct {
	Store  *store.Store
	Models ModelClient
}

// ModelClient 处理器需要的模型服务能力
type ModelClient interface {
	AnalyzeImage(path string) (caption string, model string, err error)
}

var factories = map[string]Factory{}

// Register 显式注册处理器工厂，id 即配置文件名
func Register(id string, factory Factory) {
	factories[id] = factory
}

// LoadProcessors 枚举处理器目录，按注册的工厂逐个实例化。
// 单个处理器加载失败只记录，不影响其余
func LoadProcessors(dir string, deps Deps) []Processor {
	log.Println("Loading processors...")

	loaded := make([]Processor, 0, len(factories))
	total := 0

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		log.Println("Failed to list processor directory:", err)
		return loaded
	}

	for _, path := range matches {
		id := strings.TrimSuffix(filepath.Base(path), ".json")
		factory, ok := factories[id]
		if !ok {
			continue
		}
		total++

		p, err := loadOne(dir, id, factory, deps)
		if err != nil {
			log.Printf("Loading '%s' failed: %v", id, err)
			if deps.Store != nil {
				deps.Store.LogError(
					model.ErrorProcessorLoadFailed,
					fmt.Sprintf("Loading processor '%s' failed", id),
					err.Error(),
					"",
					model.JSONMap{"processor": id},
				)
			}
			continue
		}
		if p == nil {
			// disabled 的处理器不算失败
			continue
		}

		loaded = append(loaded, p)
	}

	log.Printf("Successfully loaded %d/%d processor(s).", len(loaded), total)
	return loaded
}

func loadOne(dir, id string, factory Factory, deps Deps) (Processor, error) {
	cfg, err := LoadConfig(dir, id)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		log.Printf("Processor '%s' is disabled, skipping.", id)
		return nil, nil
	}
	return factory(cfg, deps)
}
