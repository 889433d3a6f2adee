package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
)

// Config 单个处理器的配置，与处理器同名的 JSON 文件
type Config struct {
	Model   string `json:"model"`
	GPU     bool   `json:"gpu"`
	Enabled bool   `json:"enabled"`
}

// Processor 可插拔分析器。每个处理器针对一种对象类型，
// 对对象产出一条定义
type Processor interface {
	ID() string
	Type() string
	Title() string
	Process(ctx context.Context, obj *model.Object) (*model.ObjectDefinition, error)
}

// InvalidObjectType 对象类型与处理器不匹配
type InvalidObjectType struct {
	Expected string
	Provided string
}

func (e *InvalidObjectType) Error() string {
	return fmt.Sprintf("expected '%s' but got '%s'", e.Expected, e.Provided)
}

// LoadConfig 读取处理器目录下 <id>.json
func LoadConfig(dir, id string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, id+".json"))
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig 整体覆盖写回配置文件
func SaveConfig(dir, id string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, id+".json"), data, 0644)
}
