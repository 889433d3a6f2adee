package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ObjectType 文件类型注册项，扩展名映射到分类标签
type ObjectType struct {
	Type           string   `mapstructure:"type"`
	FileExtensions []string `mapstructure:"file_extensions"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type ScannerConfig struct {
	Roots              []string `mapstructure:"roots"`
	IgnoredDirectories []string `mapstructure:"ignored_directories"`
	IntervalSeconds    int      `mapstructure:"interval_seconds"`
}

type QueryConfig struct {
	MaxDistance     float64 `mapstructure:"max_distance"`
	DefaultNResults int     `mapstructure:"default_n_results"`
	MaxNResults     int     `mapstructure:"max_n_results"`
}

type ProcessorsConfig struct {
	Dir string `mapstructure:"dir"`
}

type EmbeddingsConfig struct {
	Dimension int `mapstructure:"dimension"`
}

type Config struct {
	Production bool             `mapstructure:"production"`
	Server     ServerConfig     `mapstructure:"server"`
	Scanner    ScannerConfig    `mapstructure:"scanner"`
	Types      []ObjectType     `mapstructure:"types"`
	Query      QueryConfig      `mapstructure:"query"`
	Processors ProcessorsConfig `mapstructure:"processors"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
}

// Load 从 YAML 文件加载配置
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 7000)
	v.SetDefault("scanner.interval_seconds", 30)
	v.SetDefault("scanner.ignored_directories", []string{})
	v.SetDefault("query.max_distance", 1.3)
	v.SetDefault("query.default_n_results", 35)
	v.SetDefault("query.max_n_results", 150)
	v.SetDefault("processors.dir", "./processors")
	v.SetDefault("embeddings.dimension", 512)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// TypeForExtension 根据扩展名查分类标签
func (c *Config) TypeForExtension(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	for _, t := range c.Types {
		if lo.Contains(t.FileExtensions, ext) {
			return t.Type, true
		}
	}
	return "", false
}

// FileExtensions 汇总所有类型的扩展名白名单
func (c *Config) FileExtensions() []string {
	return lo.FlatMap(c.Types, func(t ObjectType, _ int) []string {
		return t.FileExtensions
	})
}

// IsIgnoredDirectory 目录名是否在忽略列表中（大小写不敏感）
func (c *Config) IsIgnoredDirectory(name string) bool {
	return lo.ContainsBy(c.Scanner.IgnoredDirectories, func(d string) bool {
		return strings.EqualFold(d, name)
	})
}
