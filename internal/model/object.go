package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONMap 自由格式元数据，序列化为 JSON 存储
type JSONMap map[string]interface{}

// Object 被索引的文件及其处理状态
type Object struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Type      string    `gorm:"type:text;index"` // image / document

	Path             string    `gorm:"type:text"`
	Name             string    `gorm:"type:text"`
	FileID           string    `gorm:"type:text;uniqueIndex"` // 设备号+inode 派生的稳定标识
	FileCreationDate time.Time ``
	Metadata         JSONMap   `gorm:"type:text;serializer:json"` // 文件大小、分辨率等

	Processed           bool       `gorm:"default:false"`
	GeneratedEmbeddings bool       `gorm:"default:false"`
	LastProcessedTime   *time.Time ``

	Error          bool   `gorm:"default:false"`
	ErrorTraceback string `gorm:"type:text"`

	Definitions []ObjectDefinition `gorm:"foreignKey:ObjectID"`
}

func (o *Object) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (o *Object) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":                   o.ID,
		"created_at":           o.CreatedAt,
		"type":                 o.Type,
		"path":                 o.Path,
		"name":                 o.Name,
		"file_id":              o.FileID,
		"file_creation_date":   o.FileCreationDate,
		"metadata":             o.Metadata,
		"processed":            o.Processed,
		"last_processed_time":  o.LastProcessedTime,
		"error":                o.Error,
		"error_traceback":      o.ErrorTraceback,
		"generated_embeddings": o.GeneratedEmbeddings,
	}
}

// ObjectDefinition 处理器产出的分析结果，如图片描述
type ObjectDefinition struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Type      string    `gorm:"type:text"` // image-description

	Content string  `gorm:"type:text"`
	TT      float64 ``                  // 处理耗时（秒）
	Model   string  `gorm:"type:text"` // 产出该定义的模型

	ObjectID string `gorm:"type:uuid;index"`
}

func (d *ObjectDefinition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *ObjectDefinition) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":         d.ID,
		"created_at": d.CreatedAt,
		"type":       d.Type,
		"content":    d.Content,
		"tt":         d.TT,
		"model":      d.Model,
	}
}

// IgnoredFile 扫描时应跳过的文件，type 为忽略原因
type IgnoredFile struct {
	FileID string `gorm:"type:text;primaryKey"`
	Type   string `gorm:"type:text"` // invalid-file / decompression-bomb-error
}
