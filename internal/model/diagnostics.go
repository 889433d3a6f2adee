package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 错误日志事件类型（闭集）
const (
	ErrorProcessingObjectFailed      = "processing-object-failed"
	ErrorProcessorLoadFailed         = "processor-load-failed"
	ErrorResolutionNotFound          = "resolution-not-found"
	ErrorDecompressionBomb           = "decompression-bomb-error"
	ErrorObjectNotFoundWhileQuerying = "object-not-found-while-querying"
)

// 时间指标事件类型（闭集）
const (
	MetricGenerateImageCaption = "generate-image-caption"
	MetricQuery                = "query"
	MetricGenerateEmbeddings   = "generate-embeddings"
)

// 忽略原因（闭集）
const (
	IgnoreInvalidFile       = "invalid-file"
	IgnoreDecompressionBomb = "decompression-bomb-error"
)

// ErrorLog 结构化错误记录，通过 store.LogError 创建
type ErrorLog struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Type      string  `gorm:"type:text;index"`
	Title     string  `gorm:"type:text"`
	Message   string  `gorm:"type:text"`
	Traceback string  `gorm:"type:text"`
	Metadata  JSONMap `gorm:"type:text;serializer:json"`
}

func (e *ErrorLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// TimeMetric 耗时性能记录
type TimeMetric struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Type      string    `gorm:"type:text;index"`

	TT      float64 `` // 耗时（秒）
	Title   string  `gorm:"type:text"`
	Message string  `gorm:"type:text"`
}

func (m *TimeMetric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
