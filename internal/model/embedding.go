package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Embedding 向量索引中的一条文档，按 object id 作主键 upsert
type Embedding struct {
	ObjectID  string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Document string `gorm:"type:text"`

	// 元数据冗余自 Object，用于不回查对象表就能审计索引
	Path   string `gorm:"type:text"`
	Name   string `gorm:"type:text"`
	FileID string `gorm:"type:text"`

	Vector pgvector.Vector `gorm:"type:vector(512)"`
}
