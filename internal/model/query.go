package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Query 用户的一次搜索，保存为历史记录
type Query struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// 查询参数
	Query       string  `gorm:"type:text"`
	NResults    int     ``
	MaxDistance float64 ``

	ReturnedResults int ``

	Results []QueryResult `gorm:"foreignKey:QueryID"`
}

func (q *Query) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (q *Query) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":               q.ID,
		"created_at":       q.CreatedAt,
		"query":            q.Query,
		"n_results":        q.NResults,
		"max_distance":     q.MaxDistance,
		"returned_results": q.ReturnedResults,
	}
}

// QueryResult 搜索命中，关联 Query 与 Object
type QueryResult struct {
	ID       uint    `gorm:"primaryKey"`
	QueryID  string  `gorm:"type:uuid;index"`
	ObjectID string  `gorm:"type:uuid"`
	Distance float64 ``
}
