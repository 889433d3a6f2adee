package store

import (
	"errors"
	"log"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"gorm.io/gorm"
)

// Store 对象库的所有读写都经过这里，三个后台循环与查询路径共用
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) CreateObject(obj *model.Object) error {
	return s.db.Create(obj).Error
}

// FileSeen file_id 是否已存在于对象表或忽略表
func (s *Store) FileSeen(fileID string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.Object{}).Where("file_id = ?", fileID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	if err := s.db.Model(&model.IgnoredFile{}).Where("file_id = ?", fileID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateIgnoredFile(fileID, reason string) error {
	return s.db.Create(&model.IgnoredFile{FileID: fileID, Type: reason}).Error
}

func (s *Store) CreateDefinition(def *model.ObjectDefinition) error {
	return s.db.Create(def).Error
}

func (s *Store) DefinitionsFor(objectID string) ([]model.ObjectDefinition, error) {
	var defs []model.ObjectDefinition
	err := s.db.Where("object_id = ?", objectID).Order("created_at ASC").Find(&defs).Error
	return defs, err
}

// randomObject 在匹配行中均匀随机取一行，避免队首饥饿
func (s *Store) randomObject(query string) (*model.Object, error) {
	var obj model.Object
	err := s.db.Where(query).Order("RANDOM()").Limit(1).First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// RandomUnprocessed 调度器的选择谓词
func (s *Store) RandomUnprocessed() (*model.Object, error) {
	return s.randomObject("processed = false AND error = false AND generated_embeddings = false")
}

// RandomEmbeddable 向量生成器的选择谓词
func (s *Store) RandomEmbeddable() (*model.Object, error) {
	return s.randomObject("generated_embeddings = false AND error = false AND processed = true")
}

func (s *Store) MarkProcessed(objectID string) error {
	now := time.Now()
	return s.db.Model(&model.Object{}).Where("id = ?", objectID).Updates(map[string]interface{}{
		"processed":           true,
		"last_processed_time": &now,
	}).Error
}

func (s *Store) MarkError(objectID, traceback string) error {
	return s.db.Model(&model.Object{}).Where("id = ?", objectID).Updates(map[string]interface{}{
		"error":           true,
		"error_traceback": traceback,
	}).Error
}

func (s *Store) MarkEmbedded(objectID string) error {
	return s.db.Model(&model.Object{}).Where("id = ?", objectID).
		Update("generated_embeddings", true).Error
}

func (s *Store) GetObject(id string) (*model.Object, error) {
	var obj model.Object
	if err := s.db.Where("id = ?", id).First(&obj).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

// SaveQuery 保存查询历史及其命中
func (s *Store) SaveQuery(q *model.Query, results []model.QueryResult) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		for i := range results {
			results[i].QueryID = q.ID
			if err := tx.Create(&results[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetQuery(id string) (*model.Query, error) {
	var q model.Query
	if err := s.db.Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Store) QueryResults(queryID string) ([]model.QueryResult, error) {
	var results []model.QueryResult
	err := s.db.Where("query_id = ?", queryID).Order("distance ASC").Find(&results).Error
	return results, err
}

// ListQueries 分页查询历史，按创建时间或返回结果数排序
func (s *Store) ListQueries(page, pageSize int, sortBy, direction string) ([]model.Query, int64, error) {
	columns := map[string]string{
		"created_at": "created_at",
		"results":    "returned_results",
	}
	column, ok := columns[sortBy]
	if !ok {
		column = "created_at"
	}

	order := column + " DESC"
	if direction == "ascending" {
		order = column + " ASC"
	}

	var count int64
	if err := s.db.Model(&model.Query{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var queries []model.Query
	err := s.db.Order(order).Limit(pageSize).Offset((page - 1) * pageSize).Find(&queries).Error
	return queries, count, err
}

// LogError 数据库错误日志，记录失败只打日志不中断调用方
func (s *Store) LogError(typ, title, message, traceback string, metadata model.JSONMap) {
	entry := &model.ErrorLog{
		Type:      typ,
		Title:     title,
		Message:   message,
		Traceback: traceback,
		Metadata:  metadata,
	}
	if err := s.db.Create(entry).Error; err != nil {
		log.Println("Failed to write error log:", err)
	}
}

// LogTimeMetric 耗时指标
func (s *Store) LogTimeMetric(typ string, tt float64, title, message string) {
	entry := &model.TimeMetric{
		Type:    typ,
		TT:      tt,
		Title:   title,
		Message: message,
	}
	if err := s.db.Create(entry).Error; err != nil {
		log.Println("Failed to write time metric:", err)
	}
}
