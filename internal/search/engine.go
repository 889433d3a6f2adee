package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/vectorindex"
	"gorm.io/gorm"
)

// ErrQueryNotFound 请求的已保存查询不存在
var ErrQueryNotFound = errors.New("search: query not found")

// Result 一条命中及其距离
type Result struct {
	Object   model.Object
	Distance float64
}

// Engine 相似度搜索引擎：查索引、对账对象库、落查询历史
type Engine struct {
	store       *store.Store
	index       vectorindex.Index
	maxDistance float64
}

func NewEngine(s *store.Store, index vectorindex.Index, defaultMaxDistance float64) *Engine {
	return &Engine{store: s, index: index, maxDistance: defaultMaxDistance}
}

// Query 相似度搜索。maxDistance 为 nil 时用配置默认值。
// 结果按距离升序，索引中的陈旧命中（对象已不存在）记录后跳过
func (e *Engine) Query(ctx context.Context, text string, nResults int, maxDistance *float64) ([]Result, *model.Query, error) {
	threshold := e.maxDistance
	if maxDistance != nil {
		threshold = *maxDistance
	}

	log.Printf("Querying with '%s'. n_results=%d max_distance=%v", text, nResults, threshold)

	st := time.Now()

	hits, err := e.index.Query(ctx, text, nResults)
	if err != nil {
		return nil, nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Distance > threshold {
			continue
		}

		obj, err := e.store.GetObject(hit.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				message := fmt.Sprintf("Object with ID of '%s' does not exist.", hit.ID)
				metadata := model.JSONMap{"id": hit.ID}
				for k, v := range hit.Metadata {
					metadata[k] = v
				}

				e.store.LogError(model.ErrorObjectNotFoundWhileQuerying, "Object not found while querying", message, "", metadata)
				log.Println(message)
				continue
			}
			return nil, nil, err
		}

		results = append(results, Result{Object: *obj, Distance: hit.Distance})
	}

	// 保存查询历史
	savedQuery := &model.Query{
		Query:           text,
		NResults:        nResults,
		MaxDistance:     threshold,
		ReturnedResults: len(results),
	}
	queryResults := make([]model.QueryResult, 0, len(results))
	for _, r := range results {
		queryResults = append(queryResults, model.QueryResult{
			ObjectID: r.Object.ID,
			Distance: r.Distance,
		})
	}
	if err := e.store.SaveQuery(savedQuery, queryResults); err != nil {
		return nil, nil, err
	}

	tt := time.Since(st).Seconds()
	log.Printf("Query took %.2fs and returned %d result(s).", tt, len(results))
	e.store.LogTimeMetric(model.MetricQuery, tt, "Query objects",
		fmt.Sprintf("Queried objects with query string '%s'.", text))

	return results, savedQuery, nil
}

// SavedResults 重读已保存查询的持久化结果，不重新查向量索引
func (e *Engine) SavedResults(queryID string) (*model.Query, []Result, error) {
	q, err := e.store.GetQuery(queryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrQueryNotFound
		}
		return nil, nil, err
	}

	rows, err := e.store.QueryResults(queryID)
	if err != nil {
		return nil, nil, err
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		obj, err := e.store.GetObject(row.ObjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, nil, err
		}
		results = append(results, Result{Object: *obj, Distance: row.Distance})
	}

	return q, results, nil
}
