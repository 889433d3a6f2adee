package vectorindex

import "context"

// Hit 索引命中，距离越小越相似
type Hit struct {
	ID       string
	Metadata map[string]string
	Distance float64
}

// Index 相似度索引的窄接口。按 id upsert，按文本查询，
// 返回结果按距离升序
type Index interface {
	Upsert(ctx context.Context, id, document string, metadata map[string]string) error
	Query(ctx context.Context, text string, n int) ([]Hit, error)
}
