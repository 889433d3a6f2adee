package embedder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/vectorindex"
)

// Generator 为已处理对象生成可检索的向量表示
type Generator struct {
	store *store.Store
	index vectorindex.Index
}

func New(s *store.Store, index vectorindex.Index) *Generator {
	return &Generator{store: s, index: index}
}

// BuildDocument 拼接对象与其定义为单一文档
func BuildDocument(obj *model.Object, definitions []model.ObjectDefinition) string {
	documents := []string{
		fmt.Sprintf("File name: %s", obj.Name),
		fmt.Sprintf("File path: %s", obj.Path),
	}
	for _, def := range definitions {
		documents = append(documents, def.Content)
	}
	return strings.Join(documents, "\n")
}

// GenerateFor upsert 到向量索引并置 generated_embeddings 标记。
// 无论成败都记录耗时指标
func (g *Generator) GenerateFor(ctx context.Context, obj *model.Object, definitions []model.ObjectDefinition) error {
	log.Printf("Generating embeddings for object '%s (%s)' and its %d definition(s).", obj.Name, obj.ID, len(definitions))

	st := time.Now()
	defer func() {
		tt := time.Since(st).Seconds()
		g.store.LogTimeMetric(
			model.MetricGenerateEmbeddings,
			tt,
			fmt.Sprintf("Generated embeddings for object '%s (%s)'", obj.Name, obj.ID),
			fmt.Sprintf("Generated embeddings in %.2fs for object '%s (%s)' with %d definition(s).", tt, obj.Name, obj.ID, len(definitions)),
		)
	}()

	text := BuildDocument(obj, definitions)

	err := g.index.Upsert(ctx, obj.ID, text, map[string]string{
		"path":    obj.Path,
		"name":    obj.Name,
		"file_id": obj.FileID,
	})
	if err != nil {
		return err
	}

	return g.store.MarkEmbedded(obj.ID)
}
