package vectorindex

import (
	"context"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/service"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PGVectorIndex 基于 pgvector 的相似度索引，embeddings 表按 object_id upsert
type PGVectorIndex struct {
	db     *gorm.DB
	models service.ModelService
}

func NewPGVectorIndex(db *gorm.DB, models service.ModelService) *PGVectorIndex {
	return &PGVectorIndex{db: db, models: models}
}

func (i *PGVectorIndex) Upsert(ctx context.Context, id, document string, metadata map[string]string) error {
	embedding, err := i.models.AnalyzeText(document)
	if err != nil {
		return err
	}

	row := &model.Embedding{
		ObjectID: id,
		Document: document,
		Path:     metadata["path"],
		Name:     metadata["name"],
		FileID:   metadata["file_id"],
		Vector:   pgvector.NewVector(embedding),
	}

	return i.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "object_id"}},
		UpdateAll: true,
	}).Create(row).Error
}

func (i *PGVectorIndex) Query(ctx context.Context, text string, n int) ([]Hit, error) {
	embedding, err := i.models.AnalyzeText(text)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ObjectID string
		Path     string
		Name     string
		FileID   string
		Distance float64
	}
	err = i.db.WithContext(ctx).Raw(`
        SELECT object_id, path, name, file_id, vector <-> ? AS distance
        FROM embeddings
        ORDER BY vector <-> ?
        LIMIT ?
    `, pgvector.NewVector(embedding), pgvector.NewVector(embedding), n).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, Hit{
			ID: r.ObjectID,
			Metadata: map[string]string{
				"path":    r.Path,
				"name":    r.Name,
				"file_id": r.FileID,
			},
			Distance: r.Distance,
		})
	}
	return hits, nil
}
