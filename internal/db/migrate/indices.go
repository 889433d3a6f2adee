package migrate

import (
	"fmt"
	"log"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/db"
)

const maxDegree = 16
const efConstruction = 200

func InitIndices() {
	if !db.IsPostgres() {
		return
	}

	sql := fmt.Sprintf(`
-- HNSW 索引
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1
        FROM pg_indexes
        WHERE schemaname = 'public'
          AND tablename = 'embeddings'
          AND indexname = 'idx_embeddings_vector_hnsw'
    ) THEN
        CREATE INDEX idx_embeddings_vector_hnsw
        ON embeddings USING hnsw (vector vector_l2_ops)
        WITH (m = %d, ef_construction = %d);
    END IF;
END$$;
    `, maxDegree, efConstruction)

	if err := db.Instance().Exec(sql).Error; err != nil {
		log.Fatal("HNSW index initialization failed:", err)
	}
	log.Println("HNSW index initialized")
}
