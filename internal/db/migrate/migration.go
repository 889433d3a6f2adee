package migrate

import (
	"log"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/db"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
)

// DBMigrateAll 用于迁移所有表结构
func DBMigrateAll() {
	log.Println("Starting table migrations")

	if err := db.Instance().AutoMigrate(
		&model.Object{},
		&model.ObjectDefinition{},
		&model.IgnoredFile{},
		&model.Query{},
		&model.QueryResult{},
		&model.ErrorLog{},
		&model.TimeMetric{},
	); err != nil {
		log.Fatal("Table migrations failed:", err)
	}

	// embeddings 表依赖 vector 类型，只在 PostgreSQL 下迁移
	if db.IsPostgres() {
		if err := db.Instance().AutoMigrate(&model.Embedding{}); err != nil {
			log.Fatal("Embeddings table migration failed:", err)
		}
	}

	log.Println("Table migrations completed")
}
