package migrate

import (
	"log"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/db"
)

func InitExtensions() {
	if !db.IsPostgres() {
		return
	}

	sql := `
-- 扩展启用
CREATE EXTENSION IF NOT EXISTS vector;
    `

	if err := db.Instance().Exec(sql).Error; err != nil {
		log.Fatal("Extensions initialization failed:", err)
	}
	log.Println("Extensions initialized")
}
