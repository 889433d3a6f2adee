package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

func InitPostgres(user, password, dbname, host, port string) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	log.Println("PostgreSQL connected")
}

// InitSQLite 本地模式，无需外部数据库
func InitSQLite(path string) {
	var err error
	db, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal("Failed to open sqlite database:", err)
	}
	log.Println("SQLite connected")
}

func Instance() *gorm.DB {
	return db
}

// IsPostgres 向量索引与扩展迁移只在 PostgreSQL 下启用
func IsPostgres() bool {
	return db != nil && db.Dialector.Name() == "postgres"
}
