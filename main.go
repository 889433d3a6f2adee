package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/api"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/config"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/db"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/db/migrate"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/embedder"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/processor"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/scanner"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/search"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/service"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/task"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/vectorindex"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if os.Getenv("GO_ENV") != "production" {
		// 测试环境下 .env
		if err := godotenv.Load(); err != nil {
			log.Fatal("Failed to load .env file")
		}
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "./config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 数据库
	if os.Getenv("DB_DRIVER") == "sqlite" {
		db.InitSQLite(os.Getenv("SQLITE_PATH"))
	} else {
		db.InitPostgres(
			os.Getenv("POSTGRE_USER"),
			os.Getenv("POSTGRE_PASSWORD"),
			os.Getenv("POSTGRE_DB"),
			os.Getenv("POSTGRE_HOST"),
			os.Getenv("POSTGRE_PORT"),
		)
	}

	// 数据库的迁移
	migrate.InitExtensions()
	migrate.DBMigrateAll()
	migrate.InitIndices()

	objectStore := store.New(db.Instance())

	// 模型服务
	modelService := service.NewHTTPModelService(os.Getenv("MODEL_SERVICE_URL"))

	// 向量索引
	index := vectorindex.NewPGVectorIndex(db.Instance(), modelService)

	// 处理器
	processors := processor.LoadProcessors(cfg.Processors.Dir, processor.Deps{
		Store:  objectStore,
		Models: modelService,
	})
	dispatcher := processor.NewManager(objectStore, processors)

	// 后台任务
	tasks := task.NewManager()
	tasks.Start(
		task.ScanWorker(scanner.New(cfg, objectStore), time.Duration(cfg.Scanner.IntervalSeconds)*time.Second),
		task.ProcessWorker(objectStore, dispatcher),
		task.EmbeddingWorker(objectStore, embedder.New(objectStore, index)),
	)

	// fiber 实例
	app := fiber.New(fiber.Config{})

	// CORS 中间件
	app.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("FRONTEND_URL"),
		AllowMethods: "*",
		AllowHeaders: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, Windows Image Explorer!")
	})

	engine := search.NewEngine(objectStore, index, cfg.Query.MaxDistance)
	api.RegisterQueryRoutes(app, engine, objectStore, cfg)

	// 退出时停掉后台任务再关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	go func() {
		<-quit
		tasks.Stop()
		if err := app.Shutdown(); err != nil {
			log.Println("Server shutdown error:", err)
		}
	}()

	// 端口监听
	if err := app.Listen(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil {
		log.Fatal(err)
	}
}
