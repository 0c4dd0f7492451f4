package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/edustack/tutor-platform/internal/config"
	"github.com/edustack/tutor-platform/internal/database"
	"github.com/edustack/tutor-platform/internal/handler"
	"github.com/edustack/tutor-platform/internal/logger"
	"github.com/edustack/tutor-platform/internal/middleware"
	"github.com/edustack/tutor-platform/internal/queue"
	"github.com/edustack/tutor-platform/internal/repository"
	"github.com/edustack/tutor-platform/internal/router"
	"github.com/edustack/tutor-platform/internal/service"
	"github.com/edustack/tutor-platform/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	tenantRepo := repository.NewTenantRepo(db)
	userRepo := repository.NewUserRepo(db)
	docRepo := repository.NewDocumentRepo(db)

	hasher := utils.BcryptHasher{Cost: cfg.BcryptCost}
	tenantSvc := service.NewTenantService(tenantRepo)
	userSvc := service.NewUserService(userRepo, tenantRepo, hasher)
	docSvc := service.NewDocumentService(docRepo, userRepo)

	// One-time codes live in redis when it is reachable; otherwise an
	// in-process store keeps single-node deployments working.
	var codeStore service.CodeStore
	if rdb := config.NewRedisClient(); rdb != nil {
		codeStore = service.NewRedisCodeStore(rdb)
		zlog.Info("code store: redis")
	} else {
		codeStore = service.NewMemoryCodeStore(nil)
		zlog.Warn("code store: redis unreachable, using in-memory store")
	}
	mailer := service.NewAMQPMailPublisher(cfg.AMQPURL, zlog)
	codeSvc := service.NewCodeService(codeStore, mailer, time.Duration(cfg.CodeTTLMin)*time.Minute)
	go queue.StartMailConsumer(zlog)

	uploadSvc := service.NewUploadService(service.NewLocalObjectStore(cfg.UploadDir, cfg.UploadPath), nil)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID)
	e.Use(logger.RequestLogger(zlog))
	e.Use(middleware.Metrics)

	router.Register(e, cfg, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, userSvc, codeSvc),
		Tenants:   handler.NewTenantHandler(tenantSvc),
		Users:     handler.NewUserHandler(userSvc),
		Documents: handler.NewDocumentHandler(docSvc),
		Uploads:   handler.NewUploadHandler(uploadSvc),
	})

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
