package main

import (
	"context"
	"log"
	"os"
	"time"

	"artassist/internal/api"
	"artassist/internal/config"
	"artassist/internal/redis"
	"artassist/internal/service/assistant"
	"artassist/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfgPath := os.Getenv("ARTASSIST_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("create redis client: %v", err)
		}
		defer rdb.Close()
		log.Printf("session cache: redis %s", redis.Addr(cfg.Redis))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assistantService := assistant.NewService(cfg)
	manager := worker.NewManager(assistantService, cfg, rdb)
	defer manager.Close()
	if err := manager.Listen(ctx); err != nil {
		log.Fatalf("subscribe session invalidations: %v", err)
	}
	manager.StartReaper(ctx, time.Duration(cfg.BasicConfig.CleanInterval)*time.Minute)

	handlers := api.NewHandler(manager)
	router := gin.Default()
	handlers.RegisterRoutes(router)

	log.Printf("art assistant listening on %s (default provider %s)", cfg.BasicConfig.ServerAddress, cfg.DefaultProvider)
	if err := router.Run(cfg.BasicConfig.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
