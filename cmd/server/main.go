package main

import (
	"log"

	"github.com/blogstory/internal/config"
	"github.com/blogstory/internal/db"
	"github.com/blogstory/internal/handler"
	"github.com/blogstory/internal/router"
	"github.com/blogstory/internal/token"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnvFile()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(db.Options{Path: cfg.DatabasePath, URL: cfg.DatabaseURL}); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(db.DB, cfg.SeedUsername, cfg.SeedEmail, cfg.SeedPassword); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	api := handler.NewAPI(db.DB, token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, router.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:      true,
	})
	log.Printf("[server] listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
