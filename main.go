package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"library-backend/internal/library/books"
	"library-backend/internal/library/loans"
	"library-backend/internal/library/seed"
	"library-backend/internal/library/students"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.Path)

	ctx := context.Background()

	// スキーマ作成（冪等・起動時に1回だけ）
	if err := db.EnsureSchema(ctx, conn); err != nil {
		panic(err)
	}

	// シード取込（books → students → 学生CSVの重複除去、の順を守ること）
	// CSVが無いのは正常系：DBが既にシード済みの環境では取込元を置かない運用
	seeder := seed.NewService(conn)
	if sum, err := seeder.ImportBooks(ctx, cfg.Seed.BooksCSV); err != nil {
		log.Printf("[WARN] books import skipped: %v", err)
	} else {
		log.Printf("[INFO] books import: total=%d inserted=%d skipped=%d", sum.Total, sum.Inserted, sum.Skipped)
	}
	if sum, err := seeder.ImportStudents(ctx, cfg.Seed.StudentsCSV); err != nil {
		log.Printf("[WARN] students import skipped: %v", err)
	} else {
		log.Printf("[INFO] students import: total=%d inserted=%d skipped=%d", sum.Total, sum.Inserted, sum.Skipped)

		if n, err := seeder.DeduplicateStudents(cfg.Seed.StudentsCSV); err != nil {
			log.Printf("[WARN] students dedup failed: %v", err)
		} else {
			log.Printf("[INFO] students dedup: %d unique rows", n)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// ログイン
	authSvc := auth.NewService(cfg.Auth.Username, cfg.Auth.PasswordHash, cfg.Auth.JWTSecret)
	auth.RegisterRoutes(r, authSvc)

	// /api/v1（releaseではトークン必須、devはシードやデバッグをしやすいよう素通し）
	api := r.Group("/api/v1")
	if mode == "release" {
		api.Use(auth.RequireAuth(authSvc.Secret()))
	}
	books.RegisterRoutes(api, books.NewService(conn))
	students.RegisterRoutes(api, students.NewService(conn))
	loans.RegisterRoutes(api, loans.NewService(conn))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Fatal(err)
	}
}
