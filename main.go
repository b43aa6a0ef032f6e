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
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "timeclock-backend/docs"
	"timeclock-backend/internal/areas"
	"timeclock-backend/internal/attendance"
	"timeclock-backend/internal/dashboard"
	"timeclock-backend/internal/documents"
	"timeclock-backend/internal/employees"
	"timeclock-backend/internal/events"
	"timeclock-backend/internal/live"
	"timeclock-backend/internal/platform/auth"
	"timeclock-backend/internal/platform/db"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}
	if cfg.Auth.Secret == "" {
		log.Fatal("[ERROR] auth.secret is required")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// スキーマ適用（埋め込みmigration）
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("[ERROR] migrate: %v", err)
	}

	// イベント配信。NATSが設定されていればプロセス内Hubと両方へ流す。
	hub := events.NewHub()
	var pub events.Publisher = hub
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("[ERROR] nats connect: %v", err)
		}
		defer np.Close()
		pub = events.Multi{hub, np}
		log.Printf("[INFO] publishing events to NATS at %s", cfg.NATS.URL)
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
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := []byte(cfg.Auth.Secret)
	authSvc := auth.NewService(conn, secret)
	attSvc := attendance.NewService(conn, employees.NewDirectoryAdapter(conn), pub)

	// 認証なし：ログインとバッジリーダの打刻のみ
	public := r.Group("/api/v1")
	auth.RegisterPublicRoutes(public, authSvc)

	// 認証あり
	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth(secret))
	auth.RegisterUserRoutes(api, authSvc)
	attendance.RegisterRoutes(public, api, attSvc, cfg.RFID.MinIntervalMinutes)
	employees.RegisterRoutes(api, employees.NewService(conn))
	areas.RegisterRoutes(api, areas.NewService(conn))
	documents.RegisterRoutes(api, documents.NewService(conn, cfg.Uploads.Dir))
	dashboard.RegisterRoutes(api, dashboard.NewService(conn))
	live.RegisterRoutes(api, hub)

	// admin のみ
	admin := r.Group("/api/v1")
	admin.Use(auth.RequireAuth(secret), auth.RequireRole("admin"))
	auth.RegisterAdminRoutes(admin, authSvc)

	// TLS起動（:8443）
	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	var certFile, keyFile string
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Println("[INFO] listening on https://0.0.0.0:8443")
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
