package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpctx "github.com/imagify/imagify-server/internal/api/http/context"
	"github.com/imagify/imagify-server/internal/api/http/router"
	httpServer "github.com/imagify/imagify-server/internal/api/http/server"
	"github.com/imagify/imagify-server/internal/config"
	"github.com/imagify/imagify-server/internal/identity"
	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/mailer"
	"github.com/imagify/imagify-server/internal/repository/postgres"
	"github.com/imagify/imagify-server/internal/service"
	storage "github.com/imagify/imagify-server/internal/storage/minio"
	"github.com/imagify/imagify-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	// Local development convenience; a missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)

	accessTTL := time.Duration(cfg.JWT.AccessExpireMinutes) * time.Minute
	refreshTTL := time.Duration(cfg.JWT.RefreshExpireDays) * 24 * time.Hour
	tokenManager := token.NewJWT(cfg.JWT.Secret, accessTTL)

	verifier, err := identity.NewGoogleVerifier(ctx, cfg.Google.ClientID)
	if err != nil {
		logger.Fatal("failed to initialize google verifier", "error", err)
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket, storage.Options{
		Endpoint: cfg.Storage.Endpoint,
		Secure:   cfg.Storage.UseSSL,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	smtp := mailer.NewSMTP(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.FromName)
	notifier := service.NewNotifier(smtp, logger)
	notifier.Start(ctx)
	defer notifier.Stop()

	authService := service.NewAuth(userRepo, refreshTokenRepo, tokenManager, verifier, storageClient, notifier, refreshTTL, logger)
	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, userRepo, refreshTTL, logger)
	ctxMgr := httpctx.NewManager()

	r := router.New(authService, tokenService, ctxMgr, logger)

	certFile, keyFile := "", ""
	if cfg.HTTP.EnableHTTPS {
		certFile = cfg.HTTP.CertFileName
		keyFile = cfg.HTTP.PrivateKeyFileName
	}
	server := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), certFile, keyFile)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", server.Address())
		if err := server.Start(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", server.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
