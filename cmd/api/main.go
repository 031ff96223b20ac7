package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"giveget/internal/adapter/api"
	"giveget/internal/adapter/api/handler"
	apimiddleware "giveget/internal/adapter/api/middleware"
	"giveget/internal/adapter/api/router"
	"giveget/internal/adapter/repository"
	"giveget/internal/domain/service"
	"giveget/internal/infrastructure/firebase"
	"giveget/internal/infrastructure/ratelimit"
	"giveget/internal/infrastructure/storage"
	"giveget/internal/infrastructure/websocket"
	"giveget/internal/usecase"
	"giveget/pkg/config"
	"giveget/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := credentials(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase: %v", err)
	}

	adminAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Auth: %v", err)
	}

	authClient, err := firebase.NewAuthClient(ctx, adminAuth, cfg.FirebaseApiKey)
	if err != nil {
		logger.Fatal("Failed to initialize Identity Toolkit: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		logger.Fatal("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	fileService, err := newFileService(ctx, cfg, opt)
	if err != nil {
		logger.Fatal("Failed to initialize %s storage: %v", cfg.Storage.Driver, err)
	}
	defer fileService.Close()

	profileRepo := repository.NewFirestoreProfileRepository(firestoreClient)
	postRepo := repository.NewFirestorePostRepository(firestoreClient)

	sessions := usecase.NewSessionStore()
	accountUseCase := usecase.NewAccountUseCase(profileRepo, postRepo, authClient, sessions)
	postUseCase := usecase.NewPostUseCase(postRepo)

	limiter := ratelimit.NewRateLimiter(map[string]int{
		ratelimit.ActionReauthenticate: cfg.ReauthAttemptsPerMinute,
		ratelimit.ActionCreatePost:     cfg.PostsPerMinute,
	})
	limiter.StartCleanupRoutine(ctx.Done())

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	handler.Setup(accountUseCase, postUseCase)
	handler.SetupFileHandler(fileService, cfg.MaxUploadBytes)
	handler.SetupFeedHandler(wsManager, postRepo)
	handler.SetupHealthHandler(wsManager)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, sessions)
	router.Setup(e, authMiddleware, limiter)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed: %v", err)
	}
}

// credentials prefers inline service account JSON and falls back to a file.
func credentials(cfg *config.Config) option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))
	}

	path := cfg.ServiceAccountPath
	if path == "" {
		path = "./serviceAccountKey.json"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Fatal("Service account file does not exist: %s", path)
	}

	logger.Info("Using Firebase service account from file: %s", path)
	return option.WithCredentialsFile(path)
}

func newFileService(ctx context.Context, cfg *config.Config, opt option.ClientOption) (service.FileUploadService, error) {
	bucket := cfg.Storage.Bucket
	if bucket == "" {
		bucket = cfg.FirebaseProject + ".appspot.com"
	}

	if cfg.Storage.Driver == "minio" {
		return storage.NewMinioStorageClient(
			cfg.Storage.MinioEndpoint,
			cfg.Storage.MinioAccessKey,
			cfg.Storage.MinioSecretKey,
			bucket,
			cfg.Storage.MinioUseSSL,
		)
	}
	return storage.NewCloudStorageClient(ctx, bucket, opt)
}
