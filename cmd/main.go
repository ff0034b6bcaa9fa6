package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/adapters/memory"
	adaptermongo "github.com/voiceflow-cms/server/adapters/mongo"
	"github.com/voiceflow-cms/server/adapters/speaker"
	"github.com/voiceflow-cms/server/adapters/stt"
	"github.com/voiceflow-cms/server/adapters/tts"
	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/api"
	"github.com/voiceflow-cms/server/internal/auth"
	"github.com/voiceflow-cms/server/internal/bus"
	"github.com/voiceflow-cms/server/internal/config"
	"github.com/voiceflow-cms/server/internal/gateway"
	"github.com/voiceflow-cms/server/internal/metrics"
	"github.com/voiceflow-cms/server/internal/nlu"
	"github.com/voiceflow-cms/server/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Shared event bus
	eventBus, err := bus.New(ctx, cfg.Redis.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer eventBus.Close()

	// Storage. An empty Mongo URI selects the in-memory repositories.
	var (
		users      repositories.UserRepository
		workspaces repositories.WorkspaceRepository
		content    repositories.ContentRepository
		profiles   repositories.VoiceProfileRepository
	)
	if cfg.Mongo.URI != "" {
		client, err := adaptermongo.NewClient(cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Close(ctx)

		users = adaptermongo.NewUserRepository(client.Database)
		workspaces = adaptermongo.NewWorkspaceRepository(client.Database)
		content = adaptermongo.NewContentRepository(client.Database)
		profiles = adaptermongo.NewVoiceProfileRepository(client.Database)
	} else {
		logger.Warn("No MongoDB URI configured, using in-memory storage")
		users = memory.NewUserRepository()
		workspaces = memory.NewWorkspaceRepository()
		content = memory.NewContentRepository()
		profiles = memory.NewVoiceProfileRepository()
	}

	// Voice adapters
	var transcriber repositories.Transcriber
	if cfg.STT.UseMock {
		transcriber = stt.NewMockTranscriber(logger)
	} else {
		google, err := stt.NewGoogleTranscriber(ctx, cfg.STT.MaxConcurrent, logger)
		if err != nil {
			logger.Fatal("Failed to create Google transcriber", zap.Error(err))
		}
		defer google.Close()
		transcriber = google
	}

	var synthesizer repositories.TextToSpeech
	if cfg.TTS.UseMock {
		synthesizer = tts.NewMockTTS(logger)
	} else {
		synthesizer, err = tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
			APIKey:  cfg.TTS.APIKey,
			VoiceID: cfg.TTS.VoiceID,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create ElevenLabs TTS", zap.Error(err))
		}
	}

	var encoder repositories.SpeakerEncoder
	if cfg.Speaker.UseMock {
		encoder = speaker.NewMockEncoder(logger)
	} else {
		encoder, err = speaker.NewHTTPEncoder(cfg.Speaker.Endpoint, cfg.STT.SampleRate, logger)
		if err != nil {
			logger.Fatal("Failed to create speaker encoder", zap.Error(err))
		}
	}

	audioConfig := repositories.AudioConfig{
		SampleRate: cfg.STT.SampleRate,
		Encoding:   "LINEAR16",
		Language:   cfg.STT.Language,
	}

	voiceService := usecase.NewVoiceService(
		transcriber, synthesizer, encoder, profiles,
		audioConfig, cfg.Speaker.Threshold, logger)

	registry := prometheus.NewRegistry()
	gw := gateway.New(
		transcriber,
		nlu.NewClassifier(),
		eventBus,
		metrics.New(registry),
		gateway.Config{
			RingCapacity:      cfg.Gateway.RingCapacity,
			FillThreshold:     cfg.Gateway.FillThreshold,
			Audio:             audioConfig,
			TranscribeTimeout: cfg.STT.Timeout,
		},
		logger,
	)

	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	handler := api.NewHandler(users, workspaces, content, voiceService, eventBus, issuer, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, handler, gw, registry)

	address := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("address", address))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
