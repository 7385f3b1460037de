package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studyreels/internal/ai"
	"studyreels/internal/config"
	"studyreels/internal/model"
	"studyreels/internal/pkg/logger"
	"studyreels/internal/platform"
	rabbitmqClient "studyreels/internal/platform/rabbitmq"
	redisClient "studyreels/internal/platform/redis"
	"studyreels/internal/repository"
	"studyreels/internal/storage"
	"studyreels/internal/worker"
)

type App struct {
	Config        *config.Config
	Log           *logrus.Logger
	DB            *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Blobs         storage.BlobStore
	LLM           ai.Provider
	MessageWorker *worker.MessagePersistWorker
	OrphanSweeper *worker.OrphanSweeper

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	app := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := platform.OpenDatabase(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), a.Log)
	if err != nil {
		return err
	}
	a.DB = db
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	if a.Redis, err = redisClient.New(ctx, cfg.Redis); err != nil {
		return err
	}
	if a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL); err != nil {
		return err
	}
	if a.Blobs, err = storage.New(ctx, cfg.Storage); err != nil {
		return fmt.Errorf("init blob storage failed: %w", err)
	}

	a.LLM, err = ai.NewProvider(ctx, ai.ChatConfig{
		Provider:    cfg.LLM.Provider,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: float32(cfg.LLM.Temperature),
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLMTimeout(),
	})
	if err != nil {
		return err
	}

	a.MessageWorker = worker.NewMessagePersistWorker(
		a.MQConn,
		repository.NewChatMessageRepository(db),
		cfg.RabbitMQ.MessagePersistQueue,
		a.Log,
	)
	if err := a.MessageWorker.Start(ctx); err != nil {
		return fmt.Errorf("start message worker failed: %w", err)
	}

	if cfg.Cleanup.Enabled {
		a.OrphanSweeper = worker.NewOrphanSweeper(repository.NewReelRepository(db), cfg.OrphanAge(), a.Log)
		if err := a.OrphanSweeper.Start(cfg.Cleanup.Schedule); err != nil {
			return fmt.Errorf("start orphan sweeper failed: %w", err)
		}
	}

	a.Log.WithFields(logrus.Fields{
		"env":          cfg.App.Env,
		"db":           cfg.Database.Driver,
		"storage":      cfg.Storage.Driver,
		"llm_provider": a.LLM.Name(),
		"llm_model":    cfg.LLM.Model,
	}).Info("dependencies ready")
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.OrphanSweeper != nil {
		a.OrphanSweeper.Stop()
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if closer, ok := a.LLM.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
