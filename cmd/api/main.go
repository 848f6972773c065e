package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmsync/feedstock-service/config"
	"github.com/farmsync/feedstock-service/pkg/broker"
	"github.com/farmsync/feedstock-service/pkg/cache"
	"github.com/farmsync/feedstock-service/pkg/database"
	"github.com/farmsync/feedstock-service/pkg/logger"

	consumptionRepoPkg "github.com/farmsync/feedstock-service/internal/consumption/repository"
	consumptionUCPkg "github.com/farmsync/feedstock-service/internal/consumption/usecase"
	feedRepoPkg "github.com/farmsync/feedstock-service/internal/feed/repository"
	feedUCPkg "github.com/farmsync/feedstock-service/internal/feed/usecase"
	notificationListenerPkg "github.com/farmsync/feedstock-service/internal/notification/listener"
	notificationRepoPkg "github.com/farmsync/feedstock-service/internal/notification/repository"
	notificationUCPkg "github.com/farmsync/feedstock-service/internal/notification/usecase"
	nutritionUCPkg "github.com/farmsync/feedstock-service/internal/nutrition/usecase"
	sessionRepoPkg "github.com/farmsync/feedstock-service/internal/session/repository"
	sessionUCPkg "github.com/farmsync/feedstock-service/internal/session/usecase"
	stockPublisherPkg "github.com/farmsync/feedstock-service/internal/stock/publisher"
	stockRepoPkg "github.com/farmsync/feedstock-service/internal/stock/repository"
	stockUCPkg "github.com/farmsync/feedstock-service/internal/stock/usecase"

	consumptionH "github.com/farmsync/feedstock-service/internal/consumption/handler"
	feedH "github.com/farmsync/feedstock-service/internal/feed/handler"
	notificationH "github.com/farmsync/feedstock-service/internal/notification/handler"
	sessionH "github.com/farmsync/feedstock-service/internal/session/handler"
	stockH "github.com/farmsync/feedstock-service/internal/stock/handler"

	"github.com/farmsync/feedstock-service/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.Config{
		IsDevelopment:     cfg.Server.AppEnv == "development",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	appLogger := logger.New(logConfig)
	defer appLogger.Sync()

	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to PostgreSQL", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("could not connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	brokerCfg := &broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.StockTopic,
		GroupID: cfg.Kafka.GroupID,
	}
	producer := broker.NewProducer(brokerCfg)
	defer producer.Close()
	consumer := broker.NewConsumer(brokerCfg)
	defer consumer.Close()
	appLogger.Info("connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.StockTopic))

	txm := database.NewTxManager(db)

	feedRepo := feedRepoPkg.NewPGRepository(db)
	stockRepo := stockRepoPkg.NewPGRepository(db)
	sessionRepo := sessionRepoPkg.NewPGRepository(db)
	consumptionRepo := consumptionRepoPkg.NewPGRepository(db)
	notificationRepo := notificationRepoPkg.NewPGRepository(db)

	publisher := stockPublisherPkg.NewKafkaPublisher(producer)

	feedUC := feedUCPkg.NewFeedUseCase(feedRepo, txm, appLogger.Named("feed"))
	stockUC := stockUCPkg.NewStockUseCase(stockRepo, feedRepo, txm, redisClient, publisher, appLogger.Named("stock"))
	aggregator := nutritionUCPkg.NewAggregator(consumptionRepo, feedRepo, sessionRepo, redisClient, appLogger.Named("nutrition"))
	consumptionUC := consumptionUCPkg.NewConsumptionUseCase(
		consumptionRepo, sessionRepo, feedRepo, stockUC, aggregator, txm, publisher, appLogger.Named("consumption"))
	sessionUC := sessionUCPkg.NewSessionUseCase(sessionRepo, consumptionUC, appLogger.Named("session"))

	dedupWindow := time.Duration(cfg.Alert.DedupWindowHours) * time.Hour
	notificationUC := notificationUCPkg.NewNotificationUseCase(
		notificationRepo, feedRepo, dedupWindow, appLogger.Named("notification"))

	stockListener := notificationListenerPkg.NewStockListener(consumer, notificationUC, appLogger.Named("listener"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stockListener.Start(ctx)

	handlers := &server.Handlers{
		Feed:         feedH.NewFeedHandler(feedUC, appLogger.Named("handler.feed")),
		Stock:        stockH.NewStockHandler(stockUC, appLogger.Named("handler.stock")),
		Session:      sessionH.NewSessionHandler(sessionUC, aggregator, appLogger.Named("handler.session")),
		Consumption:  consumptionH.NewConsumptionHandler(consumptionUC, appLogger.Named("handler.consumption")),
		Notification: notificationH.NewNotificationHandler(notificationUC, appLogger.Named("handler.notification")),
	}

	router := server.New(handlers, cfg.Server.AppEnv, appLogger.Named("http"))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
