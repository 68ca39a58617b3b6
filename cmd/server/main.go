package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"return-adjudicator/config"
	"return-adjudicator/internal/api"
	"return-adjudicator/internal/broker"
	"return-adjudicator/internal/redisclient"
	"return-adjudicator/internal/service"
	"return-adjudicator/internal/store"
	"return-adjudicator/internal/util"
	"return-adjudicator/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting return adjudicator")

	tp, err := util.InitTracer("return-adjudicator", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicDecisions)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	classifier := service.NewClassifierClient(cfg.Policy.ClassifierURL, cfg.Policy.GraphVersion, redisClient)
	adjudicationService := service.NewAdjudicationService(db, redisClient, eventPublisher, classifier, cfg.Policy)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	requestConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicRequests, cfg.Kafka.ConsumerGroup)
	adjudicationWorker := worker.NewAdjudicationWorker(requestConsumer, adjudicationService, eventPublisher, redisClient)
	go func() {
		if err := adjudicationWorker.Start(workerCtx); err != nil {
			log.Printf("Adjudication worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(adjudicationService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	adjudicationWorker.Stop()

	log.Println("Server exited")
}
