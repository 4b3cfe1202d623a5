package main

import (
	"contestsession/internal/api"
	"contestsession/internal/clients"
	"contestsession/internal/config"
	"contestsession/internal/logging"
	"contestsession/internal/session"
	"contestsession/internal/store"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.Logging.Level)
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	execClient := clients.NewExecutionClient(cfg.Services.ExecutionURL, cfg.Services.Timeout)
	similarityClient := clients.NewSimilarityClient(cfg.Services.SimilarityURL, cfg.Services.Timeout)
	storeClient := store.NewClient(cfg.Services.StoreURL, cfg.Services.Timeout)
	completion := store.NewCompletionRecorder(redisClient)

	server := api.NewServer(
		execClient,
		similarityClient,
		storeClient,
		completion,
		session.Options{
			ClockSkew:        cfg.Session.ClockSkew,
			TickInterval:     cfg.Session.TickInterval,
			DefaultTimeLimit: cfg.Session.DefaultTimeLimit,
			DisqualifyDelay:  cfg.Session.DisqualifyDelay,
		},
		cfg.Session.PlagiarismThreshold,
		log,
	)

	log.Infow("starting contest session server",
		"http_port", cfg.Server.HTTPPort,
		"execution_service", cfg.Services.ExecutionURL,
		"similarity_service", cfg.Services.SimilarityURL,
		"submission_store", cfg.Services.StoreURL,
		"redis", cfg.Redis.Addr)

	if err := server.Start(":" + cfg.Server.HTTPPort); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
