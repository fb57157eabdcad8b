package main

import (
	"context"
	"fmt"
	"os"
	"time"

	auction "auction-service/internal/auctionService"
	"auction-service/internal/config"
	"auction-service/internal/identity"
	"auction-service/internal/notifier"
	"auction-service/internal/repository"
	"auction-service/internal/server"
	"auction-service/utils"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	repo, users := setupStore(cfg)
	sink := setupNotifier(cfg)

	auctionSvc := auction.NewAuctionService(repo, users, sink)
	identitySvc := identity.NewService(users, sink, cfg.JWTSecret)

	router := server.SetupRouter(auctionSvc, identitySvc)

	addr := ":" + cfg.Port
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// setupStore connects to MongoDB when configured and falls back to the
// in-memory store otherwise
func setupStore(cfg config.Config) (repository.AuctionDB, repository.UserDB) {
	if cfg.MongoURI == "" {
		repo := repository.NewMemoryRepo()
		return repo, repo
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.NewMongoRepo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		utils.Fatal("failed to connect to MongoDB", map[string]any{"error": err.Error()})
	}
	return repo, repo
}

// setupNotifier connects to RabbitMQ when configured and falls back to the
// logging notifier otherwise
func setupNotifier(cfg config.Config) notifier.Notifier {
	if cfg.AMQPURL == "" {
		return notifier.LogNotifier{}
	}

	sink, err := notifier.NewAMQPNotifier(cfg.AMQPURL)
	if err != nil {
		utils.Fatal("failed to connect to RabbitMQ", map[string]any{"error": err.Error()})
	}
	return sink
}
