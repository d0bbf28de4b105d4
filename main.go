package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"postsvc/bootstrap"
	"postsvc/database"
	"postsvc/internal/config"
	"postsvc/internal/idgen"
	"postsvc/internal/logging"
	"postsvc/internal/middleware"
	"postsvc/internal/repository"
	"postsvc/internal/routes"
	"postsvc/internal/services"
	"postsvc/internal/socialgraph"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer database.DisconnectMongo(client)
	db := client.Database(cfg.DBName)

	if err := bootstrap.EnsurePostIndexes(ctx, db); err != nil {
		logger.Fatal("ensure indexes failed", zap.Error(err))
	}

	graph, err := socialgraph.NewAMQPClient(cfg.MQURL, cfg.SocialGraphQueue, cfg.RPCTimeout)
	if err != nil {
		logger.Fatal("social graph client failed", zap.Error(err))
	}
	defer graph.Close()

	repo := repository.NewMongoPostRepo(db)
	posts := services.NewPostService(repo, idgen.New(), logger, cfg)
	feed := services.NewFeedService(posts, repo, graph, logger, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.JWTUidOnly(cfg.JWTSecret))

	routes.Register(app, routes.Deps{
		Posts: posts,
		Feed:  feed,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Info("posts service active", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("listen failed", zap.Error(err))
	}
}
