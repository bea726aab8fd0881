package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wordrush/internal/client"
	"wordrush/internal/game"
	"wordrush/internal/localstore"
	"wordrush/internal/narration"
	"wordrush/internal/practice"
	sharedLogger "wordrush/shared/logger"

	"go.uber.org/zap"
)

const guestUser = "guest"

func main() {
	cfg, err := practice.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
		Service:    "wordrush-practice",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := localstore.Open(cfg.StorePath, cfg.CacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to open local store", zap.String("path", cfg.StorePath), zap.Error(err))
	}

	api := client.New(cfg.APIURL, cfg.RequestTimeout, logger)

	// Without credentials the session runs as a guest: local records only.
	var bests game.BestStore
	userID := guestUser
	if cfg.Email != "" {
		loginCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		res, err := api.Login(loginCtx, cfg.Email, cfg.Password)
		cancel()
		if err != nil {
			logger.Warn("Login failed, playing as guest", zap.Error(err))
			fmt.Println("Login failed, best scores stay on this machine.")
		} else {
			bests = api
			userID = res.User.ID.String()
			fmt.Printf("Welcome back, %s.\n", res.User.Name)
		}
	}

	runner := practice.NewRunner(os.Stdin, os.Stdout, logger)
	ctrl, err := game.NewController(game.Deps{
		Supply:   api,
		Bests:    bests,
		Store:    store.ForUser(userID),
		Narrator: narration.NewConsole(os.Stdout, game.RealClock(), cfg.NarrationBaseDelay, cfg.NarrationPerRuneDelay),
		Clock:    game.RealClock(),
		Logger:   logger,
		OnChange: runner.Publish,
	})
	if err != nil {
		logger.Fatal("Failed to create round controller", zap.Error(err))
	}

	if err := runner.Run(ctx, ctrl); err != nil {
		logger.Error("Practice session failed", zap.Error(err))
	}

	ctrl.Close()
	if err := store.Close(); err != nil {
		logger.Error("Failed to close local store", zap.Error(err))
	}
	fmt.Println("Bye.")
}
