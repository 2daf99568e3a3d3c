package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LifeLane/Shadow-Console-sub000/internal/ai"
	"github.com/LifeLane/Shadow-Console-sub000/internal/api"
	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/exchange"
	"github.com/LifeLane/Shadow-Console-sub000/internal/hub"
	"github.com/LifeLane/Shadow-Console-sub000/internal/lifecycle"
	"github.com/LifeLane/Shadow-Console-sub000/internal/manager"
	"github.com/LifeLane/Shadow-Console-sub000/internal/reward"
	"github.com/LifeLane/Shadow-Console-sub000/internal/seed"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage"
	"github.com/LifeLane/Shadow-Console-sub000/internal/telegram"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("🕶️ Shadow Console starting (storage=%s oracle=%s user=%s)",
		cfg.Storage.Driver, cfg.Oracle.Provider, cfg.UserID)

	st, err := storage.New(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer st.Close()

	if err := seed.Run(st, cfg.UserID, cfg.SeedPath, logger); err != nil {
		log.Fatalf("failed to seed collections: %v", err)
	}

	oracle, err := exchange.NewOracle(cfg.Oracle, logger)
	if err != nil {
		log.Fatalf("failed to init price oracle: %v", err)
	}

	bands, err := reward.LoadBands(cfg.RewardPolicyPath)
	if err != nil {
		log.Fatalf("failed to load reward policy: %v", err)
	}
	policy := reward.NewRandomPolicy(bands, nil)

	aiClient := ai.NewClient(cfg.AI)
	insights := ai.NewInsightClient(aiClient)
	chat := ai.NewChatClient(aiClient)

	notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	if err != nil {
		log.Fatalf("failed to init telegram notifier: %v", err)
	}

	h := hub.New(logger)

	controller := lifecycle.New(
		cfg.Lifecycle,
		cfg.UserID,
		insights,
		oracle,
		st.Signals,
		policy,
		logger,
		notifier.Notify,
		func(event lifecycle.Event) { h.Broadcast(event) },
	)
	defer controller.Close()

	missions := manager.NewMissionManager(st.Users, st.Missions, logger)
	staking := manager.NewStakingManager(st.Users, logger)

	server := api.NewServer(logger, controller, st, missions, staking, chat, h, cfg.UserID, cfg.APIPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("🛑 Received %s, shutting down", sig)
	case err := <-errChan:
		logger.Error("HTTP server stopped: %v", err)
	}

	if err := server.Stop(); err != nil {
		logger.Warn("failed to stop HTTP server: %v", err)
	}
	logger.Info("✅ Shadow Console stopped")
}
