package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/qrpay/internal/config"
	"github.com/Veraticus/qrpay/internal/fx"
	"github.com/Veraticus/qrpay/internal/llm"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/orchestrator"
	"github.com/Veraticus/qrpay/internal/profile"
	"github.com/Veraticus/qrpay/internal/qr"
	"github.com/Veraticus/qrpay/internal/risk"
	"github.com/Veraticus/qrpay/internal/service"
	"github.com/Veraticus/qrpay/internal/session"
	"github.com/Veraticus/qrpay/internal/storage"
)

// app is the fully wired pipeline shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.SQLiteStorage
	fx       *fx.Calculator
	profiles *profile.Store
	sessions *session.Store
	orch     *orchestrator.Orchestrator
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openHistory opens and migrates the history database.
func openHistory(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.History.DBPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	store, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewServiceFromConfig(llm.Config{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
		RetryDelay: cfg.LLM.RetryDelay,
		Cooldown:   cfg.LLM.Cooldown,
		MaxRetries: cfg.LLM.MaxRetries,
		RateLimit:  cfg.LLM.RateLimit,
		MaxTokens:  cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create completion service: %w", err)
	}

	var live fx.RateSource
	if !cfg.FX.DisableLive {
		live = fx.NewOpenERAPI(cfg.FX.LiveURL, cfg.FX.Timeout)
	}
	calc := fx.NewCalculator(fx.Config{
		Live:          live,
		FallbackRates: cfg.FX.FallbackRates,
		Timeout:       cfg.FX.Timeout,
		CacheTTL:      cfg.FX.CacheTTL,
		MarkupPercent: &cfg.FX.MarkupPercent,
		NetworkFee:    &cfg.FX.NetworkFee,
		DefaultRate:   cfg.FX.DefaultRate,
		Retry: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		},
	}, logger)

	profiles := profile.NewStore(model.UserProfile{
		HomeCurrency:   cfg.HomeCurrency,
		PreferredCard:  cfg.PreferredCard,
		RiskPreference: cfg.RiskPreference,
	})
	sessions := session.NewStore(logger)

	orch, err := orchestrator.New(orchestrator.Deps{
		Parser:    qr.NewParser(),
		Decoder:   qr.NewImageDecoder(logger),
		FX:        calc,
		Risk:      risk.NewScorer(profiles),
		Completer: completer,
		Profiles:  profiles,
		Sessions:  sessions,
		History:   store,
		Logger:    logger,
	},
		orchestrator.WithMaxTurns(cfg.Session.MaxTurns),
		orchestrator.WithCompletionTimeout(cfg.LLM.Timeout),
	)
	if err != nil {
		calc.Close()
		_ = store.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		fx:       calc,
		profiles: profiles,
		sessions: sessions,
		orch:     orch,
	}, nil
}

func (a *app) Close() {
	a.fx.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close history database", "error", err)
	}
}
