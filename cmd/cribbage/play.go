package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/muggins/cribbage/internal/broadcast"
	"github.com/muggins/cribbage/internal/config"
	"github.com/muggins/cribbage/internal/display"
	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/history"
	"github.com/muggins/cribbage/internal/randutil"
)

// PlayCmd plays a single game on the terminal
type PlayCmd struct {
	Config string `short:"c" default:"cribbage.hcl" help:"Path to HCL configuration file"`
	Target int    `help:"Override the target score"`
	Seed   *int64 `help:"Deterministic RNG seed (optional)"`
	DB     string `help:"Override the history database path"`
	Listen string `help:"Override the spectator WebSocket address"`
	Debug  bool   `help:"Enable debug logging"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Target > 0 {
		cfg.Game.TargetScore = c.Target
	}
	if c.DB != "" {
		cfg.Game.HistoryPath = c.DB
	}
	if c.Listen != "" {
		cfg.Game.Listen = c.Listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg.Game.LogLevel, c.Debug)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	}

	fmt.Println(titleStyle.Render(" ♠ ♥ Cribbage ♦ ♣ "))

	strategies := make([]game.Strategy, len(cfg.Players))
	for i, p := range cfg.Players {
		s, err := buildStrategy(p, cfg, seed, i, logger)
		if err != nil {
			return err
		}
		strategies[i] = s
	}

	bus := game.NewEventBus()

	opts := []display.Option{}
	if cfg.Game.ShowHands {
		opts = append(opts, display.WithAllHandsRevealed())
	} else {
		for i, p := range cfg.Players {
			if p.Strategy == "human" {
				opts = append(opts, display.WithRevealedSeat(i))
			}
		}
	}
	bus.Subscribe(display.New(os.Stdout, opts...))

	if cfg.Game.HistoryPath != "" {
		rec, err := history.Open(cfg.Game.HistoryPath, history.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() { _ = rec.Close() }()
		bus.Subscribe(rec)
		defer func() {
			if err := rec.Err(); err != nil {
				logger.Error("history recording incomplete", "err", err)
			}
		}()
	}

	if cfg.Game.Listen != "" {
		hub := broadcast.NewHub(logger)
		defer func() { _ = hub.Close() }()
		bus.Subscribe(hub)

		srv := &http.Server{Addr: cfg.Game.Listen, Handler: hub}
		go func() {
			logger.Info("spectator endpoint listening", "addr", cfg.Game.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator endpoint failed", "err", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	g, err := game.New(cfg.Names(), strategies,
		game.WithTargetScore(cfg.Game.TargetScore),
		game.WithRNG(randutil.New(seed)),
		game.WithLogger(logger),
		game.WithEventBus(bus))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if _, err := g.Play(ctx); err != nil {
		return err
	}
	return nil
}
