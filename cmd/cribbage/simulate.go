package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/randutil"
	"github.com/muggins/cribbage/internal/simulator"
	"github.com/muggins/cribbage/internal/strategy"
)

// SimulateCmd pits strategies against each other over many games
type SimulateCmd struct {
	Games      int      `short:"n" default:"1000" help:"Number of games to play"`
	Strategies []string `short:"s" default:"exhaustive,greedy" help:"Comma-separated strategies (2-4 of: random, greedy, exhaustive)"`
	Seed       int64    `default:"1" help:"Base RNG seed; game i uses seed+i"`
	Target     int      `default:"121" help:"Target score per game"`
	Workers    int      `help:"Concurrent games (default GOMAXPROCS)"`
	Debug      bool     `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	logger := setupLogger("warn", c.Debug)

	names := make([]string, len(c.Strategies))
	factories := make([]simulator.StrategyFactory, len(c.Strategies))
	for i, name := range c.Strategies {
		factory, err := simulationFactory(name, c.Seed, i)
		if err != nil {
			return err
		}
		factories[i] = factory
		names[i] = fmt.Sprintf("%s-%d", name, i)
	}

	sim, err := simulator.New(simulator.Config{
		Games:       c.Games,
		Names:       names,
		Strategies:  factories,
		Seed:        c.Seed,
		TargetScore: c.Target,
		Workers:     c.Workers,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting batch", "games", c.Games, "strategies", c.Strategies)
	start := time.Now()

	ctx, cancel := signalContext()
	defer cancel()

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Completed %d games in %s\n", stats.Games, time.Since(start).Round(time.Millisecond))
	simulator.PrintSummary(os.Stdout, stats, names)
	return nil
}

// simulationFactory maps a strategy name to a per-game factory. Human and
// llm seats are interactive or remote and have no place in a batch.
func simulationFactory(name string, seed int64, seat int) (simulator.StrategyFactory, error) {
	switch name {
	case "random":
		return func() game.Strategy {
			return strategy.NewRandom(randutil.New(seed + int64(seat)*1e9))
		}, nil
	case "greedy":
		return func() game.Strategy { return strategy.NewGreedy() }, nil
	case "exhaustive":
		return func() game.Strategy { return strategy.NewExhaustive() }, nil
	default:
		return nil, fmt.Errorf("strategy %q cannot be simulated (want random, greedy or exhaustive)", name)
	}
}
