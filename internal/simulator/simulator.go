// Package simulator plays batches of games between strategies and
// aggregates the results. Games run concurrently but are seeded
// individually, so a batch is reproducible regardless of worker count.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/randutil"
	"github.com/muggins/cribbage/internal/statistics"
)

// StrategyFactory builds a fresh strategy per game. Strategies can be
// stateful, so they are never shared between concurrent games.
type StrategyFactory func() game.Strategy

// Config holds configuration for running a batch
type Config struct {
	Games       int
	Names       []string
	Strategies  []StrategyFactory
	Seed        int64
	TargetScore int
	Workers     int // 0 means GOMAXPROCS
	GameTimeout time.Duration
	Logger      *log.Logger
}

// Simulator runs game batches
type Simulator struct {
	config Config
}

// New creates a simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Games <= 0 {
		return nil, fmt.Errorf("game count must be positive, got %d", config.Games)
	}
	if len(config.Strategies) < 2 || len(config.Strategies) > 4 {
		return nil, fmt.Errorf("need 2-4 strategies, got %d", len(config.Strategies))
	}
	if len(config.Names) != len(config.Strategies) {
		return nil, fmt.Errorf("%d names for %d strategies", len(config.Names), len(config.Strategies))
	}
	if config.TargetScore == 0 {
		config.TargetScore = game.DefaultTargetScore
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.GameTimeout <= 0 {
		config.GameTimeout = time.Minute
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}, nil
}

// Run plays the configured batch and returns aggregated statistics. The
// first dealer rotates across games so no seat keeps the crib advantage.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	stats := statistics.New(len(s.config.Strategies))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := 0; i < s.config.Games; i++ {
		g.Go(func() error {
			result, err := s.playGame(ctx, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			mu.Lock()
			stats.Add(result)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("result validation failed: %w", err)
	}
	return stats, nil
}

// playGame runs one seeded game and returns its result
func (s *Simulator) playGame(ctx context.Context, index int) (statistics.GameResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.GameTimeout)
	defer cancel()

	seed := s.config.Seed + int64(index)
	dealer := index % len(s.config.Strategies)

	strategies := make([]game.Strategy, len(s.config.Strategies))
	for i, factory := range s.config.Strategies {
		strategies[i] = factory()
	}

	rec := &roundCounter{}
	bus := game.NewEventBus()
	bus.Subscribe(rec)

	g, err := game.New(s.config.Names, strategies,
		game.WithRNG(randutil.New(seed)),
		game.WithDealer(dealer),
		game.WithTargetScore(s.config.TargetScore),
		game.WithLogger(s.config.Logger),
		game.WithEventBus(bus))
	if err != nil {
		return statistics.GameResult{}, err
	}

	winner, err := g.Play(ctx)
	if err != nil {
		return statistics.GameResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	return statistics.GameResult{
		Winner:      winner,
		Scores:      g.Scores(),
		Rounds:      rec.rounds(),
		Seed:        seed,
		FirstDealer: dealer,
	}, nil
}

// roundCounter counts rounds from the event stream
type roundCounter struct {
	mu sync.Mutex
	n  int
}

func (c *roundCounter) OnEvent(event game.GameEvent) {
	if event.EventType() == game.EventTypeRoundEnd {
		c.mu.Lock()
		c.n++
		c.mu.Unlock()
	}
}

func (c *roundCounter) rounds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// PrintSummary writes a human-readable batch summary to w
func PrintSummary(w io.Writer, stats *statistics.Statistics, names []string) {
	fmt.Fprintf(w, "\n=== RESULTS: %d games, %.1f rounds/game ===\n", stats.Games, stats.MeanRounds())

	for seat, name := range names {
		low, high := stats.WinRateInterval95(seat)
		st := stats.Seats[seat]
		fmt.Fprintf(w, "%s: %d wins (%.1f%%, 95%% CI %.1f-%.1f%%), mean score %.1f",
			name, st.Wins, stats.WinRate(seat)*100, low*100, high*100, stats.MeanScore(seat))
		if st.Skunks > 0 || st.DoubleSkunks > 0 {
			fmt.Fprintf(w, ", %d skunks, %d double", st.Skunks, st.DoubleSkunks)
		}
		if st.DealtFirst > 0 {
			fmt.Fprintf(w, ", %d/%d when dealing first", st.WinsAsDealer, st.DealtFirst)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Victory margin: mean %.1f, median %.1f, std dev %.1f\n",
		stats.MeanMargin(), stats.MedianMargin(), stats.StdDev())
	fmt.Fprintf(w, "Margin percentiles: P5=%.0f P25=%.0f P75=%.0f P95=%.0f\n",
		stats.MarginPercentile(0.05), stats.MarginPercentile(0.25),
		stats.MarginPercentile(0.75), stats.MarginPercentile(0.95))
}
