package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/randutil"
)

// DefaultTargetScore is the traditional winning score
const DefaultTargetScore = 121

// ErrGameConfig is returned for invalid game construction parameters. No
// partial game is ever created.
var ErrGameConfig = errors.New("invalid game configuration")

// Game holds cumulative state across rounds: scores, the dealer rotation
// and the target score.
type Game struct {
	players []*Player
	scores  []int
	dealer  int
	target  int
	rounds  int

	rng    *rand.Rand
	logger *log.Logger
	bus    EventBus
}

// Option configures a game
type Option func(*Game)

// WithTargetScore sets the score that ends the game (default 121)
func WithTargetScore(target int) Option {
	return func(g *Game) { g.target = target }
}

// WithDealer fixes the first dealer instead of choosing one at random
func WithDealer(dealer int) Option {
	return func(g *Game) { g.dealer = dealer }
}

// WithRNG sets the RNG used for shuffling, cutting and dealer selection
func WithRNG(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithLogger sets the game's logger
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// WithEventBus sets the bus game events are published to
func WithEventBus(bus EventBus) Option {
	return func(g *Game) { g.bus = bus }
}

// New creates a game for the given named strategies. Between 2 and 4
// players are supported; configuration errors are fatal at construction.
func New(names []string, strategies []Strategy, opts ...Option) (*Game, error) {
	if len(strategies) < 2 || len(strategies) > 4 {
		return nil, fmt.Errorf("%w: %d players, want 2-4", ErrGameConfig, len(strategies))
	}
	if len(names) != len(strategies) {
		return nil, fmt.Errorf("%w: %d names for %d players", ErrGameConfig, len(names), len(strategies))
	}

	g := &Game{
		scores: make([]int, len(strategies)),
		dealer: -1,
		target: DefaultTargetScore,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.target <= 0 {
		return nil, fmt.Errorf("%w: target score %d", ErrGameConfig, g.target)
	}
	if g.dealer < -1 || g.dealer >= len(strategies) {
		return nil, fmt.Errorf("%w: dealer index %d out of range", ErrGameConfig, g.dealer)
	}

	if g.rng == nil {
		g.rng = randutil.New(time.Now().UnixNano())
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	if g.bus == nil {
		g.bus = NewEventBus()
	}
	if g.dealer == -1 {
		g.dealer = g.rng.IntN(len(strategies))
	}

	for i, s := range strategies {
		g.players = append(g.players, NewPlayer(i, names[i], s))
	}
	return g, nil
}

// EventBus returns the bus sinks subscribe to
func (g *Game) EventBus() EventBus {
	return g.bus
}

// Scores returns a snapshot of the cumulative scores
func (g *Game) Scores() []int {
	out := make([]int, len(g.scores))
	copy(out, g.scores)
	return out
}

// Dealer returns the current dealer seat
func (g *Game) Dealer() int {
	return g.dealer
}

// Play runs rounds until a player reaches the target score and returns the
// winner's seat. Cancelling the context abandons the game in a well-defined
// terminal state.
func (g *Game) Play(ctx context.Context) (int, error) {
	g.publishStart()

	for !g.won() {
		if err := ctx.Err(); err != nil {
			g.bus.Publish(GameAbandonedEvent{Reason: err.Error(), Scores: g.Scores(), timestamp: time.Now()})
			return -1, fmt.Errorf("game abandoned: %w", err)
		}

		g.rounds++
		if err := g.playRound(ctx); err != nil {
			g.bus.Publish(GameAbandonedEvent{Reason: err.Error(), Scores: g.Scores(), timestamp: time.Now()})
			return -1, err
		}

		g.dealer = (g.dealer + 1) % len(g.players)
	}

	winner := g.winner()
	g.bus.Publish(GameEndEvent{Winner: winner, Scores: g.Scores(), Rounds: g.rounds, timestamp: time.Now()})
	g.logger.Info("game over", "winner", g.players[winner].Name, "scores", g.scores)
	return winner, nil
}

// playRound drives one round through its state machine and folds its score
// vector into the game totals, capped at the target.
func (g *Game) playRound(ctx context.Context) error {
	g.bus.Publish(RoundStartEvent{Number: g.rounds, Dealer: g.dealer, timestamp: time.Now()})
	g.logger.Debug("round start", "round", g.rounds, "dealer", g.players[g.dealer].Name)

	d := deck.New(g.rng)
	d.Shuffle()
	round := NewRound(g.rounds, g.players, g.dealer, d, g.logger, g.bus)

	steps := []func() error{
		round.Deal,
		round.FormCrib,
		round.DrawTurnUp,
		round.PlayAll,
		round.ScoreHands,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("game abandoned: %w", err)
		}
		if err := step(); err != nil {
			return fmt.Errorf("round %d: %w", g.rounds, err)
		}
	}

	roundScores := round.Scores()
	for i, pts := range roundScores {
		g.scores[i] += pts
		if g.scores[i] > g.target {
			g.scores[i] = g.target
		}
	}

	g.bus.Publish(RoundEndEvent{
		Number:      g.rounds,
		RoundScores: roundScores,
		Totals:      g.Scores(),
		timestamp:   time.Now(),
	})
	return nil
}

func (g *Game) publishStart() {
	infos := make([]PlayerInfo, len(g.players))
	for i, p := range g.players {
		infos[i] = PlayerInfo{Index: p.Index, Name: p.Name, Strategy: p.Strategy.Name()}
	}
	g.bus.Publish(GameStartEvent{Players: infos, TargetScore: g.target, timestamp: time.Now()})
}

func (g *Game) won() bool {
	for _, s := range g.scores {
		if s >= g.target {
			return true
		}
	}
	return false
}

func (g *Game) winner() int {
	best := 0
	for i, s := range g.scores {
		if s > g.scores[best] {
			best = i
		}
	}
	return best
}
