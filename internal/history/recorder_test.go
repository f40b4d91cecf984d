package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/randutil"
	"github.com/muggins/cribbage/internal/strategy"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestRecorderPersistsCompletedGame(t *testing.T) {
	rec := openTestRecorder(t)

	bus := game.NewEventBus()
	bus.Subscribe(rec)

	g, err := game.New([]string{"Alice", "Bob"},
		[]game.Strategy{strategy.NewGreedy(), strategy.NewGreedy()},
		game.WithRNG(randutil.New(17)),
		game.WithDealer(0),
		game.WithTargetScore(31),
		game.WithEventBus(bus))
	require.NoError(t, err)

	winner, err := g.Play(context.Background())
	require.NoError(t, err)
	require.NoError(t, rec.Err())

	games, err := rec.Games(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)

	got := games[0]
	assert.Equal(t, CompletionCompleted, got.Completion)
	assert.Equal(t, 31, got.TargetScore)
	assert.Equal(t, winner, got.Winner)
	assert.Equal(t, g.Scores(), got.FinalScores)
	assert.False(t, got.StartedAt.IsZero())

	// Two seats, and one row per round in each per-round table.
	var players, rounds, hands int
	require.NoError(t, rec.db.QueryRow(
		`SELECT COUNT(*) FROM game_players WHERE game_id = ?`, got.ID).Scan(&players))
	assert.Equal(t, 2, players)

	require.NoError(t, rec.db.QueryRow(
		`SELECT COUNT(*) FROM rounds WHERE game_id = ? AND turn_up IS NOT NULL`, got.ID).Scan(&rounds))
	assert.Greater(t, rounds, 0)

	// Two hands plus the crib per round.
	require.NoError(t, rec.db.QueryRow(
		`SELECT COUNT(*) FROM round_hands WHERE game_id = ?`, got.ID).Scan(&hands))
	assert.Equal(t, rounds*3, hands)

	// Each round pegs out all eight cards.
	var plays int
	require.NoError(t, rec.db.QueryRow(
		`SELECT COUNT(*) FROM plays WHERE game_id = ? AND card != ''`, got.ID).Scan(&plays))
	assert.Equal(t, rounds*8, plays)
}

func TestRecorderMarksAbandonedGame(t *testing.T) {
	rec := openTestRecorder(t)

	bus := game.NewEventBus()
	bus.Subscribe(rec)

	g, err := game.New([]string{"Alice", "Bob"},
		[]game.Strategy{strategy.NewGreedy(), strategy.NewGreedy()},
		game.WithRNG(randutil.New(3)),
		game.WithDealer(0),
		game.WithEventBus(bus))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Play(ctx)
	require.Error(t, err)
	require.NoError(t, rec.Err())

	games, err := rec.Games(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, CompletionAbandoned, games[0].Completion)
	assert.Equal(t, -1, games[0].Winner)
}

func TestRecorderSeparatesConsecutiveGames(t *testing.T) {
	rec := openTestRecorder(t)

	for seed := int64(0); seed < 2; seed++ {
		bus := game.NewEventBus()
		bus.Subscribe(rec)

		g, err := game.New([]string{"Alice", "Bob"},
			[]game.Strategy{strategy.NewGreedy(), strategy.NewGreedy()},
			game.WithRNG(randutil.New(seed)),
			game.WithDealer(0),
			game.WithTargetScore(21),
			game.WithEventBus(bus))
		require.NoError(t, err)
		_, err = g.Play(context.Background())
		require.NoError(t, err)
	}
	require.NoError(t, rec.Err())

	games, err := rec.Games(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	// Newest first.
	assert.Greater(t, games[0].ID, games[1].ID)
	for _, g := range games {
		assert.Equal(t, CompletionCompleted, g.Completion)
	}
}
