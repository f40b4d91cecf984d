package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/randutil"
)

func TestNewValidation(t *testing.T) {
	two := []Strategy{greedyStub{}, greedyStub{}}

	tests := []struct {
		name       string
		names      []string
		strategies []Strategy
		opts       []Option
	}{
		{"one player", []string{"A"}, []Strategy{greedyStub{}}, nil},
		{"five players", []string{"A", "B", "C", "D", "E"},
			[]Strategy{greedyStub{}, greedyStub{}, greedyStub{}, greedyStub{}, greedyStub{}}, nil},
		{"name count mismatch", []string{"A"}, two, nil},
		{"zero target", []string{"A", "B"}, two, []Option{WithTargetScore(0)}},
		{"negative target", []string{"A", "B"}, two, []Option{WithTargetScore(-5)}},
		{"dealer out of range", []string{"A", "B"}, two, []Option{WithDealer(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.names, tt.strategies, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGameConfig)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
		WithRNG(randutil.New(7)))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, g.Scores())
	assert.NotNil(t, g.EventBus())
	// The random first dealer must still be a valid seat.
	assert.GreaterOrEqual(t, g.Dealer(), 0)
	assert.Less(t, g.Dealer(), 2)
}

func TestPlayEndsAtTargetScore(t *testing.T) {
	rec := &eventRecorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)

	g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
		WithRNG(randutil.New(42)),
		WithDealer(0),
		WithEventBus(bus))
	require.NoError(t, err)

	winner, err := g.Play(context.Background())
	require.NoError(t, err)

	scores := g.Scores()
	assert.Equal(t, 121, scores[winner])
	for _, s := range scores {
		assert.LessOrEqual(t, s, 121)
	}

	ends := rec.ofType(EventTypeGameEnd)
	require.Len(t, ends, 1)
	end := ends[0].(GameEndEvent)
	assert.Equal(t, winner, end.Winner)
	assert.Equal(t, scores, end.Scores)
	assert.Equal(t, len(rec.ofType(EventTypeRoundEnd)), end.Rounds)
}

func TestPlayIsDeterministicForSeed(t *testing.T) {
	run := func() (int, []int) {
		g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
			WithRNG(randutil.New(5)), WithDealer(1))
		require.NoError(t, err)
		winner, err := g.Play(context.Background())
		require.NoError(t, err)
		return winner, g.Scores()
	}

	w1, s1 := run()
	w2, s2 := run()
	assert.Equal(t, w1, w2)
	assert.Equal(t, s1, s2)
}

func TestPlayLowTarget(t *testing.T) {
	// A tiny target ends the game after the first round and exercises the
	// score cap: nobody overshoots the target.
	g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
		WithRNG(randutil.New(3)), WithDealer(0), WithTargetScore(5))
	require.NoError(t, err)

	winner, err := g.Play(context.Background())
	require.NoError(t, err)

	for _, s := range g.Scores() {
		assert.LessOrEqual(t, s, 5)
	}
	assert.Equal(t, 5, g.Scores()[winner])
}

func TestDealerRotates(t *testing.T) {
	rec := &eventRecorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)

	g, err := New([]string{"A", "B", "C"}, []Strategy{greedyStub{}, greedyStub{}, greedyStub{}},
		WithRNG(randutil.New(11)), WithDealer(2), WithEventBus(bus))
	require.NoError(t, err)

	_, err = g.Play(context.Background())
	require.NoError(t, err)

	starts := rec.ofType(EventTypeRoundStart)
	require.NotEmpty(t, starts)
	for i, e := range starts {
		assert.Equal(t, (2+i)%3, e.(RoundStartEvent).Dealer)
	}
}

func TestPlayAbandonedOnCancelledContext(t *testing.T) {
	rec := &eventRecorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)

	g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
		WithRNG(randutil.New(1)), WithDealer(0), WithEventBus(bus))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	winner, err := g.Play(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, -1, winner)
	assert.Len(t, rec.ofType(EventTypeGameAbandoned), 1)
	assert.Empty(t, rec.ofType(EventTypeGameEnd))
}

// cancelAfterRound cancels the game's context at the first round boundary.
type cancelAfterRound struct {
	cancel context.CancelFunc
}

func (c *cancelAfterRound) OnEvent(event GameEvent) {
	if event.EventType() == EventTypeRoundEnd {
		c.cancel()
	}
}

func TestPlayAbandonedMidGame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &eventRecorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)
	bus.Subscribe(&cancelAfterRound{cancel: cancel})

	g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
		WithRNG(randutil.New(8)), WithDealer(0), WithEventBus(bus))
	require.NoError(t, err)

	_, err = g.Play(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, rec.ofType(EventTypeRoundEnd), 1)
	abandoned := rec.ofType(EventTypeGameAbandoned)
	require.Len(t, abandoned, 1)
	// The partial scores survive into the terminal event.
	assert.Equal(t, g.Scores(), abandoned[0].(GameAbandonedEvent).Scores)
}

func TestHisHeelsOnlyForJacks(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		rec := &eventRecorder{}
		bus := NewEventBus()
		bus.Subscribe(rec)

		g, err := New([]string{"A", "B"}, []Strategy{greedyStub{}, greedyStub{}},
			WithRNG(randutil.New(seed)), WithDealer(0), WithEventBus(bus), WithTargetScore(30))
		require.NoError(t, err)
		_, err = g.Play(context.Background())
		require.NoError(t, err)

		for _, e := range rec.ofType(EventTypeTurnUp) {
			ev := e.(TurnUpEvent)
			if ev.Card.Rank == deck.Jack {
				assert.Equal(t, 2, ev.HeelsPoints)
			} else {
				assert.Zero(t, ev.HeelsPoints)
			}
		}
	}
}
