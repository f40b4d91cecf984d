package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/randutil"
)

func TestRandomAlwaysLegal(t *testing.T) {
	r := NewRandom(randutil.New(5))
	hand := deck.MustParseCards("KhQd9s2c")

	for count := 0; count <= 31; count++ {
		idx, err := r.SelectPlay(game.PlayRequest{Hand: hand, Count: count})
		require.NoError(t, err)

		if idx == game.Pass {
			for _, c := range hand {
				assert.Greater(t, count+c.Count(), 31,
					"passed at count %d while %s was playable", count, c)
			}
			continue
		}
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(hand))
		assert.LessOrEqual(t, count+hand[idx].Count(), 31)
	}
}

func TestRandomDiscardShape(t *testing.T) {
	r := NewRandom(randutil.New(5))
	hand := deck.MustParseCards("KhQd9s2c5hJd")

	discards, err := r.SelectDiscard(game.DiscardRequest{Hand: hand, Keep: 4})
	require.NoError(t, err)
	require.Len(t, discards, 2)
	assert.NotEqual(t, discards[0], discards[1])
}

func TestGreedyDiscardsLowestCounts(t *testing.T) {
	g := NewGreedy()
	hand := deck.MustParseCards("Kh2dAs9cJh5d")

	discards, err := g.SelectDiscard(game.DiscardRequest{Hand: hand, Keep: 4})
	require.NoError(t, err)
	// Ace (1) and 2 are the cheapest to give up.
	assert.ElementsMatch(t, []int{1, 2}, discards)
}

func TestGreedyPlaysHighestLegal(t *testing.T) {
	g := NewGreedy()
	hand := deck.MustParseCards("5h8dKc")

	idx, err := g.SelectPlay(game.PlayRequest{Hand: hand, Count: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, idx, "king counts highest")

	// At 25 the king (10) busts; the 5 is the best fit.
	idx, err = g.SelectPlay(game.PlayRequest{Hand: hand, Count: 25})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	// Nothing fits at 30 except... nothing.
	idx, err = g.SelectPlay(game.PlayRequest{Hand: hand, Count: 30})
	require.NoError(t, err)
	assert.Equal(t, game.Pass, idx)
}

func TestScriptedSequence(t *testing.T) {
	s := NewScripted(3, 0, 1, game.Pass)
	hand := deck.MustParseCards("KhQd9s2c5hJd")

	discards, err := s.SelectDiscard(game.DiscardRequest{Hand: hand, Keep: 4})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0}, discards)

	idx, err := s.SelectPlay(game.PlayRequest{Hand: hand[:4]})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = s.SelectPlay(game.PlayRequest{Hand: hand[:4]})
	require.NoError(t, err)
	assert.Equal(t, game.Pass, idx)

	_, err = s.SelectPlay(game.PlayRequest{Hand: hand[:4]})
	assert.ErrorIs(t, err, ErrScriptExhausted)
}

func TestHumanDelegatesToPrompts(t *testing.T) {
	h := NewHuman("you",
		func(req game.DiscardRequest) ([]int, error) { return []int{0, 1}, nil },
		func(req game.PlayRequest) (int, error) { return 2, nil },
	)

	discards, err := h.SelectDiscard(game.DiscardRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, discards)

	idx, err := h.SelectPlay(game.PlayRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "you", h.Name())
}
