package strategy

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
)

func chatReply(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
}

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLM {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLLM(LLMConfig{URL: srv.URL, Model: "test-model"}, log.New(io.Discard))
}

func TestLLMUsesValidReply(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("I will play card 2."))
	})

	idx, err := llm.SelectPlay(game.PlayRequest{
		Hand:  deck.MustParseCards("5h8d3c"),
		Count: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestLLMFallsBackOnIllegalReply(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("7")) // out of range
	})

	// Greedy fallback plays the highest-counting legal card: the 8.
	idx, err := llm.SelectPlay(game.PlayRequest{
		Hand:  deck.MustParseCards("5h8d3c"),
		Count: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestLLMFallsBackOnMalformedJSON(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not json")
	})

	idx, err := llm.SelectPlay(game.PlayRequest{
		Hand:  deck.MustParseCards("5h8d3c"),
		Count: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestLLMFallsBackOnServerError(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	discards, err := llm.SelectDiscard(game.DiscardRequest{
		Hand: deck.MustParseCards("5h8d3cKsQd2h"),
		Keep: 4,
	})
	require.NoError(t, err)
	// Greedy fallback discards the two lowest-counting cards: 2h and 3c.
	assert.ElementsMatch(t, []int{2, 5}, discards)
}

func TestLLMPassesWithoutCallingModel(t *testing.T) {
	called := false
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	idx, err := llm.SelectPlay(game.PlayRequest{
		Hand:  deck.MustParseCards("KhQd"),
		Count: 25, // nothing fits under 31
	})
	require.NoError(t, err)
	assert.Equal(t, game.Pass, idx)
	assert.False(t, called, "model should not be consulted when only Go is legal")
}

func TestLLMDiscardParsesTwoPositions(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("Discard positions 4 and 5"))
	})

	discards, err := llm.SelectDiscard(game.DiscardRequest{
		Hand: deck.MustParseCards("5h5d5cJs2d9c"),
		Keep: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, discards)
}
