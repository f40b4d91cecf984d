package strategy

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
)

// stallingStrategy blocks until released, simulating an unresponsive
// external collaborator.
type stallingStrategy struct {
	release chan struct{}
}

func (s *stallingStrategy) Name() string    { return "stalling" }
func (s *stallingStrategy) Retryable() bool { return true }

func (s *stallingStrategy) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	<-s.release
	return []int{0, 1}, nil
}

func (s *stallingStrategy) SelectPlay(req game.PlayRequest) (int, error) {
	<-s.release
	return 0, nil
}

func TestTimeoutFallsBackWhenInnerStalls(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)
	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	stall := &stallingStrategy{release: make(chan struct{})}
	defer close(stall.release)

	w := NewTimeout(stall, time.Second, mock, log.New(io.Discard))

	results := make(chan int, 1)
	go func() {
		idx, err := w.SelectPlay(game.PlayRequest{
			Hand:  deck.MustParseCards("5h8d3c"),
			Count: 10,
		})
		require.NoError(t, err)
		results <- idx
	}()

	// Wait for the wrapper to arm its deadline, then fire it.
	call, err := trap.Wait(ctx)
	require.NoError(t, err)
	call.MustRelease(ctx)
	mock.Advance(time.Second).MustWait(ctx)

	// Greedy fallback plays the 8.
	assert.Equal(t, 1, <-results)
}

func TestTimeoutPassesThroughPromptAnswers(t *testing.T) {
	mock := quartz.NewMock(t)
	w := NewTimeout(NewScripted(2), time.Second, mock, log.New(io.Discard))

	idx, err := w.SelectPlay(game.PlayRequest{
		Hand:  deck.MustParseCards("5h8d3c"),
		Count: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestTimeoutReportsInnerRetryability(t *testing.T) {
	mock := quartz.NewMock(t)
	logger := log.New(io.Discard)

	assert.True(t, NewTimeout(NewGreedy(), time.Second, mock, logger).Retryable())
	assert.False(t, NewTimeout(NewScripted(), time.Second, mock, logger).Retryable())
}
