package strategy

import "github.com/muggins/cribbage/internal/game"

// DiscardPrompt asks a person which cards to discard
type DiscardPrompt func(req game.DiscardRequest) ([]int, error)

// PlayPrompt asks a person which card to play (game.Pass for a Go)
type PlayPrompt func(req game.PlayRequest) (int, error)

// Human adapts terminal prompts (or any other interactive surface) to the
// Strategy interface. Mistyped input comes back as an invalid proposal and
// the round re-prompts; only prompt I/O failures surface as errors.
type Human struct {
	name    string
	discard DiscardPrompt
	play    PlayPrompt
}

// NewHuman creates a human strategy backed by the given prompt functions
func NewHuman(name string, discard DiscardPrompt, play PlayPrompt) *Human {
	return &Human{name: name, discard: discard, play: play}
}

// Name implements game.Strategy
func (h *Human) Name() string { return h.name }

// Retryable implements game.Retryable
func (h *Human) Retryable() bool { return true }

// SelectDiscard prompts for discard positions
func (h *Human) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	return h.discard(req)
}

// SelectPlay prompts for a card position or a Go
func (h *Human) SelectPlay(req game.PlayRequest) (int, error) {
	return h.play(req)
}
