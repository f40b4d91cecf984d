package deck

import (
	"fmt"
	"strings"
)

// Hand is an ordered, mutable collection of cards. It backs player hands,
// the crib and the in-play piles during a round; cards move between hands
// one at a time so a full deck is conserved across all of them.
type Hand struct {
	cards []Card
}

// NewHand creates a hand holding the given cards, copying the slice.
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, len(cards))}
	copy(h.cards, cards)
	return h
}

// Len returns the number of cards in the hand
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a snapshot of the hand's cards. Mutating the returned slice
// does not affect the hand.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// At returns the card at position i without removing it.
func (h *Hand) At(i int) (Card, error) {
	if i < 0 || i >= len(h.cards) {
		return Card{}, fmt.Errorf("card index %d out of range (hand has %d cards)", i, len(h.cards))
	}
	return h.cards[i], nil
}

// Append adds a card to the end of the hand
func (h *Hand) Append(card Card) {
	h.cards = append(h.cards, card)
}

// Remove removes and returns the card at position i.
func (h *Hand) Remove(i int) (Card, error) {
	if i < 0 || i >= len(h.cards) {
		return Card{}, fmt.Errorf("card index %d out of range (hand has %d cards)", i, len(h.cards))
	}
	card := h.cards[i]
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return card, nil
}

// Reset empties the hand
func (h *Hand) Reset() {
	h.cards = h.cards[:0]
}

// Contains reports whether the hand holds the given card
func (h *Hand) Contains(card Card) bool {
	for _, c := range h.cards {
		if c == card {
			return true
		}
	}
	return false
}

// String renders the hand as space-separated cards (e.g. "5♥ J♦ K♠")
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
