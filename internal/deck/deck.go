package deck

import (
	"errors"
	rand "math/rand/v2"
)

// ErrEmpty is returned when dealing or cutting from an exhausted deck.
// Running out of cards mid-round means the caller's bookkeeping is broken,
// so callers treat this as fatal rather than recoverable.
var ErrEmpty = errors.New("deck is empty")

// Deck represents a deck of playing cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a new standard 52-card deck in canonical order. The RNG is
// used by Shuffle and Cut; pass one built with randutil.New for
// reproducible games.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// NewStacked creates a deck holding exactly the given cards in order, for
// deterministic tests and scripted scenarios.
func NewStacked(rng *rand.Rand, cards ...Card) *Deck {
	d := &Deck{
		cards: make([]Card, len(cards)),
		rng:   rng,
	}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmpty
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Cut removes and returns a card from a uniformly random position in the
// remaining deck. Used to draw the turn-up.
func (d *Deck) Cut() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmpty
	}
	i := d.rng.IntN(len(d.cards))
	card := d.cards[i]
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a snapshot of the remaining cards
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Unseen returns every card of a standard deck not present in seen. The
// exhaustive discard search scores candidate keeps against each of these as
// a possible turn-up.
func Unseen(seen []Card) []Card {
	out := make([]Card, 0, 52-len(seen))
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			card := NewCard(suit, rank)
			held := false
			for _, c := range seen {
				if c == card {
					held = true
					break
				}
			}
			if !held {
				out = append(out, card)
			}
		}
	}
	return out
}
