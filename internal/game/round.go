package game

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/score"
)

// Phase tracks a round's progress through its state machine
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseCribSelection
	PhaseTurnUp
	PhasePlay
	PhaseHandScoring
	PhaseDone
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseCribSelection:
		return "crib_selection"
	case PhaseTurnUp:
		return "turn_up"
	case PhasePlay:
		return "play"
	case PhaseHandScoring:
		return "hand_scoring"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// cardsPerHand maps player count to dealt hand size
var cardsPerHand = map[int]int{2: 6, 3: 5, 4: 5}

// maxProposalRetries bounds how often a retryable strategy is re-queried
// after an invalid proposal before the round gives up on it.
const maxProposalRetries = 10

var (
	// ErrInvalidProposal wraps a rejected strategy move. Hard for scripted
	// strategies, recovered by re-querying for the rest.
	ErrInvalidProposal = errors.New("invalid move proposal")
	// ErrWrongPhase is returned when round operations run out of order
	ErrWrongPhase = errors.New("operation called in wrong phase")
	// ErrConservation is returned when the 52-card conservation invariant
	// breaks. It indicates a bookkeeping defect and is never recovered.
	ErrConservation = errors.New("card conservation violated")
)

// Round runs one cribbage round: deal, crib formation, turn-up, the play
// (pegging) phase and final hand scoring. A round exclusively owns its
// state; nothing here is safe for concurrent use.
type Round struct {
	players []*Player
	dealer  int
	number  int

	deck      *deck.Deck
	crib      *deck.Hand
	turnUp    deck.Card
	hasTurnUp bool

	count  int
	scores []int
	phase  Phase

	logger *log.Logger
	bus    EventBus
}

// NewRound creates a round for the given players with the given dealer
// (crib owner). The deck is consumed as given; the caller shuffles it.
func NewRound(number int, players []*Player, dealer int, d *deck.Deck, logger *log.Logger, bus EventBus) *Round {
	for _, p := range players {
		p.ResetForRound()
	}
	return &Round{
		players: players,
		dealer:  dealer,
		number:  number,
		deck:    d,
		crib:    deck.NewHand(),
		scores:  make([]int, len(players)),
		phase:   PhaseDealing,
		logger:  logger,
		bus:     bus,
	}
}

// Scores returns the per-seat points earned this round so far
func (r *Round) Scores() []int {
	out := make([]int, len(r.scores))
	copy(out, r.scores)
	return out
}

// TurnUp returns the turn-up card once drawn
func (r *Round) TurnUp() (deck.Card, bool) {
	return r.turnUp, r.hasTurnUp
}

// Phase returns the round's current phase
func (r *Round) Phase() Phase {
	return r.phase
}

// Deal deals the configured number of cards to each player in round-robin
// order, starting with the player after the dealer. The deck is dealt as
// given; the game shuffles it beforehand.
func (r *Round) Deal() error {
	if r.phase != PhaseDealing {
		return fmt.Errorf("%w: deal in %s", ErrWrongPhase, r.phase)
	}

	perHand := cardsPerHand[len(r.players)]

	for i := 0; i < perHand; i++ {
		for off := 1; off <= len(r.players); off++ {
			p := r.players[(r.dealer+off)%len(r.players)]
			card, err := r.deck.Deal()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConservation, err)
			}
			p.Hand.Append(card)
		}
	}

	for _, p := range r.players {
		r.publish(HandDealtEvent{Player: p.Index, Cards: p.Hand.Cards(), timestamp: time.Now()})
		r.logger.Debug("dealt hand", "player", p.Name, "cards", p.Hand.String())
	}

	if err := r.conserved(); err != nil {
		return err
	}
	r.phase = PhaseCribSelection
	return nil
}

// FormCrib asks each player for discards and moves them to the crib. With
// three players the crib is topped up from the deck to four cards.
func (r *Round) FormCrib() error {
	if r.phase != PhaseCribSelection {
		return fmt.Errorf("%w: form crib in %s", ErrWrongPhase, r.phase)
	}

	discardCount := 1
	if len(r.players) == 2 {
		discardCount = 2
	}

	discards := make([][]deck.Card, len(r.players))
	for _, p := range r.players {
		indices, err := r.queryDiscard(p, discardCount)
		if err != nil {
			return err
		}
		moved, err := removeAll(p.Hand, indices)
		if err != nil {
			// queryDiscard validated the indices; failure here is a defect.
			return fmt.Errorf("%w: %v", ErrConservation, err)
		}
		for _, c := range moved {
			r.crib.Append(c)
		}
		discards[p.Index] = moved
		r.logger.Debug("discarded to crib", "player", p.Name, "count", len(moved))
	}

	extra := false
	if len(r.players) == 3 {
		card, err := r.deck.Deal()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConservation, err)
		}
		r.crib.Append(card)
		extra = true
	}

	if r.crib.Len() != 4 {
		return fmt.Errorf("%w: crib has %d cards, want 4", ErrConservation, r.crib.Len())
	}

	r.publish(CribFormedEvent{Dealer: r.dealer, Discards: discards, ExtraCard: extra, timestamp: time.Now()})

	if err := r.conserved(); err != nil {
		return err
	}
	r.phase = PhaseTurnUp
	return nil
}

// DrawTurnUp cuts the turn-up card from the remaining deck. A Jack scores
// two for the dealer ("his heels").
func (r *Round) DrawTurnUp() error {
	if r.phase != PhaseTurnUp {
		return fmt.Errorf("%w: turn up in %s", ErrWrongPhase, r.phase)
	}

	card, err := r.deck.Cut()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConservation, err)
	}
	r.turnUp = card
	r.hasTurnUp = true

	heels := 0
	if card.Rank == deck.Jack {
		heels = 2
		r.scores[r.dealer] += 2
		r.logger.Debug("his heels", "dealer", r.players[r.dealer].Name)
	}
	r.publish(TurnUpEvent{Card: card, Dealer: r.dealer, HeelsPoints: heels, timestamp: time.Now()})

	if err := r.conserved(); err != nil {
		return err
	}
	r.phase = PhasePlay
	return nil
}

// PlayAll runs the full play (pegging) phase: players alternate playing
// cards without letting the running count pass 31, scoring pairs, runs,
// fifteens and thirty-ones as they go. The phase ends when every hand is
// empty.
func (r *Round) PlayAll() error {
	if r.phase != PhasePlay {
		return fmt.Errorf("%w: play in %s", ErrWrongPhase, r.phase)
	}

	n := len(r.players)
	r.count = 0
	inPlay := make([]deck.Card, 0, 8)
	gos := 0
	lastPlayer := -1
	subRound := 1
	current := (r.dealer + 1) % n

	for {
		p := r.players[current]

		card, played, err := r.queryPlay(p, inPlay)
		if err != nil {
			return err
		}

		if !played {
			gos++
			if p.Hand.Len() > 0 {
				// Only an explicit Go is worth announcing; exhausted hands
				// pass silently.
				r.publish(GoEvent{Player: p.Index, Count: r.count, SubRound: subRound, timestamp: time.Now()})
			}
		} else {
			r.count += card.Count()
			inPlay = append(inPlay, card)
			p.Played.Append(card)
			lastPlayer = current
			gos = 0

			points := score.Pegging(inPlay, r.count)
			r.scores[current] += points
			r.publish(CardPlayedEvent{
				Player:    p.Index,
				Card:      card,
				Count:     r.count,
				Points:    points,
				SubRound:  subRound,
				timestamp: time.Now(),
			})
			r.logger.Debug("card played",
				"player", p.Name, "card", card.String(), "count", r.count, "points", points)
		}

		// A sub-round closes when the count hits 31 exactly or everyone has
		// passed. Either way the last player to act pegs one bonus point,
		// never two even when both conditions coincide.
		if r.count == 31 || gos == n {
			reason := ReasonThirtyOne
			if r.count != 31 {
				reason = ReasonAllGo
			}
			r.scores[lastPlayer]++
			r.publish(SubRoundEndEvent{
				LastPlayer: lastPlayer,
				Bonus:      1,
				Reason:     reason,
				Count:      r.count,
				SubRound:   subRound,
				timestamp:  time.Now(),
			})

			r.count = 0
			gos = 0
			inPlay = inPlay[:0]
			subRound++
		}

		if r.handsEmpty() {
			// The count is zero here iff the final play landed on 31 (or the
			// stragglers all passed), in which case the bonus is already paid.
			if r.count > 0 {
				r.scores[lastPlayer]++
				r.publish(SubRoundEndEvent{
					LastPlayer: lastPlayer,
					Bonus:      1,
					Reason:     ReasonLastCard,
					Count:      r.count,
					SubRound:   subRound,
					timestamp:  time.Now(),
				})
			}
			break
		}

		current = (current + 1) % n
	}

	if err := r.conserved(); err != nil {
		return err
	}
	r.phase = PhaseHandScoring
	return nil
}

// ScoreHands scores each player's accumulated played cards against the
// turn-up, then the crib for the dealer.
func (r *Round) ScoreHands() error {
	if r.phase != PhaseHandScoring {
		return fmt.Errorf("%w: score hands in %s", ErrWrongPhase, r.phase)
	}

	for _, p := range r.players {
		cards := p.Played.Cards()
		points := score.Hand(cards, r.turnUp)
		r.scores[p.Index] += points
		r.publish(HandScoredEvent{
			Player:    p.Index,
			Cards:     cards,
			TurnUp:    r.turnUp,
			Points:    points,
			timestamp: time.Now(),
		})
	}

	cribCards := r.crib.Cards()
	cribPoints := score.Crib(cribCards, r.turnUp)
	r.scores[r.dealer] += cribPoints
	r.publish(CribScoredEvent{
		Dealer:    r.dealer,
		Cards:     cribCards,
		TurnUp:    r.turnUp,
		Points:    cribPoints,
		timestamp: time.Now(),
	})

	r.phase = PhaseDone
	return nil
}

// queryDiscard asks a player's strategy for crib discards until it gets a
// valid proposal, subject to the strategy's retry policy.
func (r *Round) queryDiscard(p *Player, discardCount int) ([]int, error) {
	req := DiscardRequest{
		Hand:     p.Hand.Cards(),
		Keep:     p.Hand.Len() - discardCount,
		IsDealer: p.Index == r.dealer,
	}

	for attempt := 0; ; attempt++ {
		indices, err := p.Strategy.SelectDiscard(req)
		if err != nil {
			return nil, fmt.Errorf("player %s discard selection: %w", p.Name, err)
		}

		if reason := validateDiscard(indices, discardCount, p.Hand.Len()); reason != "" {
			r.logger.Warn("rejected discard proposal",
				"player", p.Name, "indices", indices, "reason", reason)
			if !canRetry(p.Strategy) || attempt+1 >= maxProposalRetries {
				return nil, fmt.Errorf("%w: player %s discard %v: %s",
					ErrInvalidProposal, p.Name, indices, reason)
			}
			continue
		}
		return indices, nil
	}
}

// queryPlay asks a player's strategy for a card or a Go until it gets a
// legal proposal. Players with empty hands pass automatically. The card
// stays in the player's hand until the proposal is validated, so rejected
// proposals never leak cards.
func (r *Round) queryPlay(p *Player, inPlay []deck.Card) (deck.Card, bool, error) {
	if p.Hand.Len() == 0 {
		return deck.Card{}, false, nil
	}

	req := PlayRequest{
		Hand:   p.Hand.Cards(),
		Count:  r.count,
		InPlay: append([]deck.Card(nil), inPlay...),
		TurnUp: r.turnUp,
	}

	for attempt := 0; ; attempt++ {
		idx, err := p.Strategy.SelectPlay(req)
		if err != nil {
			return deck.Card{}, false, fmt.Errorf("player %s play selection: %w", p.Name, err)
		}

		reason := ""
		if idx == Pass {
			// A Go is only legal when no held card fits under the ceiling;
			// strategies are validated, not trusted.
			for _, c := range p.Hand.Cards() {
				if r.count+c.Count() <= 31 {
					reason = fmt.Sprintf("cannot say go while %s is playable", c)
					break
				}
			}
			if reason == "" {
				return deck.Card{}, false, nil
			}
		} else if idx < 0 || idx >= p.Hand.Len() {
			reason = fmt.Sprintf("index %d out of range", idx)
		} else {
			card, _ := p.Hand.At(idx)
			if r.count+card.Count() > 31 {
				reason = fmt.Sprintf("playing %s would take the count to %d", card, r.count+card.Count())
			} else {
				removed, err := p.Hand.Remove(idx)
				if err != nil {
					return deck.Card{}, false, fmt.Errorf("%w: %v", ErrConservation, err)
				}
				return removed, true, nil
			}
		}

		r.logger.Warn("rejected play proposal", "player", p.Name, "index", idx, "reason", reason)
		if !canRetry(p.Strategy) || attempt+1 >= maxProposalRetries {
			return deck.Card{}, false, fmt.Errorf("%w: player %s play %d: %s",
				ErrInvalidProposal, p.Name, idx, reason)
		}
	}
}

// handsEmpty reports whether every player has played out their hand
func (r *Round) handsEmpty() bool {
	for _, p := range r.players {
		if p.Hand.Len() > 0 {
			return false
		}
	}
	return true
}

// conserved verifies the 52-card conservation invariant: the deck, all
// hands, all played piles, the crib and the turn-up together hold each card
// of a standard deck exactly once.
func (r *Round) conserved() error {
	counts := make(map[deck.Card]int, 52)
	for _, c := range r.deck.Cards() {
		counts[c]++
	}
	for _, p := range r.players {
		for _, c := range p.Hand.Cards() {
			counts[c]++
		}
		for _, c := range p.Played.Cards() {
			counts[c]++
		}
	}
	for _, c := range r.crib.Cards() {
		counts[c]++
	}
	if r.hasTurnUp {
		counts[r.turnUp]++
	}

	if len(counts) != 52 {
		return fmt.Errorf("%w: %d distinct cards in circulation, want 52", ErrConservation, len(counts))
	}
	for c, n := range counts {
		if n != 1 {
			return fmt.Errorf("%w: card %s present %d times", ErrConservation, c, n)
		}
	}
	return nil
}

func (r *Round) publish(event GameEvent) {
	if r.bus != nil {
		r.bus.Publish(event)
	}
}

// validateDiscard checks a discard proposal: right count, in range, no
// duplicates. Returns a rejection reason or "".
func validateDiscard(indices []int, want, handLen int) string {
	if len(indices) != want {
		return fmt.Sprintf("proposed %d discards, want %d", len(indices), want)
	}
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= handLen {
			return fmt.Sprintf("index %d out of range", i)
		}
		if seen[i] {
			return fmt.Sprintf("duplicate index %d", i)
		}
		seen[i] = true
	}
	return ""
}

// removeAll removes the cards at the given positions, highest first so the
// earlier removals do not shift the later positions.
func removeAll(h *deck.Hand, indices []int) ([]deck.Card, error) {
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	out := make([]deck.Card, 0, len(sorted))
	for _, i := range sorted {
		c, err := h.Remove(i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
