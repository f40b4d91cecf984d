package game

import (
	"time"

	"github.com/muggins/cribbage/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeGameStart     EventType = "game_start"
	EventTypeRoundStart    EventType = "round_start"
	EventTypeHandDealt     EventType = "hand_dealt"
	EventTypeCribFormed    EventType = "crib_formed"
	EventTypeTurnUp        EventType = "turn_up"
	EventTypeCardPlayed    EventType = "card_played"
	EventTypeGo            EventType = "go"
	EventTypeSubRoundEnd   EventType = "sub_round_end"
	EventTypeHandScored    EventType = "hand_scored"
	EventTypeCribScored    EventType = "crib_scored"
	EventTypeRoundEnd      EventType = "round_end"
	EventTypeGameEnd       EventType = "game_end"
	EventTypeGameAbandoned EventType = "game_abandoned"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a cribbage game.
// Subscribers receive value copies and cannot mutate game state.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayerInfo describes a seat for event consumers
type PlayerInfo struct {
	Index    int
	Name     string
	Strategy string
}

// GameStartEvent is published once when a game begins
type GameStartEvent struct {
	Players     []PlayerInfo
	TargetScore int
	timestamp   time.Time
}

func (e GameStartEvent) EventType() EventType { return EventTypeGameStart }
func (e GameStartEvent) Timestamp() time.Time { return e.timestamp }

// RoundStartEvent is published when a round begins, before dealing
type RoundStartEvent struct {
	Number    int // 1-based round number
	Dealer    int // seat owning the crib this round
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// HandDealtEvent is published once per player after the deal
type HandDealtEvent struct {
	Player    int
	Cards     []deck.Card
	timestamp time.Time
}

func (e HandDealtEvent) EventType() EventType { return EventTypeHandDealt }
func (e HandDealtEvent) Timestamp() time.Time { return e.timestamp }

// CribFormedEvent is published after every player has discarded
type CribFormedEvent struct {
	Dealer    int
	Discards  [][]deck.Card // indexed by seat; what each player gave up
	ExtraCard bool          // three-player games top the crib up from the deck
	timestamp time.Time
}

func (e CribFormedEvent) EventType() EventType { return EventTypeCribFormed }
func (e CribFormedEvent) Timestamp() time.Time { return e.timestamp }

// TurnUpEvent is published when the turn-up card is cut
type TurnUpEvent struct {
	Card        deck.Card
	Dealer      int
	HeelsPoints int // 2 when the turn-up is a Jack ("his heels"), else 0
	timestamp   time.Time
}

func (e TurnUpEvent) EventType() EventType { return EventTypeTurnUp }
func (e TurnUpEvent) Timestamp() time.Time { return e.timestamp }

// CardPlayedEvent is published after each legal card play
type CardPlayedEvent struct {
	Player    int
	Card      deck.Card
	Count     int // running count after the play
	Points    int // pegging points earned by this play
	SubRound  int // 1-based counting sub-round within the play phase
	timestamp time.Time
}

func (e CardPlayedEvent) EventType() EventType { return EventTypeCardPlayed }
func (e CardPlayedEvent) Timestamp() time.Time { return e.timestamp }

// GoEvent is published when a player passes
type GoEvent struct {
	Player    int
	Count     int
	SubRound  int
	timestamp time.Time
}

func (e GoEvent) EventType() EventType { return EventTypeGo }
func (e GoEvent) Timestamp() time.Time { return e.timestamp }

// SubRoundEndReason explains why a counting sub-round ended
type SubRoundEndReason string

const (
	// ReasonThirtyOne: the count landed exactly on 31
	ReasonThirtyOne SubRoundEndReason = "thirty_one"
	// ReasonAllGo: every player passed since the last reset
	ReasonAllGo SubRoundEndReason = "all_go"
	// ReasonLastCard: the final card of the round was played mid-count
	ReasonLastCard SubRoundEndReason = "last_card"
)

// SubRoundEndEvent is published at every counting reset and when the final
// card of the round earns its point
type SubRoundEndEvent struct {
	LastPlayer int // who played last and receives the bonus
	Bonus      int // bonus points awarded, always 1 per sub-round boundary
	Reason     SubRoundEndReason
	Count      int // count at the moment the sub-round ended
	SubRound   int
	timestamp  time.Time
}

func (e SubRoundEndEvent) EventType() EventType { return EventTypeSubRoundEnd }
func (e SubRoundEndEvent) Timestamp() time.Time { return e.timestamp }

// HandScoredEvent is published for each player's hand at round end
type HandScoredEvent struct {
	Player    int
	Cards     []deck.Card
	TurnUp    deck.Card
	Points    int
	timestamp time.Time
}

func (e HandScoredEvent) EventType() EventType { return EventTypeHandScored }
func (e HandScoredEvent) Timestamp() time.Time { return e.timestamp }

// CribScoredEvent is published after the crib is scored for the dealer
type CribScoredEvent struct {
	Dealer    int
	Cards     []deck.Card
	TurnUp    deck.Card
	Points    int
	timestamp time.Time
}

func (e CribScoredEvent) EventType() EventType { return EventTypeCribScored }
func (e CribScoredEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published when a round's scores are finalized
type RoundEndEvent struct {
	Number      int
	RoundScores []int // points earned this round, by seat
	Totals      []int // cumulative game scores after this round, by seat
	timestamp   time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// GameEndEvent is published when a player reaches the target score
type GameEndEvent struct {
	Winner    int
	Scores    []int
	Rounds    int
	timestamp time.Time
}

func (e GameEndEvent) EventType() EventType { return EventTypeGameEnd }
func (e GameEndEvent) Timestamp() time.Time { return e.timestamp }

// GameAbandonedEvent is published when a game is cancelled mid-round, so
// sinks can record a well-defined terminal state instead of a partial score
type GameAbandonedEvent struct {
	Reason    string
	Scores    []int
	timestamp time.Time
}

func (e GameAbandonedEvent) EventType() EventType { return EventTypeGameAbandoned }
func (e GameAbandonedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{subscribers: make([]EventSubscriber, 0)}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, sub := range bus.subscribers {
		sub.OnEvent(event)
	}
}
