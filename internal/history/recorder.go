// Package history persists finished games to SQLite so results survive the
// process and can be queried afterwards. The recorder subscribes to the
// game's event bus and mirrors every event into relational rows.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
)

// Completion states a persisted game can end in.
const (
	CompletionInProgress = "in_progress"
	CompletionCompleted  = "completed"
	CompletionAbandoned  = "abandoned"
)

// cribSeat marks crib rows in round_hands; player rows use their seat index.
const cribSeat = -1

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   INTEGER NOT NULL,
	target_score INTEGER NOT NULL,
	completion   TEXT NOT NULL DEFAULT 'in_progress',
	winner       INTEGER,
	final_scores TEXT
);

CREATE TABLE IF NOT EXISTS game_players (
	game_id  INTEGER NOT NULL REFERENCES games(id),
	seat     INTEGER NOT NULL,
	name     TEXT NOT NULL,
	strategy TEXT NOT NULL,
	PRIMARY KEY (game_id, seat)
);

CREATE TABLE IF NOT EXISTS rounds (
	game_id      INTEGER NOT NULL REFERENCES games(id),
	number       INTEGER NOT NULL,
	dealer       INTEGER NOT NULL,
	turn_up      TEXT,
	heels_points INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, number)
);

CREATE TABLE IF NOT EXISTS round_hands (
	game_id INTEGER NOT NULL REFERENCES games(id),
	number  INTEGER NOT NULL,
	seat    INTEGER NOT NULL,
	cards   TEXT NOT NULL,
	points  INTEGER NOT NULL,
	PRIMARY KEY (game_id, number, seat)
);

CREATE TABLE IF NOT EXISTS plays (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id   INTEGER NOT NULL REFERENCES games(id),
	number    INTEGER NOT NULL,
	sub_round INTEGER NOT NULL,
	seq       INTEGER NOT NULL,
	seat      INTEGER NOT NULL,
	card      TEXT NOT NULL,
	count     INTEGER NOT NULL,
	points    INTEGER NOT NULL
);
`

// Recorder is a game event sink backed by SQLite. It is not safe for
// concurrent use; subscribe one recorder per game.
type Recorder struct {
	db     *sql.DB
	logger *log.Logger

	gameID  int64
	round   int
	playSeq int
	err     error
}

// Option configures a recorder
type Option func(*Recorder)

// WithLogger sets the recorder's logger
func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// Open opens (creating if needed) the history database at path and applies
// the schema.
func Open(path string, opts ...Option) (*Recorder, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	r := &Recorder{db: db, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the underlying database. Nil-safe so callers can defer it
// unconditionally.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Err returns the first persistence error encountered, if any. OnEvent
// cannot surface errors, so callers should check this once the game ends.
func (r *Recorder) Err() error {
	return r.err
}

// OnEvent mirrors a game event into the database. Implements
// game.EventSubscriber.
func (r *Recorder) OnEvent(event game.GameEvent) {
	if r.err != nil {
		return
	}
	if err := r.record(event); err != nil {
		r.err = fmt.Errorf("record %s: %w", event.EventType(), err)
		r.logger.Error("history write failed", "event", event.EventType(), "err", err)
	}
}

func (r *Recorder) record(event game.GameEvent) error {
	ctx := context.Background()

	switch e := event.(type) {
	case game.GameStartEvent:
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO games (started_at, target_score, completion) VALUES (?, ?, ?)`,
			toMillis(e.Timestamp()), e.TargetScore, CompletionInProgress)
		if err != nil {
			return err
		}
		r.gameID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, p := range e.Players {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO game_players (game_id, seat, name, strategy) VALUES (?, ?, ?, ?)`,
				r.gameID, p.Index, p.Name, p.Strategy); err != nil {
				return err
			}
		}

	case game.RoundStartEvent:
		r.round = e.Number
		r.playSeq = 0
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO rounds (game_id, number, dealer) VALUES (?, ?, ?)`,
			r.gameID, e.Number, e.Dealer)
		return err

	case game.TurnUpEvent:
		_, err := r.db.ExecContext(ctx,
			`UPDATE rounds SET turn_up = ?, heels_points = ? WHERE game_id = ? AND number = ?`,
			e.Card.Code(), e.HeelsPoints, r.gameID, r.round)
		return err

	case game.CardPlayedEvent:
		r.playSeq++
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO plays (game_id, number, sub_round, seq, seat, card, count, points)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.gameID, r.round, e.SubRound, r.playSeq, e.Player, e.Card.Code(), e.Count, e.Points)
		return err

	case game.GoEvent:
		r.playSeq++
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO plays (game_id, number, sub_round, seq, seat, card, count, points)
			 VALUES (?, ?, ?, ?, ?, '', ?, 0)`,
			r.gameID, r.round, e.SubRound, r.playSeq, e.Player, e.Count)
		return err

	case game.HandScoredEvent:
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO round_hands (game_id, number, seat, cards, points) VALUES (?, ?, ?, ?, ?)`,
			r.gameID, r.round, e.Player, cardCodes(e.Cards), e.Points)
		return err

	case game.CribScoredEvent:
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO round_hands (game_id, number, seat, cards, points) VALUES (?, ?, ?, ?, ?)`,
			r.gameID, r.round, cribSeat, cardCodes(e.Cards), e.Points)
		return err

	case game.GameEndEvent:
		scores, err := json.Marshal(e.Scores)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`UPDATE games SET completion = ?, winner = ?, final_scores = ? WHERE id = ?`,
			CompletionCompleted, e.Winner, string(scores), r.gameID)
		return err

	case game.GameAbandonedEvent:
		scores, err := json.Marshal(e.Scores)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`UPDATE games SET completion = ?, final_scores = ? WHERE id = ?`,
			CompletionAbandoned, string(scores), r.gameID)
		return err
	}
	return nil
}

// GameRecord summarizes one persisted game
type GameRecord struct {
	ID          int64
	StartedAt   time.Time
	TargetScore int
	Completion  string
	Winner      int // -1 for unfinished games
	FinalScores []int
}

// Games returns all persisted games, newest first.
func (r *Recorder) Games(ctx context.Context) ([]GameRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, target_score, completion, winner, final_scores
		 FROM games ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var (
			rec     GameRecord
			started int64
			winner  sql.NullInt64
			scores  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &started, &rec.TargetScore, &rec.Completion, &winner, &scores); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		rec.StartedAt = fromMillis(started)
		rec.Winner = -1
		if winner.Valid {
			rec.Winner = int(winner.Int64)
		}
		if scores.Valid && scores.String != "" {
			if err := json.Unmarshal([]byte(scores.String), &rec.FinalScores); err != nil {
				return nil, fmt.Errorf("decode scores: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func cardCodes(cards []deck.Card) string {
	codes := make([]string, len(cards))
	for i, c := range cards {
		codes[i] = c.Code()
	}
	return strings.Join(codes, " ")
}
