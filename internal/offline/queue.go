// Package offline keeps orders durable when the primary database is
// unreachable and replays them once connectivity returns.
package offline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/foodies-pos/api/internal/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS queued_orders (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	payload   TEXT NOT NULL,
	queued_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Queue is a durable FIFO of order payloads backed by a local sqlite
// file, so a crashed terminal process loses nothing.
type Queue struct {
	db *sqlx.DB
}

func Open(path string) (*Queue, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open offline store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init offline store: %w", err)
	}
	return &Queue{db: db}, nil
}

func (q *Queue) Close() error {
	return q.db.Close()
}

func (q *Queue) Enqueue(ctx context.Context, o database.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO queued_orders (payload) VALUES (?)`, string(payload))
	if err != nil {
		return fmt.Errorf("enqueue order: %w", err)
	}
	return nil
}

func (q *Queue) Pending(ctx context.Context) (int, error) {
	var n int
	err := q.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM queued_orders`)
	if err != nil {
		return 0, fmt.Errorf("count queued orders: %w", err)
	}
	return n, nil
}

type queuedRow struct {
	ID      int64  `db:"id"`
	Payload string `db:"payload"`
}

// Drain replays queued orders oldest first through fn, deleting each
// row only after fn succeeds. The first failure stops the drain and
// everything from that row on stays queued for the next attempt.
func (q *Queue) Drain(ctx context.Context, fn func(context.Context, database.Order) error) (int, error) {
	var rows []queuedRow
	err := q.db.SelectContext(ctx, &rows,
		`SELECT id, payload FROM queued_orders ORDER BY id ASC`)
	if err != nil {
		return 0, fmt.Errorf("list queued orders: %w", err)
	}

	replayed := 0
	for _, row := range rows {
		var o database.Order
		if err := json.Unmarshal([]byte(row.Payload), &o); err != nil {
			// A corrupt payload can never replay; drop it rather than
			// wedging the queue.
			if _, derr := q.db.ExecContext(ctx, `DELETE FROM queued_orders WHERE id = ?`, row.ID); derr != nil {
				return replayed, fmt.Errorf("drop corrupt payload: %w", derr)
			}
			continue
		}
		if err := fn(ctx, o); err != nil {
			return replayed, fmt.Errorf("replay order %s: %w", o.ID, err)
		}
		if _, err := q.db.ExecContext(ctx, `DELETE FROM queued_orders WHERE id = ?`, row.ID); err != nil {
			return replayed, fmt.Errorf("dequeue order %s: %w", o.ID, err)
		}
		replayed++
	}
	return replayed, nil
}

// Saver persists an order to the primary store. Replay depends on it
// being idempotent by order id.
type Saver interface {
	Save(ctx context.Context, o database.Order) (*database.Order, error)
}

// Service wraps the queue with the save-or-queue decision terminals
// rely on while the network flaps.
type Service struct {
	queue *Queue
	saver Saver
	log   zerolog.Logger
}

func NewService(queue *Queue, saver Saver, log zerolog.Logger) *Service {
	return &Service{queue: queue, saver: saver, log: log}
}

// SaveOrQueue tries the primary store first and falls back to the
// local queue. The bool reports whether the order was queued.
func (s *Service) SaveOrQueue(ctx context.Context, o database.Order) (*database.Order, bool, error) {
	saved, err := s.saver.Save(ctx, o)
	if err == nil {
		return saved, false, nil
	}
	s.log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("primary store unavailable, queueing order")

	if qerr := s.queue.Enqueue(ctx, o); qerr != nil {
		return nil, false, fmt.Errorf("order lost: save failed (%v) and queue failed: %w", err, qerr)
	}
	return &o, true, nil
}

type SyncResult struct {
	Replayed  int `json:"replayed"`
	Remaining int `json:"remaining"`
}

// Sync drains the queue into the primary store. Replay is idempotent,
// so a sync that raced a direct save is harmless.
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	replayed, drainErr := s.queue.Drain(ctx, func(ctx context.Context, o database.Order) error {
		_, err := s.saver.Save(ctx, o)
		return err
	})

	remaining, err := s.queue.Pending(ctx)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Replayed: replayed, Remaining: remaining}
	if drainErr != nil {
		s.log.Warn().Err(drainErr).Int("replayed", replayed).Int("remaining", remaining).Msg("offline sync interrupted")
		return res, drainErr
	}
	if replayed > 0 {
		s.log.Info().Int("replayed", replayed).Msg("offline queue drained")
	}
	return res, nil
}

func (s *Service) Pending(ctx context.Context) (int, error) {
	return s.queue.Pending(ctx)
}
