package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func scanTable(row rowScanner) (Table, error) {
	var (
		t      Table
		seated pgtype.Timestamptz
	)
	if err := row.Scan(&t.ID, &t.Label, &t.Status, &seated); err != nil {
		return Table{}, err
	}
	if seated.Valid {
		ts := seated.Time
		t.SeatedAt = &ts
	}
	return t, nil
}

func (q *Queries) GetTable(ctx context.Context, id string) (Table, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, label, status, seated_at FROM tables WHERE id = $1`, id)
	return scanTable(row)
}

func (q *Queries) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, label, status, seated_at FROM tables ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

type UpdateTableStatusParams struct {
	ID       string
	Status   string
	SeatedAt *time.Time
}

func (q *Queries) UpdateTableStatus(ctx context.Context, arg UpdateTableStatusParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables SET status = $2, seated_at = $3
		WHERE id = $1
		RETURNING id, label, status, seated_at`,
		arg.ID, arg.Status, timestamptzOrNil(arg.SeatedAt))
	return scanTable(row)
}

func (q *Queries) UpsertTable(ctx context.Context, t Table) (Table, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO tables (id, label, status, seated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			status = EXCLUDED.status,
			seated_at = EXCLUDED.seated_at
		RETURNING id, label, status, seated_at`,
		t.ID, t.Label, t.Status, timestamptzOrNil(t.SeatedAt))
	return scanTable(row)
}

// --- Held orders ---

func (q *Queries) GetHeldOrder(ctx context.Context, tableID string) (HeldOrder, error) {
	var (
		h     HeldOrder
		items []byte
	)
	err := q.db.QueryRow(ctx, `
		SELECT table_id, items, guest_count, held_at
		FROM held_orders WHERE table_id = $1`, tableID).
		Scan(&h.TableID, &items, &h.GuestCount, &h.HeldAt)
	if err != nil {
		return HeldOrder{}, err
	}
	if err := json.Unmarshal(items, &h.Items); err != nil {
		return HeldOrder{}, fmt.Errorf("unmarshal held items: %w", err)
	}
	return h, nil
}

// UpsertHeldOrder snapshots a parked cart against its table. At most one
// held order per table: a re-park replaces the previous snapshot.
func (q *Queries) UpsertHeldOrder(ctx context.Context, h HeldOrder) error {
	items, err := json.Marshal(h.Items)
	if err != nil {
		return fmt.Errorf("marshal held items: %w", err)
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO held_orders (table_id, items, guest_count, held_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_id) DO UPDATE SET
			items = EXCLUDED.items,
			guest_count = EXCLUDED.guest_count,
			held_at = EXCLUDED.held_at`,
		h.TableID, items, h.GuestCount, h.HeldAt)
	return err
}

func (q *Queries) DeleteHeldOrder(ctx context.Context, tableID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM held_orders WHERE table_id = $1`, tableID)
	return err
}
