package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

func scanMenuItem(row rowScanner) (MenuItem, error) {
	var (
		m      MenuItem
		price  pgtype.Numeric
		recipe []byte
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Category, &price, &m.Description, &recipe); err != nil {
		return MenuItem{}, err
	}
	m.Price = numericToDecimal(price)
	if len(recipe) > 0 {
		if err := json.Unmarshal(recipe, &m.Recipe); err != nil {
			return MenuItem{}, fmt.Errorf("unmarshal recipe: %w", err)
		}
	}
	return m, nil
}

func (q *Queries) GetMenuItem(ctx context.Context, id string) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, name, category, price, description, recipe
		FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, category, price, description, recipe
		FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) UpsertMenuItem(ctx context.Context, m MenuItem) (MenuItem, error) {
	var recipe []byte
	if m.Recipe != nil {
		var err error
		recipe, err = json.Marshal(m.Recipe)
		if err != nil {
			return MenuItem{}, fmt.Errorf("marshal recipe: %w", err)
		}
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO menu_items (id, name, category, price, description, recipe)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			recipe = EXCLUDED.recipe
		RETURNING id, name, category, price, description, recipe`,
		m.ID, m.Name, m.Category, decimalToNumeric(m.Price), m.Description, recipe)
	return scanMenuItem(row)
}
