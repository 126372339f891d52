package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func scanInventoryItem(row rowScanner) (InventoryItem, error) {
	var (
		item      InventoryItem
		qty       pgtype.Numeric
		threshold pgtype.Numeric
		cost      pgtype.Numeric
	)
	err := row.Scan(&item.ID, &item.Name, &qty, &item.Unit, &threshold, &cost, &item.Category)
	if err != nil {
		return InventoryItem{}, err
	}
	item.Quantity = numericToDecimal(qty)
	item.Threshold = numericToDecimal(threshold)
	item.CostPerUnit = numericToDecimal(cost)
	return item, nil
}

func (q *Queries) GetInventoryItem(ctx context.Context, id string) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, name, quantity, unit, threshold, cost_per_unit, category
		FROM inventory_items WHERE id = $1`, id)
	return scanInventoryItem(row)
}

// ListInventory returns all stock sorted by name. Name order is load-bearing:
// the name-match depletion fallback picks the first case-insensitive
// substring match, and sorting pins which one that is.
func (q *Queries) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, quantity, unit, threshold, cost_per_unit, category
		FROM inventory_items ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListLowStock returns items at or below their alert threshold.
func (q *Queries) ListLowStock(ctx context.Context) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, quantity, unit, threshold, cost_per_unit, category
		FROM inventory_items WHERE quantity <= threshold ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateInventoryQuantity sets the absolute quantity. Quantities may go
// negative; overselling alerts instead of blocking.
func (q *Queries) UpdateInventoryQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	_, err := q.db.Exec(ctx,
		`UPDATE inventory_items SET quantity = $2 WHERE id = $1`,
		id, decimalToNumeric(quantity))
	return err
}

func (q *Queries) UpsertInventoryItem(ctx context.Context, item InventoryItem) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO inventory_items (id, name, quantity, unit, threshold, cost_per_unit, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			quantity = EXCLUDED.quantity,
			unit = EXCLUDED.unit,
			threshold = EXCLUDED.threshold,
			cost_per_unit = EXCLUDED.cost_per_unit,
			category = EXCLUDED.category
		RETURNING id, name, quantity, unit, threshold, cost_per_unit, category`,
		item.ID, item.Name, decimalToNumeric(item.Quantity), item.Unit,
		decimalToNumeric(item.Threshold), decimalToNumeric(item.CostPerUnit),
		item.Category)
	return scanInventoryItem(row)
}

func (q *Queries) DeleteInventoryItem(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	return err
}
