// Package inventory depletes and restores stock as orders settle.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/database"
)

type Store interface {
	GetMenuItem(ctx context.Context, id string) (database.MenuItem, error)
	ListInventory(ctx context.Context) ([]database.InventoryItem, error)
	UpdateInventoryQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
}

// delta is a signed stock movement against one inventory item.
type delta struct {
	itemID string
	qty    decimal.Decimal
}

// Deplete subtracts the stock an order consumed and returns alert
// lines for items that crossed their threshold or ran out. Quantities
// may go negative; overselling raises an alert instead of failing the
// sale.
func Deplete(ctx context.Context, store Store, items []database.CartItem) ([]string, error) {
	byID, touched, err := apply(ctx, store, items, decimal.NewFromInt(-1))
	if err != nil {
		return nil, err
	}

	var alerts []string
	for _, id := range touched {
		item := byID[id]
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			alerts = append(alerts, fmt.Sprintf("86'd: %s", item.Name))
		} else if item.Quantity.LessThanOrEqual(item.Threshold) {
			alerts = append(alerts, fmt.Sprintf("LOW STOCK: %s (%s %s left)",
				item.Name, item.Quantity.String(), item.Unit))
		}
	}
	return alerts, nil
}

// Reverse adds back the stock an order consumed. It resolves lines
// with the same strategy as Deplete so a deplete-reverse pair is a
// no-op on every quantity.
func Reverse(ctx context.Context, store Store, items []database.CartItem) error {
	_, _, err := apply(ctx, store, items, decimal.NewFromInt(1))
	return err
}

// apply resolves every cart line to inventory deltas and persists the
// resulting quantities. It returns the post-apply state of each
// touched item, in first-touch order.
func apply(ctx context.Context, store Store, items []database.CartItem, sign decimal.Decimal) (map[string]database.InventoryItem, []string, error) {
	stock, err := store.ListInventory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list inventory: %w", err)
	}
	byID := make(map[string]database.InventoryItem, len(stock))
	for _, item := range stock {
		byID[item.ID] = item
	}

	var touched []string
	for _, line := range items {
		deltas, err := resolve(ctx, store, stock, line)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range deltas {
			item, ok := byID[d.itemID]
			if !ok {
				// Recipe points at stock that no longer exists.
				continue
			}
			item.Quantity = item.Quantity.Add(d.qty.Mul(sign))
			if !containsID(touched, d.itemID) {
				touched = append(touched, d.itemID)
			}
			byID[d.itemID] = item
		}
	}

	for _, id := range touched {
		if err := store.UpdateInventoryQuantity(ctx, id, byID[id].Quantity); err != nil {
			return nil, nil, fmt.Errorf("update inventory %s: %w", id, err)
		}
	}
	return byID, touched, nil
}

// resolve maps one cart line to stock movements. A recipe on the menu
// item wins; otherwise the first inventory item whose name contains
// the line's name, case-insensitively, is depleted one unit per
// quantity sold. Lines matching nothing are skipped.
func resolve(ctx context.Context, store Store, stock []database.InventoryItem, line database.CartItem) ([]delta, error) {
	qty := decimal.NewFromInt32(line.Quantity)

	menu, err := store.GetMenuItem(ctx, line.MenuItemID)
	switch {
	case err == nil && len(menu.Recipe) > 0:
		deltas := make([]delta, 0, len(menu.Recipe))
		for _, ing := range menu.Recipe {
			deltas = append(deltas, delta{
				itemID: ing.InventoryItemID,
				qty:    ing.Quantity.Mul(qty),
			})
		}
		return deltas, nil
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get menu item %s: %w", line.MenuItemID, err)
	}

	name := strings.ToLower(line.Name)
	if name == "" {
		return nil, nil
	}
	for _, item := range stock {
		if strings.Contains(strings.ToLower(item.Name), name) {
			return []delta{{itemID: item.ID, qty: qty}}, nil
		}
	}
	return nil, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
