package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, created_at, updated_at, status, items, total, tip,
	service_charge, tax, food_sales, drink_sales, payment_method, table_id,
	guest_count, employee_id, depleted, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o          Order
		items      []byte
		total      pgtype.Numeric
		tip        pgtype.Numeric
		svc        pgtype.Numeric
		tax        pgtype.Numeric
		food       pgtype.Numeric
		drink      pgtype.Numeric
		tableID    pgtype.Text
		method     pgtype.Text
		employeeID pgtype.UUID
		completed  pgtype.Timestamptz
	)
	err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.Status, &items,
		&total, &tip, &svc, &tax, &food, &drink, &method, &tableID,
		&o.GuestCount, &employeeID, &o.Depleted, &completed)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	o.Total = numericToDecimal(total)
	o.Tip = numericToDecimal(tip)
	o.ServiceCharge = numericToDecimal(svc)
	o.Tax = numericToDecimal(tax)
	o.FoodSales = numericToDecimal(food)
	o.DrinkSales = numericToDecimal(drink)
	if method.Valid {
		o.PaymentMethod = method.String
	}
	if tableID.Valid {
		o.TableID = tableID.String
	}
	if employeeID.Valid {
		o.EmployeeID = employeeID.Bytes
	}
	if completed.Valid {
		t := completed.Time
		o.CompletedAt = &t
	}
	return o, nil
}

// UpsertOrder inserts the order or, if the id already exists, refreshes the
// mutable fields. Idempotent by order id: replaying a saved order is a no-op
// state-wise, which the offline queue relies on.
func (q *Queries) UpsertOrder(ctx context.Context, o Order) (Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, fmt.Errorf("marshal order items: %w", err)
	}
	if o.Items == nil {
		items = []byte(`[]`)
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (id, created_at, updated_at, status, items, total,
			tip, service_charge, tax, food_sales, drink_sales, payment_method,
			table_id, guest_count, employee_id, depleted, completed_at)
		VALUES ($1, $2, now(), $3, $4, $5, $6, $7, $8, $9, $10,
			NULLIF($11, ''), NULLIF($12, ''), $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = now(),
			status = EXCLUDED.status,
			items = EXCLUDED.items,
			total = EXCLUDED.total,
			tip = EXCLUDED.tip,
			service_charge = EXCLUDED.service_charge,
			tax = EXCLUDED.tax,
			food_sales = EXCLUDED.food_sales,
			drink_sales = EXCLUDED.drink_sales,
			payment_method = EXCLUDED.payment_method,
			employee_id = EXCLUDED.employee_id
		RETURNING `+orderColumns,
		o.ID, o.CreatedAt, o.Status, items,
		decimalToNumeric(o.Total), decimalToNumeric(o.Tip),
		decimalToNumeric(o.ServiceCharge), decimalToNumeric(o.Tax),
		decimalToNumeric(o.FoodSales), decimalToNumeric(o.DrinkSales),
		o.PaymentMethod, o.TableID, o.GuestCount,
		uuidOrNil(o.EmployeeID), o.Depleted, timestamptzOrNil(o.CompletedAt))
	return scanOrder(row)
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetOrderForUpdate locks the order row to serialize concurrent payment and
// transition writes against it.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR NO KEY UPDATE`, id)
	return scanOrder(row)
}

type ListOrdersParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListActiveOrders returns the kitchen display feed: everything still moving
// through PENDING/PREPARING/READY, oldest first.
func (q *Queries) ListActiveOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status IN ('PENDING', 'PREPARING', 'READY')
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type TransitionOrderParams struct {
	ID     uuid.UUID
	Status string
	// From is the set of statuses the transition is legal from. The update
	// matches zero rows when the order is in any other state, which callers
	// surface as a conflict. This is the single-writer compare-and-transition
	// guard for concurrent terminals.
	From []string
}

// TransitionOrder atomically moves the order to Status if and only if it is
// currently in one of From. Returns pgx.ErrNoRows on a lost race or an
// illegal source state.
func (q *Queries) TransitionOrder(ctx context.Context, arg TransitionOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.From)
	return scanOrder(row)
}

type CompleteOrderParams struct {
	ID         uuid.UUID
	Tax        decimal.Decimal
	FoodSales  decimal.Decimal
	DrinkSales decimal.Decimal
}

// CompleteOrder is the completion leg of TransitionOrder with its mandatory
// bookkeeping: revenue split, tax, completion timestamp, depleted flag.
func (q *Queries) CompleteOrder(ctx context.Context, arg CompleteOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET
			status = 'COMPLETED',
			tax = $2,
			food_sales = $3,
			drink_sales = $4,
			depleted = TRUE,
			completed_at = now(),
			updated_at = now()
		WHERE id = $1 AND status IN ('PENDING', 'PREPARING', 'READY')
		RETURNING `+orderColumns,
		arg.ID, decimalToNumeric(arg.Tax),
		decimalToNumeric(arg.FoodSales), decimalToNumeric(arg.DrinkSales))
	return scanOrder(row)
}

func (q *Queries) SetOrderDepleted(ctx context.Context, id uuid.UUID, depleted bool) error {
	_, err := q.db.Exec(ctx,
		`UPDATE orders SET depleted = $2, updated_at = now() WHERE id = $1`,
		id, depleted)
	return err
}

type ListShiftOrdersParams struct {
	EmployeeID uuid.UUID
	Since      time.Time
}

// ListShiftOrders returns the completed orders an employee closed since the
// start of their shift, for blind-drop reconciliation.
func (q *Queries) ListShiftOrders(ctx context.Context, arg ListShiftOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE employee_id = $1 AND status = 'COMPLETED' AND created_at >= $2
		ORDER BY created_at ASC`, arg.EmployeeID, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func uuidOrNil(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func timestamptzOrNil(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
