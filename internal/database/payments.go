package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type CreatePaymentParams struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
	Tip     decimal.Decimal
	Method  string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, amount, tip, method, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, order_id, amount, tip, method, created_at`,
		uuid.New(), arg.OrderID, decimalToNumeric(arg.Amount),
		decimalToNumeric(arg.Tip), arg.Method)
	return scanPayment(row)
}

func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, amount, tip, method, created_at
		FROM payments WHERE order_id = $1
		ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumPaymentsByOrder returns the running total of payment amounts against the
// order. Tips are excluded: settlement compares amounts to order.total only.
func (q *Queries) SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var n pgtype.Numeric
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`,
		orderID).Scan(&n)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(n), nil
}

func scanPayment(row rowScanner) (Payment, error) {
	var (
		p      Payment
		amount pgtype.Numeric
		tip    pgtype.Numeric
	)
	if err := row.Scan(&p.ID, &p.OrderID, &amount, &tip, &p.Method, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	p.Amount = numericToDecimal(amount)
	p.Tip = numericToDecimal(tip)
	return p, nil
}
