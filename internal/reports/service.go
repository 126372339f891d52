// Package reports builds end-of-shift numbers: sales totals, tip-out
// obligations, and the blind cash drop.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
)

// House tip-out rates, applied to gross sales.
var (
	BusserRate = decimal.NewFromFloat(0.03)
	BarRate    = decimal.NewFromFloat(0.01)
	RunnerRate = decimal.NewFromFloat(0.02)
)

var ErrEmployeeNotFound = fmt.Errorf("%w: employee not found", apperr.ErrNotFound)

type Store interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (database.Employee, error)
	ListShiftOrders(ctx context.Context, arg database.ListShiftOrdersParams) ([]database.Order, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type TipOuts struct {
	Busser decimal.Decimal `json:"busser"`
	Bar    decimal.Decimal `json:"bar"`
	Runner decimal.Decimal `json:"runner"`
	Total  decimal.Decimal `json:"total"`
}

type ShiftReport struct {
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Since        time.Time       `json:"since"`
	OrderCount   int             `json:"order_count"`
	GuestCount   int32           `json:"guest_count"`
	GrossSales   decimal.Decimal `json:"gross_sales"`
	Tax          decimal.Decimal `json:"tax"`
	FoodSales    decimal.Decimal `json:"food_sales"`
	DrinkSales   decimal.Decimal `json:"drink_sales"`
	CashSales    decimal.Decimal `json:"cash_sales"`
	CardSales    decimal.Decimal `json:"card_sales"`
	Tips         decimal.Decimal `json:"tips"`
	TipOuts      TipOuts         `json:"tip_outs"`
	TakeHomeTips decimal.Decimal `json:"take_home_tips"`
	// ExpectedCash is what the drawer should hold from this shift's
	// sales, the target for the blind drop.
	ExpectedCash decimal.Decimal `json:"expected_cash"`
}

// BuildShiftReport aggregates an employee's completed orders since the
// shift start. Voided and refunded orders never appear because the
// shift query only returns COMPLETED rows.
func (s *Service) BuildShiftReport(ctx context.Context, employeeID uuid.UUID, since time.Time) (*ShiftReport, error) {
	employee, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}

	orders, err := s.store.ListShiftOrders(ctx, database.ListShiftOrdersParams{
		EmployeeID: employeeID,
		Since:      since,
	})
	if err != nil {
		return nil, fmt.Errorf("list shift orders: %w", err)
	}

	report := &ShiftReport{
		EmployeeID:   employeeID,
		EmployeeName: employee.FirstName + " " + employee.LastName,
		Since:        since,
	}
	for _, o := range orders {
		report.OrderCount++
		report.GuestCount += o.GuestCount
		report.GrossSales = report.GrossSales.Add(o.Total)
		report.Tax = report.Tax.Add(o.Tax)
		report.FoodSales = report.FoodSales.Add(o.FoodSales)
		report.DrinkSales = report.DrinkSales.Add(o.DrinkSales)
		report.Tips = report.Tips.Add(o.Tip)

		cash, card, err := s.methodSplit(ctx, o)
		if err != nil {
			return nil, err
		}
		report.CashSales = report.CashSales.Add(cash)
		report.CardSales = report.CardSales.Add(card)
	}

	report.TipOuts = ComputeTipOuts(report.GrossSales)
	report.TakeHomeTips = report.Tips.Sub(report.TipOuts.Total)
	report.ExpectedCash = report.CashSales
	return report, nil
}

// methodSplit attributes an order's revenue to cash or card. Orders
// settled with a single method are attributed wholesale; split orders
// fall back to their payment ledger.
func (s *Service) methodSplit(ctx context.Context, o database.Order) (cash, card decimal.Decimal, err error) {
	switch o.PaymentMethod {
	case enum.PaymentMethodCash:
		return o.Total, decimal.Zero, nil
	case enum.PaymentMethodCard:
		return decimal.Zero, o.Total, nil
	}

	payments, err := s.store.ListPaymentsByOrder(ctx, o.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("list payments for %s: %w", o.ID, err)
	}
	for _, p := range payments {
		if p.Method == enum.PaymentMethodCash {
			cash = cash.Add(p.Amount)
		} else {
			card = card.Add(p.Amount)
		}
	}
	return cash, card, nil
}

// ComputeTipOuts applies the house rates to gross sales, each share
// rounded to cents.
func ComputeTipOuts(grossSales decimal.Decimal) TipOuts {
	t := TipOuts{
		Busser: grossSales.Mul(BusserRate).Round(2),
		Bar:    grossSales.Mul(BarRate).Round(2),
		Runner: grossSales.Mul(RunnerRate).Round(2),
	}
	t.Total = t.Busser.Add(t.Bar).Add(t.Runner)
	return t
}

type BlindDrop struct {
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	CountedCash  decimal.Decimal `json:"counted_cash"`
	Variance     decimal.Decimal `json:"variance"`
}

// ReconcileDrop compares the counted drawer against the shift's
// expected cash. Positive variance is an overage.
func ReconcileDrop(report *ShiftReport, countedCash decimal.Decimal) BlindDrop {
	return BlindDrop{
		ExpectedCash: report.ExpectedCash,
		CountedCash:  countedCash,
		Variance:     countedCash.Sub(report.ExpectedCash),
	}
}
