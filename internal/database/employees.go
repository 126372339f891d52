package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func scanEmployee(row rowScanner) (Employee, error) {
	var (
		e    Employee
		rate pgtype.Numeric
	)
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Role, &rate, &e.PinHash)
	if err != nil {
		return Employee{}, err
	}
	e.HourlyRate = numericToDecimal(rate)
	return e, nil
}

func (q *Queries) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, role, hourly_rate, pin_hash
		FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

func (q *Queries) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, first_name, last_name, role, hourly_rate, pin_hash
		FROM employees ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// ListEmployeesByRoles returns staff holding any of the given roles. Used by
// the manager PIN check to restrict the bcrypt comparison to elevated roles.
func (q *Queries) ListEmployeesByRoles(ctx context.Context, roles []string) ([]Employee, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, first_name, last_name, role, hourly_rate, pin_hash
		FROM employees WHERE role = ANY($1)`, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (q *Queries) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO employees (id, first_name, last_name, role, hourly_rate, pin_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, first_name, last_name, role, hourly_rate, pin_hash`,
		e.ID, e.FirstName, e.LastName, e.Role,
		decimalToNumeric(e.HourlyRate), e.PinHash)
	return scanEmployee(row)
}
