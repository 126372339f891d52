package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
)

// ErrBadPIN is returned when a PIN matches no employee in the
// requested role set.
var ErrBadPIN = fmt.Errorf("%w: invalid PIN", apperr.ErrUnauthorized)

type EmployeeStore interface {
	ListEmployeesByRoles(ctx context.Context, roles []string) ([]database.Employee, error)
}

// VerifyPIN finds the employee whose stored bcrypt hash matches pin
// among the given roles. PINs are short so the scan is linear over the
// candidate set rather than a lookup by hash.
func VerifyPIN(ctx context.Context, store EmployeeStore, roles []string, pin string) (*database.Employee, error) {
	employees, err := store.ListEmployeesByRoles(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	for i := range employees {
		if bcrypt.CompareHashAndPassword([]byte(employees[i].PinHash), []byte(pin)) == nil {
			return &employees[i], nil
		}
	}
	return nil, ErrBadPIN
}

// VerifyManagerPIN authorizes a destructive operation. Only elevated
// roles qualify.
func VerifyManagerPIN(ctx context.Context, store EmployeeStore, pin string) (*database.Employee, error) {
	return VerifyPIN(ctx, store, []string{enum.RoleManager, enum.RoleAdmin, enum.RoleOwner}, pin)
}

// HashPIN is used by seeding and employee creation.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
