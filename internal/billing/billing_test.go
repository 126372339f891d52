package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/billing"
	"github.com/foodies-pos/api/internal/database"
)

func item(name, category string, price float64, qty int32) database.CartItem {
	return database.CartItem{
		Name:     name,
		Category: category,
		Price:    decimal.NewFromFloat(price),
		Quantity: qty,
	}
}

func TestComputeTotals(t *testing.T) {
	items := []database.CartItem{
		item("Burger", "Mains", 12.50, 2),
		item("House Red", "Wine", 8.00, 1),
	}

	totals := billing.ComputeTotals(items)

	if got, want := totals.Subtotal.StringFixed(2), "33.00"; got != want {
		t.Errorf("subtotal = %s, want %s", got, want)
	}
	if got, want := totals.Tax.StringFixed(2), "3.30"; got != want {
		t.Errorf("tax = %s, want %s", got, want)
	}
	if got, want := totals.Total.StringFixed(2), "36.30"; got != want {
		t.Errorf("total = %s, want %s", got, want)
	}
	if got, want := totals.FoodSales.StringFixed(2), "25.00"; got != want {
		t.Errorf("food sales = %s, want %s", got, want)
	}
	if got, want := totals.DrinkSales.StringFixed(2), "8.00"; got != want {
		t.Errorf("drink sales = %s, want %s", got, want)
	}
}

func TestComputeTotalsModifiers(t *testing.T) {
	burger := item("Burger", "Mains", 10.00, 2)
	burger.Modifiers = []database.Modifier{
		{Name: "Extra cheese", Price: decimal.NewFromFloat(1.50)},
	}

	totals := billing.ComputeTotals([]database.CartItem{burger})

	// (10.00 + 1.50) * 2 = 23.00
	if got, want := totals.Subtotal.StringFixed(2), "23.00"; got != want {
		t.Errorf("subtotal = %s, want %s", got, want)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := billing.ComputeTotals(nil)
	if !totals.Total.IsZero() {
		t.Errorf("total = %s, want 0", totals.Total)
	}
}

func TestTaxRounding(t *testing.T) {
	// 3.33 * 0.10 = 0.333, rounds to 0.33.
	totals := billing.ComputeTotals([]database.CartItem{item("Soup", "Starters", 3.33, 1)})
	if got, want := totals.Tax.StringFixed(2), "0.33"; got != want {
		t.Errorf("tax = %s, want %s", got, want)
	}
}

func TestIsDrinkCategory(t *testing.T) {
	cases := []struct {
		category string
		want     bool
	}{
		{"Soft Drinks", true},
		{"Beverages", true},
		{"BAR SNACKS", true},
		{"Wine", true},
		{"Cocktails", true},
		{"Mains", false},
		{"Desserts", false},
		// Beer routes to the bar station but sells as food revenue.
		{"Beer", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := billing.IsDrinkCategory(tc.category); got != tc.want {
			t.Errorf("IsDrinkCategory(%q) = %v, want %v", tc.category, got, tc.want)
		}
	}
}
