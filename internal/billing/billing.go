// Package billing computes order totals and splits revenue into food
// and drink buckets for reporting.
package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/database"
)

// TaxRate applies to the pre-tax subtotal of every order.
var TaxRate = decimal.NewFromFloat(0.10)

// drinkKeywords classifies a menu category into the drink bucket when
// the category contains any of them, case-insensitively.
var drinkKeywords = []string{"drink", "beverage", "bar", "wine", "cocktail"}

type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	FoodSales  decimal.Decimal
	DrinkSales decimal.Decimal
}

// LineTotal is the extended price of one cart line including modifiers.
func LineTotal(item database.CartItem) decimal.Decimal {
	unit := item.Price
	for _, mod := range item.Modifiers {
		unit = unit.Add(mod.Price)
	}
	return unit.Mul(decimal.NewFromInt32(item.Quantity))
}

// ComputeTotals prices a cart. Tax is a flat rate on the subtotal,
// rounded to cents; food and drink sales are pre-tax.
func ComputeTotals(items []database.CartItem) Totals {
	var t Totals
	for _, item := range items {
		line := LineTotal(item)
		t.Subtotal = t.Subtotal.Add(line)
		if IsDrinkCategory(item.Category) {
			t.DrinkSales = t.DrinkSales.Add(line)
		} else {
			t.FoodSales = t.FoodSales.Add(line)
		}
	}
	t.Tax = t.Subtotal.Mul(TaxRate).Round(2)
	t.Total = t.Subtotal.Add(t.Tax)
	return t
}

func IsDrinkCategory(category string) bool {
	lower := strings.ToLower(category)
	for _, kw := range drinkKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
