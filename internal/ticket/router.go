// Package ticket routes order lines to preparation stations.
package ticket

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
)

// Job is one station ticket. A single order produces at most one job
// per department.
type Job struct {
	OrderID    uuid.UUID           `json:"order_id"`
	Department string              `json:"department"`
	TableID    string              `json:"table_id"`
	Items      []database.CartItem `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

// barKeywords route a cart line to the bar when its category contains
// any of them, case-insensitively. Broader than the revenue drink
// bucket: beer is made at the bar but counted with food sales.
var barKeywords = []string{"drink", "beverage", "wine", "beer", "cocktail", "bar"}

// DepartmentFor maps a cart line to its station. Bar categories go to
// the bar, everything else to the kitchen.
func DepartmentFor(item database.CartItem) string {
	lower := strings.ToLower(item.Category)
	for _, kw := range barKeywords {
		if strings.Contains(lower, kw) {
			return enum.DepartmentBar
		}
	}
	return enum.DepartmentKitchen
}

// Partition splits an order's unsent lines into station jobs. Lines
// already sent to the kitchen are skipped so re-sending a table does
// not duplicate tickets. Job order is deterministic: kitchen first,
// then bar.
func Partition(order *database.Order, now time.Time) []Job {
	byDept := map[string][]database.CartItem{}
	for _, item := range order.Items {
		if item.SentToKitchen {
			continue
		}
		dept := DepartmentFor(item)
		byDept[dept] = append(byDept[dept], item)
	}

	var jobs []Job
	for _, dept := range []string{enum.DepartmentKitchen, enum.DepartmentBar} {
		items := byDept[dept]
		if len(items) == 0 {
			continue
		}
		jobs = append(jobs, Job{
			OrderID:    order.ID,
			Department: dept,
			TableID:    order.TableID,
			Items:      items,
			CreatedAt:  now,
		})
	}
	return jobs
}
