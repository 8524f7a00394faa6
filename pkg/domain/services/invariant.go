package services

import (
	"sort"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// CheckInvariant reports every active order that starts before its
// predecessor on the same machine has finished, changeover included.
// Results are grouped by machine name, then ordered by start hour.
func CheckInvariant(orders []*entities.Order, matrix *entities.SetupTimeMatrix) []entities.Violation {
	machines := make(map[string]bool)
	for _, o := range orders {
		if o.IsActive() {
			machines[o.Machine] = true
		}
	}
	names := make([]string, 0, len(machines))
	for name := range machines {
		names = append(names, name)
	}
	sort.Strings(names)

	violations := []entities.Violation{}
	for _, name := range names {
		sorted := activeOnMachine(name, orders)
		sortByStart(sorted)

		// blocker is the earlier order reaching furthest into the timeline
		var blocker *entities.Order
		for i, cur := range sorted {
			if i > 0 {
				prev := sorted[i-1]
				if v, bad := violates(name, prev, cur, matrix); bad {
					violations = append(violations, v)
				} else if blocker != prev {
					if v, bad := violates(name, blocker, cur, matrix); bad {
						violations = append(violations, v)
					}
				}
			}
			if blocker == nil || cur.EndHour() > blocker.EndHour() {
				blocker = cur
			}
		}
	}
	return violations
}

func violates(machine string, earlier, later *entities.Order, matrix *entities.SetupTimeMatrix) (entities.Violation, bool) {
	allowed := earlier.EndHour() + matrix.Changeover(earlier.ProductType, later.ProductType)
	if later.StartHour+epsilon >= allowed {
		return entities.Violation{}, false
	}
	return entities.Violation{
		Machine:         machine,
		EarlierOrderID:  earlier.ID,
		LaterOrderID:    later.ID,
		EarliestAllowed: allowed,
		ActualStart:     later.StartHour,
	}, true
}
