package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// LedgerResult is the outcome of one chronological stock simulation
type LedgerResult struct {
	Issues []entities.StockIssue
	// ClosingStock is on-hand stock after every order consumed its material.
	// Production is tracked separately in Incoming and never added here.
	ClosingStock map[entities.MaterialName]decimal.Decimal
	Incoming     map[entities.MaterialName][]entities.IncomingSupply
}

// Errors returns the issues nothing in the schedule resolves
func (r *LedgerResult) Errors() []entities.StockIssue {
	return r.filter(entities.SeverityError)
}

// Warnings returns the issues an earlier production run can cover
func (r *LedgerResult) Warnings() []entities.StockIssue {
	return r.filter(entities.SeverityWarning)
}

func (r *LedgerResult) filter(severity entities.IssueSeverity) []entities.StockIssue {
	var out []entities.StockIssue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// RunLedger walks every active order across all machines in ascending start
// hour (ties in input order) and checks the material each one consumes
// against simulated stock.
//
// A shortage is a warning when a single production run registered by an
// earlier order, available strictly before the order starts, covers the
// whole shortage; otherwise it is an error. Stock is decremented even when
// short and may go negative, so later orders see the compounding deficit.
func RunLedger(
	orders []*entities.Order,
	inventory map[entities.MaterialName]decimal.Decimal,
	recipes entities.Recipes,
) *LedgerResult {
	stock := make(map[entities.MaterialName]decimal.Decimal, len(inventory))
	for name, qty := range inventory {
		stock[name] = qty
	}
	incoming := make(map[entities.MaterialName][]entities.IncomingSupply)

	var sorted []*entities.Order
	for _, o := range orders {
		if o.IsActive() {
			sorted = append(sorted, o)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartHour < sorted[j].StartHour
	})

	issues := []entities.StockIssue{}
	for _, o := range sorted {
		recipe, ok := recipes[o.ProductType]
		if !ok {
			continue
		}

		required := recipe.Required(o.Quantity)
		if recipe.Consumes != "" && required.IsPositive() {
			available := stock[recipe.Consumes]
			if available.LessThan(required) {
				shortage := required.Sub(available)
				issue := entities.StockIssue{
					OrderID:     o.ID,
					OrderNumber: o.OrderNumber,
					Material:    recipe.Consumes,
					Required:    required,
					Available:   available,
					Shortage:    shortage,
					Severity:    entities.SeverityError,
					NeedHour:    o.StartHour,
				}
				if supply, found := coveringSupply(incoming[recipe.Consumes], shortage, o.StartHour); found {
					issue.Severity = entities.SeverityWarning
					issue.ResolvedByOrder = supply.OrderNumber
				}
				issues = append(issues, issue)
			}
			stock[recipe.Consumes] = available.Sub(required)
		}

		produced := recipe.Produced(o.Quantity)
		if recipe.Produces != "" && produced.IsPositive() {
			incoming[recipe.Produces] = append(incoming[recipe.Produces], entities.IncomingSupply{
				Material:    recipe.Produces,
				Amount:      produced,
				AvailableAt: o.EndHour(),
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
			})
		}
	}

	return &LedgerResult{
		Issues:       issues,
		ClosingStock: stock,
		Incoming:     incoming,
	}
}

// coveringSupply finds the first single entry that alone covers the shortage.
// Partial runs are not summed.
func coveringSupply(entries []entities.IncomingSupply, shortage decimal.Decimal, needHour float64) (entities.IncomingSupply, bool) {
	for _, e := range entries {
		if e.AvailableAt < needHour && e.Amount.GreaterThanOrEqual(shortage) {
			return e, true
		}
	}
	return entities.IncomingSupply{}, false
}
