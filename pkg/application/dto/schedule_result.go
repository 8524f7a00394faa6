package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// ScheduleResult is returned by every accepted scheduling mutation
type ScheduleResult struct {
	Orders []*entities.Order `json:"orders"`
	// Issues is the full stock issue list from the ledger run that followed
	// the mutation; it replaces any previous list.
	Issues     []entities.StockIssue `json:"issues"`
	Violations []entities.Violation  `json:"violations"`
	// Moved lists the orders whose start hour or machine changed
	Moved []string `json:"moved,omitempty"`
}

// ErrorCount returns the number of unresolved shortages
func (r *ScheduleResult) ErrorCount() int {
	return r.countIssues(entities.SeverityError)
}

// WarningCount returns the number of shortages an earlier run covers
func (r *ScheduleResult) WarningCount() int {
	return r.countIssues(entities.SeverityWarning)
}

func (r *ScheduleResult) countIssues(severity entities.IssueSeverity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// MachineTimeline is the view of one machine handed to renderers
type MachineTimeline struct {
	Machine     string                `json:"machine"`
	Group       string                `json:"group,omitempty"`
	Orders      []*entities.Order     `json:"orders"`
	SetupBlocks []entities.SetupBlock `json:"setup_blocks"`
	// Utilization is busy hours (orders plus setups) over the window length
	Utilization float64 `json:"utilization"`
}

// StockLine is the closing position of one material after a ledger run
type StockLine struct {
	Material entities.MaterialName `json:"material"`
	Closing  decimal.Decimal       `json:"closing"`
	Incoming decimal.Decimal       `json:"incoming"`
}
