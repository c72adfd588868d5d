package normalize

// CompletenessIssue is an advisory about missing or partial source data.
// Issues are surfaced alongside report output, never raised as errors; the
// affected metrics still compute using a conservative default.
type CompletenessIssue struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	AffectedMetrics []string `json:"affectedMetrics"`
}

const (
	IssueInventoryCost    = "inventory-missing-cost"
	IssueStaffPay         = "staff-missing-compensation"
	IssueUnlinkedPayments = "transactions-unlinked"
)
