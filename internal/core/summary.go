package core

// RecipientSpend is one recipient's row in the analytics breakdown.
// Remaining is allocated minus spent and may be negative.
type RecipientSpend struct {
	RecipientID   int64  `json:"recipient_id"`
	RecipientName string `json:"recipient_name"`
	Allocated     Money  `json:"allocated"`
	Spent         Money  `json:"spent"`
	Remaining     Money  `json:"remaining"`
}

// BudgetAnalytics is the on-demand spend-vs-allocation report for one
// calendar year. It is computed, never stored.
type BudgetAnalytics struct {
	Year                int              `json:"year"`
	TotalBudget         Money            `json:"total_budget"`
	TotalSpent          Money            `json:"total_spent"`
	RemainingBudget     Money            `json:"remaining_budget"`
	RecipientsBreakdown []RecipientSpend `json:"recipients_breakdown"`
}
