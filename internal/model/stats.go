package model

// Pagination accompanies every list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TotalPages returns ceil(total/limit), or 0 when limit is unset.
func (p Pagination) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// DateRange bounds a statistics query. Empty fields mean unbounded.
type DateRange struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// Margin is an amount plus its percentage of revenue.
type Margin struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// FinancialStats is the server-computed profit and margin breakdown.
type FinancialStats struct {
	TotalRevenue        float64    `json:"totalRevenue"`
	DirectExpenses      float64    `json:"directExpenses"`
	OperationalExpenses float64    `json:"operationalExpenses"`
	TotalExpenses       float64    `json:"totalExpenses"`
	GrossProfit         float64    `json:"grossProfit"`
	GrossMargin         Margin     `json:"grossMargin"`
	OperatingIncome     float64    `json:"operatingIncome"`
	OperatingMargin     Margin     `json:"operatingMargin"`
	NetProfit           float64    `json:"netProfit"`
	ProfitMargin        Margin     `json:"profitMargin"`
	DateRange           *DateRange `json:"dateRange,omitempty"`
}

// DashboardOverview is the headline counters block of the dashboard.
type DashboardOverview struct {
	TotalClients          int        `json:"totalClients"`
	TotalProjects         int        `json:"totalProjects"`
	TotalProjectValue     float64    `json:"totalProjectValue"`
	TotalPaymentsReceived float64    `json:"totalPaymentsReceived"`
	TotalPaymentsCount    int        `json:"totalPaymentsCount"`
	TotalExpenses         float64    `json:"totalExpenses"`
	TotalExpensesCount    int        `json:"totalExpensesCount"`
	DateRange             *DateRange `json:"dateRange"`
}

// TotalsByType splits expense totals by expense type.
type TotalsByType struct {
	Direct      float64 `json:"direct"`
	Operational float64 `json:"operational"`
}

// AmountCount is a total with its record count.
type AmountCount struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// ExpensesSummary is the expense rollup on the dashboard.
type ExpensesSummary struct {
	Total  float64      `json:"total"`
	Count  int          `json:"count"`
	ByType TotalsByType `json:"byType"`
}

// DashboardStats is the full dashboard aggregate.
type DashboardStats struct {
	Overview         DashboardOverview `json:"overview"`
	ProjectsByStatus map[string]int    `json:"projectsByStatus"`
	PaymentsSummary  AmountCount       `json:"paymentsSummary"`
	ExpensesSummary  ExpensesSummary   `json:"expensesSummary"`
	Financial        FinancialStats    `json:"financial"`
}

// OverviewStats is the lightweight counters-only aggregate.
type OverviewStats struct {
	TotalClients       int `json:"totalClients"`
	TotalProjects      int `json:"totalProjects"`
	TotalPaymentsCount int `json:"totalPaymentsCount"`
	TotalExpensesCount int `json:"totalExpensesCount"`
}
