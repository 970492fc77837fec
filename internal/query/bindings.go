package query

import (
	"context"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/model"
)

// Cache keys, one constructor per distinct query shape. Prefix
// invalidation relies on list/detail/sub-resource keys all sharing the
// resource-kind head.

// ClientsKey is the prefix covering every clients query.
func ClientsKey() Key { return NewKey("clients") }

// ClientsListKey identifies one page of a filtered client listing.
func ClientsListKey(opts api.ClientListOptions) Key {
	return NewKey("clients", "list", foldFilter(opts))
}

// ClientsShortListKey identifies the id/name short list.
func ClientsShortListKey() Key { return NewKey("clients", "shortList") }

// ClientKey identifies one client detail.
func ClientKey(id string) Key { return NewKey("clients", id) }

// ClientPaymentSummaryKey identifies one client's payment rollup.
func ClientPaymentSummaryKey(id string) Key {
	return NewKey("clients", id, "payment-summary")
}

// ProjectsKey is the prefix covering every projects query.
func ProjectsKey() Key { return NewKey("projects") }

// ProjectsListKey identifies one page of a filtered project listing.
func ProjectsListKey(opts api.ProjectListOptions) Key {
	return NewKey("projects", "list", foldFilter(opts))
}

// ProjectsShortListKey identifies the id/title short list.
func ProjectsShortListKey() Key { return NewKey("projects", "shortList") }

// ProjectKey identifies one project detail.
func ProjectKey(id string) Key { return NewKey("projects", id) }

// ProjectPaymentsKey identifies a project's payment listing.
func ProjectPaymentsKey(id string) Key {
	return NewKey("projects", id, "payments")
}

// PhasesKey is the prefix covering every phase query under a project.
func PhasesKey(projectID string) Key {
	return NewKey("projects", projectID, "phases")
}

// PhasesListKey identifies one page of a project's phases.
func PhasesListKey(projectID string, page, limit int) Key {
	return NewKey("projects", projectID, "phases", foldFilter([2]int{page, limit}))
}

// PhaseKey identifies one phase detail.
func PhaseKey(projectID, phaseID string) Key {
	return NewKey("projects", projectID, "phases", phaseID)
}

// PaymentsKey is the prefix covering every payments query.
func PaymentsKey() Key { return NewKey("payments") }

// PaymentsListKey identifies one page of a filtered payment listing.
func PaymentsListKey(opts api.PaymentListOptions) Key {
	return NewKey("payments", "list", foldFilter(opts))
}

// PaymentKey identifies one payment detail.
func PaymentKey(id string) Key { return NewKey("payments", id) }

// ExpensesKey is the prefix covering every expenses query.
func ExpensesKey() Key { return NewKey("expenses") }

// ExpensesListKey identifies one page of a filtered expense listing.
func ExpensesListKey(opts api.ExpenseListOptions) Key {
	return NewKey("expenses", "list", foldFilter(opts))
}

// ExpenseKey identifies one expense detail.
func ExpenseKey(id string) Key { return NewKey("expenses", id) }

// StatisticsKey is the prefix covering every statistics query.
func StatisticsKey() Key { return NewKey("statistics") }

// DashboardStatsKey identifies the dashboard aggregate for a date range.
func DashboardStatsKey(r model.DateRange) Key {
	return NewKey("statistics", "dashboard", foldFilter(r))
}

// FinancialStatsKey identifies the financial aggregate for a date range.
func FinancialStatsKey(r model.DateRange) Key {
	return NewKey("statistics", "financial", foldFilter(r))
}

// OverviewStatsKey identifies the counters-only aggregate.
func OverviewStatsKey() Key { return NewKey("statistics", "overview") }

// Cache binds the store to the API client with one method per query and
// mutation. Reads come in two flavors: one-shot Get-style methods for
// the CLI, and Watch methods returning subscriptions for the TUI.
// Mutations declare the key prefixes their write invalidates; writes to
// payments also invalidate projects (project totals derive from
// payments), and every write invalidates statistics.
type Cache struct {
	Store *Store
	API   *api.Client
}

// NewCache creates a cache bound to the given API client.
func NewCache(c *api.Client, opts ...StoreOption) *Cache {
	return &Cache{Store: NewStore(opts...), API: c}
}

// --- clients ---

// Clients returns one page of clients through the cache.
func (q *Cache) Clients(ctx context.Context, opts api.ClientListOptions) (*api.ClientList, error) {
	return Get(ctx, q.Store, ClientsListKey(opts), func(ctx context.Context) (*api.ClientList, error) {
		return q.API.Clients.List(ctx, opts)
	})
}

// WatchClients subscribes to one page of clients.
func (q *Cache) WatchClients(opts api.ClientListOptions) *Subscription {
	return q.Store.Subscribe(ClientsListKey(opts), func(ctx context.Context) (any, error) {
		return q.API.Clients.List(ctx, opts)
	})
}

// ClientsShortList returns the id/name pairs through the cache.
func (q *Cache) ClientsShortList(ctx context.Context) ([]model.ClientRef, error) {
	return Get(ctx, q.Store, ClientsShortListKey(), func(ctx context.Context) ([]model.ClientRef, error) {
		return q.API.Clients.ShortList(ctx)
	})
}

// Client returns one client through the cache.
func (q *Cache) Client(ctx context.Context, id string) (*model.Client, error) {
	if id == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, ClientKey(id), func(ctx context.Context) (*model.Client, error) {
		return q.API.Clients.Get(ctx, id)
	})
}

// WatchClient subscribes to one client; an empty id yields a disabled
// subscription.
func (q *Cache) WatchClient(id string) *Subscription {
	if id == "" {
		return q.Store.Subscribe(nil, nil)
	}
	return q.Store.Subscribe(ClientKey(id), func(ctx context.Context) (any, error) {
		return q.API.Clients.Get(ctx, id)
	})
}

// ClientPaymentSummary returns the client's payment rollup through the cache.
func (q *Cache) ClientPaymentSummary(ctx context.Context, id string) (*model.PaymentSummary, error) {
	if id == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, ClientPaymentSummaryKey(id), func(ctx context.Context) (*model.PaymentSummary, error) {
		return q.API.Clients.PaymentSummary(ctx, id)
	})
}

// CreateClient stores a client and invalidates client and statistics keys.
func (q *Cache) CreateClient(ctx context.Context, in model.CreateClientInput) (*model.Client, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Client, error) {
		return q.API.Clients.Create(ctx, in)
	}, ClientsKey(), StatisticsKey())
}

// UpdateClient updates a client and invalidates client and statistics keys.
func (q *Cache) UpdateClient(ctx context.Context, id string, in model.CreateClientInput) (*model.Client, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Client, error) {
		return q.API.Clients.Update(ctx, id, in)
	}, ClientsKey(), StatisticsKey())
}

// DeleteClient deletes a client and invalidates client and statistics keys.
func (q *Cache) DeleteClient(ctx context.Context, id string) error {
	_, err := Mutate(ctx, q.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, q.API.Clients.Delete(ctx, id)
	}, ClientsKey(), StatisticsKey())
	return err
}

// --- projects ---

// Projects returns one page of projects through the cache.
func (q *Cache) Projects(ctx context.Context, opts api.ProjectListOptions) (*api.ProjectList, error) {
	return Get(ctx, q.Store, ProjectsListKey(opts), func(ctx context.Context) (*api.ProjectList, error) {
		return q.API.Projects.List(ctx, opts)
	})
}

// WatchProjects subscribes to one page of projects.
func (q *Cache) WatchProjects(opts api.ProjectListOptions) *Subscription {
	return q.Store.Subscribe(ProjectsListKey(opts), func(ctx context.Context) (any, error) {
		return q.API.Projects.List(ctx, opts)
	})
}

// ProjectsShortList returns the id/title pairs through the cache.
func (q *Cache) ProjectsShortList(ctx context.Context) ([]model.ProjectRef, error) {
	return Get(ctx, q.Store, ProjectsShortListKey(), func(ctx context.Context) ([]model.ProjectRef, error) {
		return q.API.Projects.ShortList(ctx)
	})
}

// Project returns one project through the cache.
func (q *Cache) Project(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, ProjectKey(id), func(ctx context.Context) (*model.Project, error) {
		return q.API.Projects.Get(ctx, id)
	})
}

// WatchProject subscribes to one project; an empty id yields a disabled
// subscription.
func (q *Cache) WatchProject(id string) *Subscription {
	if id == "" {
		return q.Store.Subscribe(nil, nil)
	}
	return q.Store.Subscribe(ProjectKey(id), func(ctx context.Context) (any, error) {
		return q.API.Projects.Get(ctx, id)
	})
}

// ProjectPayments returns a project's payments through the cache.
func (q *Cache) ProjectPayments(ctx context.Context, id string) ([]model.Payment, error) {
	if id == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, ProjectPaymentsKey(id), func(ctx context.Context) ([]model.Payment, error) {
		return q.API.Projects.Payments(ctx, id)
	})
}

// CreateProject stores a project and invalidates project and statistics keys.
func (q *Cache) CreateProject(ctx context.Context, in model.CreateProjectInput) (*model.Project, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Project, error) {
		return q.API.Projects.Create(ctx, in)
	}, ProjectsKey(), StatisticsKey())
}

// UpdateProject updates a project and invalidates project and statistics keys.
func (q *Cache) UpdateProject(ctx context.Context, id string, in model.CreateProjectInput) (*model.Project, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Project, error) {
		return q.API.Projects.Update(ctx, id, in)
	}, ProjectsKey(), StatisticsKey())
}

// DeleteProject deletes a project and invalidates project and statistics keys.
func (q *Cache) DeleteProject(ctx context.Context, id string) error {
	_, err := Mutate(ctx, q.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, q.API.Projects.Delete(ctx, id)
	}, ProjectsKey(), StatisticsKey())
	return err
}

// --- phases ---

// Phases returns one page of a project's phases through the cache.
func (q *Cache) Phases(ctx context.Context, projectID string, page, limit int) (*api.PhaseList, error) {
	if projectID == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, PhasesListKey(projectID, page, limit), func(ctx context.Context) (*api.PhaseList, error) {
		return q.API.Projects.ListPhases(ctx, projectID, page, limit)
	})
}

// WatchPhases subscribes to one page of a project's phases; an empty
// project id yields a disabled subscription.
func (q *Cache) WatchPhases(projectID string, page, limit int) *Subscription {
	if projectID == "" {
		return q.Store.Subscribe(nil, nil)
	}
	return q.Store.Subscribe(PhasesListKey(projectID, page, limit), func(ctx context.Context) (any, error) {
		return q.API.Projects.ListPhases(ctx, projectID, page, limit)
	})
}

// Phase returns one phase through the cache.
func (q *Cache) Phase(ctx context.Context, projectID, phaseID string) (*model.Phase, error) {
	if projectID == "" || phaseID == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, PhaseKey(projectID, phaseID), func(ctx context.Context) (*model.Phase, error) {
		return q.API.Projects.GetPhase(ctx, projectID, phaseID)
	})
}

// CreatePhase stores a phase and invalidates the project's phase and
// detail keys.
func (q *Cache) CreatePhase(ctx context.Context, projectID string, in model.CreatePhaseInput) (*model.Phase, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Phase, error) {
		return q.API.Projects.CreatePhase(ctx, projectID, in)
	}, PhasesKey(projectID), ProjectKey(projectID))
}

// UpdatePhase updates a phase and invalidates the project's phase and
// detail keys.
func (q *Cache) UpdatePhase(ctx context.Context, projectID, phaseID string, in model.CreatePhaseInput) (*model.Phase, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Phase, error) {
		return q.API.Projects.UpdatePhase(ctx, projectID, phaseID, in)
	}, PhasesKey(projectID), ProjectKey(projectID))
}

// DeletePhase deletes a phase and invalidates the project's phase and
// detail keys.
func (q *Cache) DeletePhase(ctx context.Context, projectID, phaseID string) error {
	_, err := Mutate(ctx, q.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, q.API.Projects.DeletePhase(ctx, projectID, phaseID)
	}, PhasesKey(projectID), ProjectKey(projectID))
	return err
}

// --- payments ---

// Payments returns one page of payments through the cache.
func (q *Cache) Payments(ctx context.Context, opts api.PaymentListOptions) (*api.PaymentList, error) {
	return Get(ctx, q.Store, PaymentsListKey(opts), func(ctx context.Context) (*api.PaymentList, error) {
		return q.API.Payments.List(ctx, opts)
	})
}

// WatchPayments subscribes to one page of payments.
func (q *Cache) WatchPayments(opts api.PaymentListOptions) *Subscription {
	return q.Store.Subscribe(PaymentsListKey(opts), func(ctx context.Context) (any, error) {
		return q.API.Payments.List(ctx, opts)
	})
}

// Payment returns one payment through the cache.
func (q *Cache) Payment(ctx context.Context, id string) (*model.Payment, error) {
	if id == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, PaymentKey(id), func(ctx context.Context) (*model.Payment, error) {
		return q.API.Payments.Get(ctx, id)
	})
}

// CreatePayment records a payment. Project totals derive from payments,
// so project keys go stale along with payment and statistics keys.
func (q *Cache) CreatePayment(ctx context.Context, in model.CreatePaymentInput) (*model.Payment, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Payment, error) {
		return q.API.Payments.Create(ctx, in)
	}, PaymentsKey(), ProjectsKey(), StatisticsKey())
}

// UpdatePayment updates a payment, invalidating payment, project, and
// statistics keys.
func (q *Cache) UpdatePayment(ctx context.Context, id string, in model.CreatePaymentInput) (*model.Payment, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Payment, error) {
		return q.API.Payments.Update(ctx, id, in)
	}, PaymentsKey(), ProjectsKey(), StatisticsKey())
}

// DeletePayment deletes a payment, invalidating payment, project, and
// statistics keys.
func (q *Cache) DeletePayment(ctx context.Context, id string) error {
	_, err := Mutate(ctx, q.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, q.API.Payments.Delete(ctx, id)
	}, PaymentsKey(), ProjectsKey(), StatisticsKey())
	return err
}

// --- expenses ---

// Expenses returns one page of expenses through the cache.
func (q *Cache) Expenses(ctx context.Context, opts api.ExpenseListOptions) (*api.ExpenseList, error) {
	return Get(ctx, q.Store, ExpensesListKey(opts), func(ctx context.Context) (*api.ExpenseList, error) {
		return q.API.Expenses.List(ctx, opts)
	})
}

// WatchExpenses subscribes to one page of expenses.
func (q *Cache) WatchExpenses(opts api.ExpenseListOptions) *Subscription {
	return q.Store.Subscribe(ExpensesListKey(opts), func(ctx context.Context) (any, error) {
		return q.API.Expenses.List(ctx, opts)
	})
}

// Expense returns one expense through the cache.
func (q *Cache) Expense(ctx context.Context, id string) (*model.Expense, error) {
	if id == "" {
		return nil, api.ErrNotFound
	}
	return Get(ctx, q.Store, ExpenseKey(id), func(ctx context.Context) (*model.Expense, error) {
		return q.API.Expenses.Get(ctx, id)
	})
}

// CreateExpense records an expense and invalidates expense and statistics keys.
func (q *Cache) CreateExpense(ctx context.Context, in model.CreateExpenseInput) (*model.Expense, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Expense, error) {
		return q.API.Expenses.Create(ctx, in)
	}, ExpensesKey(), StatisticsKey())
}

// UpdateExpense updates an expense and invalidates expense and statistics keys.
func (q *Cache) UpdateExpense(ctx context.Context, id string, in model.CreateExpenseInput) (*model.Expense, error) {
	return Mutate(ctx, q.Store, func(ctx context.Context) (*model.Expense, error) {
		return q.API.Expenses.Update(ctx, id, in)
	}, ExpensesKey(), StatisticsKey())
}

// DeleteExpense deletes an expense and invalidates expense and statistics keys.
func (q *Cache) DeleteExpense(ctx context.Context, id string) error {
	_, err := Mutate(ctx, q.Store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, q.API.Expenses.Delete(ctx, id)
	}, ExpensesKey(), StatisticsKey())
	return err
}

// --- statistics ---

// DashboardStats returns the dashboard aggregate through the cache.
func (q *Cache) DashboardStats(ctx context.Context, r model.DateRange) (*model.DashboardStats, error) {
	return Get(ctx, q.Store, DashboardStatsKey(r), func(ctx context.Context) (*model.DashboardStats, error) {
		return q.API.Stats.Dashboard(ctx, r)
	})
}

// WatchDashboardStats subscribes to the dashboard aggregate.
func (q *Cache) WatchDashboardStats(r model.DateRange) *Subscription {
	return q.Store.Subscribe(DashboardStatsKey(r), func(ctx context.Context) (any, error) {
		return q.API.Stats.Dashboard(ctx, r)
	})
}

// FinancialStats returns the financial aggregate through the cache.
func (q *Cache) FinancialStats(ctx context.Context, r model.DateRange) (*model.FinancialStats, error) {
	return Get(ctx, q.Store, FinancialStatsKey(r), func(ctx context.Context) (*model.FinancialStats, error) {
		return q.API.Stats.Financial(ctx, r)
	})
}

// OverviewStats returns the counters-only aggregate through the cache.
func (q *Cache) OverviewStats(ctx context.Context) (*model.OverviewStats, error) {
	return Get(ctx, q.Store, OverviewStatsKey(), func(ctx context.Context) (*model.OverviewStats, error) {
		return q.API.Stats.Overview(ctx)
	})
}
