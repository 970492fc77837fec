package model

// CreateClientInput is the payload for creating or updating a client.
// For updates, zero-valued optional fields are omitted (partial semantics).
type CreateClientInput struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// CreateProjectInput is the payload for creating or updating a project.
// An empty Status lets the server apply the default ("active").
type CreateProjectInput struct {
	ClientID  string        `json:"client_id"`
	Title     string        `json:"title"`
	Details   string        `json:"details,omitempty"`
	StartDate string        `json:"start_date,omitempty"`
	DueDate   string        `json:"due_date,omitempty"`
	Price     *float64      `json:"price,omitempty"`
	Status    ProjectStatus `json:"status,omitempty"`
}

// CreatePhaseInput is the payload for creating or updating a phase.
type CreatePhaseInput struct {
	Title     string  `json:"title"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Amount    float64 `json:"amount"`
	Notes     string  `json:"notes,omitempty"`
}

// CreatePaymentInput is the payload for creating or updating a payment.
// An empty PaymentDate defaults to the submission day server-side.
type CreatePaymentInput struct {
	ProjectID     string        `json:"project_id"`
	Amount        float64       `json:"amount"`
	PaymentDate   string        `json:"payment_date,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         string        `json:"notes,omitempty"`
}

// CreateExpenseInput is the payload for creating or updating an expense.
// An empty ExpenseDate defaults to the submission day server-side.
type CreateExpenseInput struct {
	Amount      float64     `json:"amount"`
	ExpenseDate string      `json:"expense_date,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Type        ExpenseType `json:"type"`
}
