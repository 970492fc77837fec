// Package model defines the domain types exchanged with the project-management API.
package model

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusActive    ProjectStatus = "active"
	StatusOnHold    ProjectStatus = "on_hold"
	StatusCancelled ProjectStatus = "cancelled"
	StatusCompleted ProjectStatus = "completed"
)

// ProjectStatuses lists every valid project status, in display order.
var ProjectStatuses = []ProjectStatus{
	StatusDraft, StatusActive, StatusOnHold, StatusCancelled, StatusCompleted,
}

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusOnHold, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodOther        PaymentMethod = "other"
)

// PaymentMethods lists every valid payment method.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodBankTransfer, MethodCreditCard, MethodOther,
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCreditCard, MethodOther:
		return true
	}
	return false
}

// ExpenseType classifies an expense for margin reporting.
type ExpenseType string

const (
	ExpenseDirect      ExpenseType = "direct"
	ExpenseOperational ExpenseType = "operational"
)

// ExpenseTypes lists every valid expense type.
var ExpenseTypes = []ExpenseType{ExpenseDirect, ExpenseOperational}

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	return t == ExpenseDirect || t == ExpenseOperational
}

// User is the authenticated account.
type User struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Status    string       `json:"status"`
	CompanyID string       `json:"company_id"`
	Company   *UserCompany `json:"company,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// UserCompany is the embedded company reference on a user.
type UserCompany struct {
	Name string `json:"name"`
}

// Client is a customer of the company. Nullable string fields decode to "".
type Client struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	Feedback  string `json:"feedback"`
	CompanyID string `json:"company_id"`
	CreatedBy string `json:"created_by"`
}

// Project is a unit of work sold to a client.
type Project struct {
	ID        string        `json:"id"`
	CreatedAt string        `json:"created_at"`
	CompanyID string        `json:"company_id"`
	ClientID  string        `json:"client_id"`
	Title     string        `json:"title"`
	Details   string        `json:"details"`
	StartDate string        `json:"start_date"`
	DueDate   string        `json:"due_date"`
	Price     *float64      `json:"price"`
	Status    ProjectStatus `json:"status"`
	CreatedBy string        `json:"created_by"`
}

// Phase is a billing milestone nested under a project.
type Phase struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	Title     string  `json:"title"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Amount    float64 `json:"amount"`
	Notes     string  `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

// Payment is money received against a project.
type Payment struct {
	ID            string        `json:"id"`
	CompanyID     string        `json:"company_id"`
	ProjectID     string        `json:"project_id"`
	Amount        float64       `json:"amount"`
	PaymentDate   string        `json:"payment_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         string        `json:"notes"`
	CreatedAt     string        `json:"created_at"`
}

// Expense is money spent, either directly on projects or operationally.
type Expense struct {
	ID          string      `json:"id"`
	CompanyID   string      `json:"company_id"`
	Amount      float64     `json:"amount"`
	ExpenseDate string      `json:"expense_date"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        ExpenseType `json:"type"`
	CreatedAt   string      `json:"created_at"`
}

// ClientRef is a minimal id/name pair for selection controls.
type ClientRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectRef is a minimal id/title pair for selection controls.
type ProjectRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PaymentSummary is the per-client payment rollup.
type PaymentSummary struct {
	TotalAmountToPay float64 `json:"total_amount_to_pay"`
	AmountPaid       float64 `json:"amount_paid"`
	Remaining        float64 `json:"remaining"`
}
