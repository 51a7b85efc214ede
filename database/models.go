package database

import (
	"time"

	"gorm.io/gorm"
)

// Employee represents a system user
type Employee struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex;size:100" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	Department   string `json:"department"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

// Client represents a billing client
type Client struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	TaxID    string `json:"tax_id"`
	Notes    string `gorm:"type:text" json:"notes"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Lead represents a prospective client
type Lead struct {
	gorm.Model
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Company      string     `json:"company"`
	Source       string     `json:"source"`
	Status       string     `gorm:"size:30" json:"status"`
	Notes        string     `gorm:"type:text" json:"notes"`
	AssignedTo   *uint      `json:"assigned_to"`
	NextFollowUp *time.Time `json:"next_follow_up"`
	Assignee     *Employee  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

// Project represents a client project
type Project struct {
	gorm.Model
	Name        string     `json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:30" json:"status"`
	ClientID    *uint      `json:"client_id"`
	ManagerID   *uint      `json:"manager_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      float64    `json:"budget"`
	Progress    int        `json:"progress"`
	Client      *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Manager     *Employee  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

// Task represents a unit of project work
type Task struct {
	gorm.Model
	Title       string     `json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:30" json:"status"`
	Priority    string     `gorm:"size:20" json:"priority"`
	ProjectID   *uint      `json:"project_id"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee    *Employee  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

// Invoice represents a client invoice
type Invoice struct {
	gorm.Model
	Folio      string     `gorm:"uniqueIndex;size:50" json:"folio"`
	ClientID   uint       `json:"client_id"`
	ProjectID  *uint      `json:"project_id"`
	Concept    string     `json:"concept"`
	Amount     float64    `json:"amount"`
	Tax        float64    `json:"tax"`
	Total      float64    `json:"total"`
	Status     string     `gorm:"size:30" json:"status"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	PaidAt     *time.Time `json:"paid_at"`
	PaymentRef string     `json:"payment_ref"`
	Client     Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Project    *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// Transaction represents an income or expense movement
type Transaction struct {
	gorm.Model
	Type        string    `gorm:"size:20" json:"type"`
	Category    string    `gorm:"size:50" json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	ProjectID   *uint     `json:"project_id"`
	InvoiceID   *uint     `json:"invoice_id"`
	CreatedBy   uint      `json:"created_by"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Invoice     *Invoice  `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

// Role groups permissions for assignment to employees
type Role struct {
	gorm.Model
	Name        string       `gorm:"uniqueIndex;size:50" json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
}

// Permission represents a grantable capability within a module
type Permission struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:50" json:"name"`
	Module      string `gorm:"size:50" json:"module"`
	Description string `json:"description"`
}

// Notification represents a delivered, user-facing notification
type Notification struct {
	gorm.Model
	EmployeeID uint      `gorm:"index" json:"employee_id"`
	SenderID   *uint     `json:"sender_id"`
	Title      string    `json:"title"`
	Message    string    `gorm:"type:text" json:"message"`
	Type       string    `gorm:"size:30" json:"type"`
	Priority   string    `gorm:"size:20" json:"priority"`
	EntityType string    `gorm:"size:50" json:"entity_type"`
	EntityID   *uint     `json:"entity_id"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// Constants for status values
const (
	ProjectStatusActive    = "activo"
	ProjectStatusPaused    = "en_pausa"
	ProjectStatusFinished  = "finalizado"
	ProjectStatusCancelled = "cancelado"

	TaskStatusPending    = "pendiente"
	TaskStatusInProgress = "en_progreso"
	TaskStatusCompleted  = "completada"
	TaskStatusCancelled  = "cancelada"

	InvoiceStatusPending   = "pendiente"
	InvoiceStatusPaid      = "pagada"
	InvoiceStatusOverdue   = "vencida"
	InvoiceStatusCancelled = "cancelada"

	LeadStatusNew       = "nuevo"
	LeadStatusContacted = "contactado"
	LeadStatusQualified = "calificado"
	LeadStatusWon       = "ganado"
	LeadStatusLost      = "perdido"

	TransactionTypeIncome  = "ingreso"
	TransactionTypeExpense = "egreso"

	// Employee roles
	RoleAdmin    = "admin"
	RoleManager  = "gerente"
	RoleEmployee = "empleado"
)
