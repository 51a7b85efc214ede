package database

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog is an immutable record of one audited action. Rows are only ever
// inserted; retention and archival sweeps are the only deletion paths.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *uint     `gorm:"index" json:"user_id"`
	UserName     string    `gorm:"size:100" json:"user_name"`
	Action       string    `gorm:"size:50;not null;index" json:"action"`
	Description  string    `gorm:"type:text" json:"description"`
	TargetType   string    `gorm:"size:50;index" json:"target_type"`
	TargetID     *uint     `gorm:"index" json:"target_id"`
	PreviousData string    `gorm:"type:text" json:"previous_data"`
	NewData      string    `gorm:"type:text" json:"new_data"`
	Module       string    `gorm:"size:50;index" json:"module"`
	IPAddress    string    `gorm:"size:50" json:"ip_address"`
	UserAgent    string    `gorm:"size:255" json:"user_agent"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// ScheduledNotification is a persisted intent to deliver a notification at or
// after ScheduledFor. Executed flips false->true exactly once per record;
// recurring frequencies spawn a successor record instead of reusing this one.
type ScheduledNotification struct {
	gorm.Model
	Title         string     `json:"title"`
	Message       string     `gorm:"type:text" json:"message"`
	Type          string     `gorm:"size:30" json:"type"`
	Priority      string     `gorm:"size:20" json:"priority"`
	EntityType    string     `gorm:"size:50;index" json:"entity_type"`
	EntityID      *uint      `gorm:"index" json:"entity_id"`
	EmployeeID    uint       `gorm:"index" json:"employee_id"`
	ScheduledFor  time.Time  `gorm:"index" json:"scheduled_for"`
	Executed      bool       `gorm:"default:false;index" json:"executed"`
	ExecutedAt    *time.Time `json:"executed_at"`
	Frequency     string     `gorm:"size:20;default:once" json:"frequency"`
	NextExecution *time.Time `json:"next_execution"`
	Metadata      string     `gorm:"type:text" json:"metadata"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
}

// Audit action kinds. These strings are part of the filtering and statistics
// contract and must stay stable.
const (
	ActionCreate         = "creación"
	ActionUpdate         = "actualización"
	ActionDelete         = "eliminación"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionExport         = "exportación"
	ActionAssign         = "asignación"
	ActionStatusChange   = "cambio_estado"
	ActionExecute        = "ejecución"
	ActionValueUpdate    = "actualización_valor"
	ActionStateUpdate    = "actualización_estado"
	ActionProgressUpdate = "actualización_progreso"
	ActionDatesUpdate    = "actualización_fechas"
	ActionOther          = "otro"
)

// Audit target types
const (
	TargetLead         = "lead"
	TargetClient       = "cliente"
	TargetEmployee     = "empleado"
	TargetProject      = "proyecto"
	TargetTask         = "tarea"
	TargetFinance      = "finanza"
	TargetInvoice      = "factura"
	TargetTransaction  = "transacción"
	TargetNotification = "notificación"
	TargetRole         = "rol"
	TargetPermission   = "permiso"
)

// Audit module names
const (
	ModuleAuth          = "autenticación"
	ModuleLeads         = "leads"
	ModuleClients       = "clientes"
	ModuleEmployees     = "empleados"
	ModuleProjects      = "proyectos"
	ModuleTasks         = "tareas"
	ModuleFinance       = "finanzas"
	ModuleInvoices      = "facturas"
	ModuleTransactions  = "transacciones"
	ModuleNotifications = "notificaciones"
	ModuleRoles         = "roles"
	ModuleSystem        = "sistema"
)

// SystemActorName marks audit entries produced by automated jobs rather than
// a logged-in employee. Queries exclude it unless explicitly requested.
const SystemActorName = "Sistema"

// Notification types
const (
	NotificationTypeTask     = "task"
	NotificationTypeClient   = "client"
	NotificationTypeEvent    = "event"
	NotificationTypeEmployee = "employee"
	NotificationTypeInvoice  = "invoice"
	NotificationTypeProject  = "project"
	NotificationTypeSystem   = "system"
	NotificationTypeLead     = "lead"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Scheduled notification frequencies
const (
	FrequencyOnce    = "once"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)
