package domain

import (
	"context"
	"database/sql"
	"time"
)

// SubmitFields — поля, фиксируемые при отправке оценки на согласование.
type SubmitFields struct {
	Rating           int
	Comments         string
	DevelopmentNotes string
}

// AssessmentRepository описывает операции работы с оценками.
// Методы с суффиксом Tx выполняются в рамках переданной транзакции,
// чтобы запись аудита шла атомарно со сменой статуса.
type AssessmentRepository interface {
	Create(ctx context.Context, a Assessment) error
	GetByID(ctx context.Context, id string) (Assessment, error)
	FindByTuple(ctx context.Context, employeeID, competencyID, assessorID string, cycleID *string) (Assessment, error)
	UpdateDraft(ctx context.Context, a Assessment) (Assessment, error)
	ListByCycle(ctx context.Context, cycleID string) ([]Assessment, error)
	ListByAssessor(ctx context.Context, assessorID string) ([]Assessment, error)
	CountByStatus(ctx context.Context, cycleID string) (map[AssessmentStatus]int, error)
	DeleteDraft(ctx context.Context, id string) error
	SubmitTx(ctx context.Context, tx *sql.Tx, id string, fields SubmitFields, submittedAt time.Time) error
	SetStatusTx(ctx context.Context, tx *sql.Tx, id string, from, to AssessmentStatus) error
	SetAssessorTx(ctx context.Context, tx *sql.Tx, id, newAssessorID string) error
	SetExtendedDeadlineTx(ctx context.Context, tx *sql.Tx, id string, deadline time.Time) error
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

// CycleRepository описывает операции с циклами оценки.
type CycleRepository interface {
	Create(ctx context.Context, c AssessmentCycle) error
	GetByID(ctx context.Context, id string) (AssessmentCycle, error)
	SetStatus(ctx context.Context, id string, from, to CycleStatus) error
	AppendDescription(ctx context.Context, id, note string) error
	ExtendEndDate(ctx context.Context, id string, newEnd time.Time) error
	Delete(ctx context.Context, id string) error
}

// AuditRepository описывает append-only журналы действий над оценками.
type AuditRepository interface {
	InsertStatusChangeTx(ctx context.Context, tx *sql.Tx, e StatusChangeEntry) error
	InsertDeadlineExtensionTx(ctx context.Context, tx *sql.Tx, e DeadlineExtensionEntry) error
	InsertReassignmentTx(ctx context.Context, tx *sql.Tx, e ReassignmentEntry) error
	ListByAssessment(ctx context.Context, assessmentID string) ([]AuditEntry, error)
}

// EmployeeRepository — справочник сотрудников (внешний коллаборатор).
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}

// CompetencyRepository — справочник компетенций (внешний коллаборатор).
type CompetencyRepository interface {
	GetByID(ctx context.Context, id string) (Competency, error)
}
