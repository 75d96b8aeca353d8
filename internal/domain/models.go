package domain

import "time"

// Role — роль пользователя в системе.
type Role string

// Роли, которые учитывает guard авторизации.
const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Actor — действующее лицо запроса: идентификатор, набор ролей и департамент.
// Идентичность и роли разрешаются внешним провайдером до входа в ядро.
type Actor struct {
	ID           string
	Roles        []Role
	DepartmentID string
}

// HasRole проверяет наличие роли в наборе ролей актора.
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}

	return false
}

// HasAnyRole проверяет наличие хотя бы одной из перечисленных ролей.
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}

	return false
}

// Employee — минимальная карточка сотрудника, нужная ядру:
// имя для отчётов и департамент для проверки прав менеджера.
type Employee struct {
	ID           string
	FullName     string
	DepartmentID string
}

// Competency — справочная запись компетенции.
type Competency struct {
	ID   string
	Name string
}

// AssessmentType — тип оценки. Фиксируется при создании и не меняется.
type AssessmentType string

// Типы оценки.
const (
	AssessmentTypeSelf    AssessmentType = "self"
	AssessmentTypeManager AssessmentType = "manager"
	AssessmentTypePeer    AssessmentType = "peer"
	AssessmentType360     AssessmentType = "360"
)

// Valid сообщает, является ли значение одним из известных типов оценки.
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentTypeSelf, AssessmentTypeManager, AssessmentTypePeer, AssessmentType360:
		return true
	}

	return false
}

// AssessmentStatus — статус оценки в жизненном цикле.
type AssessmentStatus string

// Статусы оценки.
const (
	AssessmentStatusDraft     AssessmentStatus = "draft"
	AssessmentStatusSubmitted AssessmentStatus = "submitted"
	AssessmentStatusApproved  AssessmentStatus = "approved"
	AssessmentStatusRejected  AssessmentStatus = "rejected"
)

// assessmentTransitions — допустимые переходы статусов оценки.
// rejected и approved терминальны: пути обратно в draft нет.
var assessmentTransitions = map[AssessmentStatus][]AssessmentStatus{
	AssessmentStatusDraft:     {AssessmentStatusSubmitted},
	AssessmentStatusSubmitted: {AssessmentStatusApproved, AssessmentStatusRejected},
	AssessmentStatusApproved:  {},
	AssessmentStatusRejected:  {},
}

// CanTransitionTo проверяет, допустим ли переход из текущего статуса в целевой.
func (s AssessmentStatus) CanTransitionTo(target AssessmentStatus) bool {
	for _, next := range assessmentTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// IsTerminal сообщает, завершён ли жизненный цикл оценки.
func (s AssessmentStatus) IsTerminal() bool {
	return len(assessmentTransitions[s]) == 0
}

// Assessment — одна оценка: оценщик оценивает сотрудника по компетенции,
// опционально в рамках цикла.
type Assessment struct {
	ID               string
	EmployeeID       string
	CompetencyID     string
	AssessorID       string
	CycleID          *string
	Type             AssessmentType
	Rating           *int
	Comments         string
	DevelopmentNotes string
	Status           AssessmentStatus
	SubmittedAt      *time.Time
	ExtendedDeadline *time.Time
	EvidenceFiles    []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CycleStatus — статус цикла оценки.
type CycleStatus string

// Статусы цикла.
const (
	CycleStatusPlanned   CycleStatus = "planned"
	CycleStatusActive    CycleStatus = "active"
	CycleStatusCompleted CycleStatus = "completed"
	CycleStatusCancelled CycleStatus = "cancelled"
)

// cycleTransitions — допустимые переходы статусов цикла.
var cycleTransitions = map[CycleStatus][]CycleStatus{
	CycleStatusPlanned:   {CycleStatusActive, CycleStatusCancelled},
	CycleStatusActive:    {CycleStatusCompleted, CycleStatusCancelled},
	CycleStatusCompleted: {},
	CycleStatusCancelled: {},
}

// CanTransitionTo проверяет, допустим ли переход статуса цикла.
func (s CycleStatus) CanTransitionTo(target CycleStatus) bool {
	for _, next := range cycleTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// AssessmentCycle — контейнер, группирующий оценки в один период.
// TargetEmployees и AssessmentTypes — конфигурация, непрозрачная для ядра.
type AssessmentCycle struct {
	ID              string
	Name            string
	Status          CycleStatus
	StartDate       time.Time
	EndDate         time.Time
	TargetEmployees []string
	AssessmentTypes []AssessmentType
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectiveDeadline возвращает действующий дедлайн оценки:
// персональное продление, если оно есть, иначе конец цикла.
func EffectiveDeadline(a Assessment, cycleEnd time.Time) time.Time {
	if a.ExtendedDeadline != nil {
		return *a.ExtendedDeadline
	}

	return cycleEnd
}

// StatusChangeEntry — аудит смены статуса оценки.
type StatusChangeEntry struct {
	ID           int64
	AssessmentID string
	OldStatus    AssessmentStatus
	NewStatus    AssessmentStatus
	ChangedBy    string
	Reason       string
	At           time.Time
}

// DeadlineExtensionEntry — аудит продления дедлайна оценки.
type DeadlineExtensionEntry struct {
	ID           int64
	AssessmentID string
	OldDeadline  *time.Time
	NewDeadline  time.Time
	ExtendedBy   string
	Reason       string
	At           time.Time
}

// ReassignmentEntry — аудит смены оценщика.
type ReassignmentEntry struct {
	ID            int64
	AssessmentID  string
	OldAssessorID string
	NewAssessorID string
	ReassignedBy  string
	Reason        string
	At            time.Time
}

// AuditEntry — одна запись истории в хронологической выдаче.
// Заполнено ровно одно из трёх полей-вариантов.
type AuditEntry struct {
	StatusChange      *StatusChangeEntry
	DeadlineExtension *DeadlineExtensionEntry
	Reassignment      *ReassignmentEntry
}

// At возвращает момент события независимо от варианта.
func (e AuditEntry) At() time.Time {
	switch {
	case e.StatusChange != nil:
		return e.StatusChange.At

	case e.DeadlineExtension != nil:
		return e.DeadlineExtension.At

	case e.Reassignment != nil:
		return e.Reassignment.At
	}

	return time.Time{}
}

// CycleStats — производная статистика по циклу, не хранится.
type CycleStats struct {
	Total             int
	Draft             int
	Submitted         int
	Approved          int
	Rejected          int
	CompletionPercent float64
}
