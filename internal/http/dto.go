package httpapi

import "time"

// CreateAssessmentRequest — запрос на создание оценки.
type CreateAssessmentRequest struct {
	EmployeeID       string  `json:"employee_id"`
	CompetencyID     string  `json:"competency_id"`
	AssessorID       string  `json:"assessor_id"`
	CycleID          *string `json:"cycle_id,omitempty"`
	AssessmentType   string  `json:"assessment_type"`
	Rating           *int    `json:"rating,omitempty"`
	Comments         string  `json:"comments,omitempty"`
	DevelopmentNotes string  `json:"development_notes,omitempty"`
	UpdateExisting   bool    `json:"update_existing,omitempty"`
}

// UpdateAssessmentRequest — запрос на правку черновика.
type UpdateAssessmentRequest struct {
	AssessmentID     string   `json:"assessment_id"`
	Rating           *int     `json:"rating,omitempty"`
	Comments         string   `json:"comments,omitempty"`
	DevelopmentNotes string   `json:"development_notes,omitempty"`
	EvidenceFiles    []string `json:"evidence_files,omitempty"`
}

// SubmitAssessmentRequest — запрос на отправку оценки на согласование.
type SubmitAssessmentRequest struct {
	AssessmentID     string `json:"assessment_id"`
	Rating           *int   `json:"rating,omitempty"`
	Comments         string `json:"comments,omitempty"`
	DevelopmentNotes string `json:"development_notes,omitempty"`
}

// ApproveAssessmentRequest — запрос на согласование оценки.
type ApproveAssessmentRequest struct {
	AssessmentID string `json:"assessment_id"`
	Notes        string `json:"notes,omitempty"`
}

// RejectAssessmentRequest — запрос на отклонение оценки.
type RejectAssessmentRequest struct {
	AssessmentID string `json:"assessment_id"`
	Reason       string `json:"reason"`
}

// ReassignAssessmentRequest — запрос на смену оценщика.
type ReassignAssessmentRequest struct {
	AssessmentID  string `json:"assessment_id"`
	NewAssessorID string `json:"new_assessor_id"`
	Reason        string `json:"reason,omitempty"`
}

// ExtendDeadlineRequest — запрос на продление дедлайна оценки.
type ExtendDeadlineRequest struct {
	AssessmentID string    `json:"assessment_id"`
	NewDeadline  time.Time `json:"new_deadline"`
	Reason       string    `json:"reason,omitempty"`
}

// DeleteAssessmentRequest — запрос на удаление черновика.
type DeleteAssessmentRequest struct {
	AssessmentID string `json:"assessment_id"`
}

// AssessmentDTO — модель оценки в HTTP-слое.
type AssessmentDTO struct {
	AssessmentID     string     `json:"assessment_id"`
	EmployeeID       string     `json:"employee_id"`
	CompetencyID     string     `json:"competency_id"`
	AssessorID       string     `json:"assessor_id"`
	CycleID          *string    `json:"cycle_id,omitempty"`
	AssessmentType   string     `json:"assessment_type"`
	Rating           *int       `json:"rating,omitempty"`
	Comments         string     `json:"comments,omitempty"`
	DevelopmentNotes string     `json:"development_notes,omitempty"`
	Status           string     `json:"status"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	ExtendedDeadline *time.Time `json:"extended_deadline,omitempty"`
	EvidenceFiles    []string   `json:"evidence_files,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AssessmentResponse — ответ API с одной оценкой.
type AssessmentResponse struct {
	Assessment AssessmentDTO `json:"assessment"`
}

// AssessmentListResponse — ответ API со списком оценок.
type AssessmentListResponse struct {
	Assessments []AssessmentDTO `json:"assessments"`
}

// AuditEntryDTO — запись истории оценки в ответе API.
// Type — один из status_change, deadline_extension, reassignment.
type AuditEntryDTO struct {
	Type          string     `json:"type"`
	OldStatus     string     `json:"old_status,omitempty"`
	NewStatus     string     `json:"new_status,omitempty"`
	OldDeadline   *time.Time `json:"old_deadline,omitempty"`
	NewDeadline   *time.Time `json:"new_deadline,omitempty"`
	OldAssessorID string     `json:"old_assessor_id,omitempty"`
	NewAssessorID string     `json:"new_assessor_id,omitempty"`
	Actor         string     `json:"actor"`
	Reason        string     `json:"reason,omitempty"`
	At            time.Time  `json:"at"`
}

// HistoryResponse — ответ API с историей оценки, новые записи первыми.
type HistoryResponse struct {
	AssessmentID string          `json:"assessment_id"`
	Entries      []AuditEntryDTO `json:"entries"`
}

// BatchRequest — запрос пакетной операции над оценками.
type BatchRequest struct {
	AssessmentIDs []string   `json:"assessment_ids"`
	Action        string     `json:"action"`
	Reason        string     `json:"reason,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	NewAssessorID string     `json:"new_assessor_id,omitempty"`
	NewDeadline   *time.Time `json:"new_deadline,omitempty"`
}

// BulkCreateRequest — запрос пакетного создания оценок цикла.
type BulkCreateRequest struct {
	CycleID string           `json:"cycle_id"`
	Items   []BulkCreateItem `json:"items"`
}

// BulkCreateItem — одна комбинация в пакетном создании.
type BulkCreateItem struct {
	EmployeeID     string `json:"employee_id"`
	CompetencyID   string `json:"competency_id"`
	AssessorID     string `json:"assessor_id"`
	AssessmentType string `json:"assessment_type"`
}

// BatchFailureDTO — неудача одного элемента пакета.
type BatchFailureDTO struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Message        string `json:"message"`
	EmployeeName   string `json:"employee_name,omitempty"`
	AssessorName   string `json:"assessor_name,omitempty"`
	CompetencyName string `json:"competency_name,omitempty"`
}

// BatchResponse — результат пакетной операции.
type BatchResponse struct {
	Succeeded []string          `json:"succeeded"`
	Failed    []BatchFailureDTO `json:"failed"`
	Summary   BatchSummaryDTO   `json:"summary"`
}

// BatchSummaryDTO — итоговые счётчики пакета.
type BatchSummaryDTO struct {
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
}

// CreateCycleRequest — запрос на создание цикла оценки.
type CreateCycleRequest struct {
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TargetEmployees []string  `json:"target_employees,omitempty"`
	AssessmentTypes []string  `json:"assessment_types,omitempty"`
	Description     string    `json:"description,omitempty"`
}

// StartCycleRequest — запрос на запуск цикла.
type StartCycleRequest struct {
	CycleID       string `json:"cycle_id"`
	AdminOverride bool   `json:"admin_override,omitempty"`
}

// CompleteCycleRequest — запрос на завершение цикла.
type CompleteCycleRequest struct {
	CycleID string `json:"cycle_id"`
	Force   bool   `json:"force,omitempty"`
}

// CancelCycleRequest — запрос на отмену цикла.
type CancelCycleRequest struct {
	CycleID string `json:"cycle_id"`
	Reason  string `json:"reason"`
}

// DeleteCycleRequest — запрос на удаление цикла.
type DeleteCycleRequest struct {
	CycleID string `json:"cycle_id"`
}

// ExtendCycleDeadlineRequest — запрос на продление дедлайна цикла.
type ExtendCycleDeadlineRequest struct {
	CycleID    string    `json:"cycle_id"`
	NewEndDate time.Time `json:"new_end_date"`
	Reason     string    `json:"reason,omitempty"`
}

// CycleDTO — модель цикла в HTTP-слое.
type CycleDTO struct {
	CycleID         string    `json:"cycle_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TargetEmployees []string  `json:"target_employees,omitempty"`
	AssessmentTypes []string  `json:"assessment_types,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CycleResponse — ответ API с одним циклом.
type CycleResponse struct {
	Cycle CycleDTO `json:"cycle"`
}

// CycleStatsResponse — производная статистика цикла.
type CycleStatsResponse struct {
	CycleID           string  `json:"cycle_id"`
	Total             int     `json:"total"`
	Draft             int     `json:"draft"`
	Submitted         int     `json:"submitted"`
	Approved          int     `json:"approved"`
	Rejected          int     `json:"rejected"`
	CompletionPercent float64 `json:"completion_percent"`
}
