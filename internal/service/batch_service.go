package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assessment-service/internal/domain"
)

// BatchAction — операция, применяемая пакетно к списку оценок.
type BatchAction string

// Поддерживаемые пакетные операции.
const (
	BatchActionSubmit         BatchAction = "submit"
	BatchActionApprove        BatchAction = "approve"
	BatchActionReject         BatchAction = "reject"
	BatchActionReassign       BatchAction = "reassign"
	BatchActionExtendDeadline BatchAction = "extend_deadline"
)

// BatchOptions — параметры пакетной операции, общие для всех элементов.
type BatchOptions struct {
	Reason        string
	Notes         string
	NewAssessorID string
	NewDeadline   *time.Time
}

// BatchItemFailure — одна неудача в пакете: идентификатор, код ошибки
// и имена участников, чтобы вызывающий мог разобраться без доп. запросов.
type BatchItemFailure struct {
	ID             string
	Code           string
	Message        string
	EmployeeName   string
	AssessorName   string
	CompetencyName string
}

// BatchSummary — итоговые счётчики пакета.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Message   string
}

// BatchResult — результат пакетной операции с изоляцией ошибок по элементам.
type BatchResult struct {
	Succeeded []string
	Failed    []BatchItemFailure
	Summary   BatchSummary
}

// BatchService применяет операцию оркестратора к списку оценок.
// Ошибка одного элемента фиксируется и не прерывает обработку остальных.
type BatchService struct {
	assessments    *AssessmentService
	assessmentRepo domain.AssessmentRepository
	employeeRepo   domain.EmployeeRepository
	competencyRepo domain.CompetencyRepository
}

// NewBatchService создаёт новый BatchService.
func NewBatchService(
	assessments *AssessmentService,
	assessmentRepo domain.AssessmentRepository,
	employeeRepo domain.EmployeeRepository,
	competencyRepo domain.CompetencyRepository,
) *BatchService {
	return &BatchService{
		assessments:    assessments,
		assessmentRepo: assessmentRepo,
		employeeRepo:   employeeRepo,
		competencyRepo: competencyRepo,
	}
}

// ApplyBatch выполняет операцию над каждым идентификатором последовательно.
// Пакет никогда не завершается досрочно: каждый сбой — отдельная запись
// в Failed, остальные элементы обрабатываются дальше.
func (s *BatchService) ApplyBatch(ctx context.Context, ids []string, action BatchAction, actor domain.Actor, opts BatchOptions) (BatchResult, error) {
	switch action {
	case BatchActionSubmit, BatchActionApprove, BatchActionReject,
		BatchActionReassign, BatchActionExtendDeadline:

	default:
		return BatchResult{}, domain.NewValidationError("action", fmt.Errorf("unknown batch action %q", action))
	}

	if action == BatchActionReject && opts.Reason == "" {
		return BatchResult{}, domain.NewValidationError("reason", domain.ErrReasonRequired)
	}

	if action == BatchActionReassign && opts.NewAssessorID == "" {
		return BatchResult{}, domain.NewValidationError("new_assessor_id", errors.New("new assessor is required"))
	}

	if action == BatchActionExtendDeadline && opts.NewDeadline == nil {
		return BatchResult{}, domain.NewValidationError("new_deadline", errors.New("new deadline is required"))
	}

	var result BatchResult

	for _, id := range ids {
		if err := s.applyOne(ctx, id, action, actor, opts); err != nil {
			result.Failed = append(result.Failed, s.describeFailure(ctx, id, err))
			continue
		}

		result.Succeeded = append(result.Succeeded, id)
	}

	result.Summary = summarize(len(ids), len(result.Succeeded), len(result.Failed))

	return result, nil
}

func (s *BatchService) applyOne(ctx context.Context, id string, action BatchAction, actor domain.Actor, opts BatchOptions) error {
	var err error

	switch action {
	case BatchActionSubmit:
		// Рейтинг и комментарии берутся из черновика.
		_, err = s.assessments.Submit(ctx, id, SubmitInput{}, actor)

	case BatchActionApprove:
		_, err = s.assessments.Approve(ctx, id, actor, opts.Notes)

	case BatchActionReject:
		_, err = s.assessments.Reject(ctx, id, actor, opts.Reason)

	case BatchActionReassign:
		_, err = s.assessments.Reassign(ctx, id, actor, opts.NewAssessorID, opts.Reason)

	case BatchActionExtendDeadline:
		_, err = s.assessments.ExtendDeadline(ctx, id, actor, *opts.NewDeadline, opts.Reason)
	}

	return err
}

// describeFailure дополняет ошибку элемента именами сотрудника, оценщика
// и компетенции. Справочные сбои не скрывают исходную ошибку.
func (s *BatchService) describeFailure(ctx context.Context, id string, cause error) BatchItemFailure {
	failure := BatchItemFailure{
		ID:      id,
		Code:    domain.ErrorCodeOf(cause),
		Message: cause.Error(),
	}

	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		return failure
	}

	if emp, err := s.employeeRepo.GetByID(ctx, a.EmployeeID); err == nil {
		failure.EmployeeName = emp.FullName
	}

	if assessor, err := s.employeeRepo.GetByID(ctx, a.AssessorID); err == nil {
		failure.AssessorName = assessor.FullName
	}

	if comp, err := s.competencyRepo.GetByID(ctx, a.CompetencyID); err == nil {
		failure.CompetencyName = comp.Name
	}

	return failure
}

// BulkCreateItem — одна комбинация для пакетного создания оценок цикла.
type BulkCreateItem struct {
	EmployeeID   string
	CompetencyID string
	AssessorID   string
	Type         domain.AssessmentType
}

// Key возвращает читаемый идентификатор комбинации для отчёта о сбое.
func (i BulkCreateItem) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s", i.EmployeeID, i.CompetencyID, i.AssessorID, i.Type)
}

// BulkCreate создаёт оценки цикла пакетом. Дубликат комбинации
// (employee, competency, assessor, cycle) пропускается и попадает в Failed,
// не останавливая пакет.
func (s *BatchService) BulkCreate(ctx context.Context, cycleID string, items []BulkCreateItem, actor domain.Actor) (BatchResult, error) {
	if cycleID == "" {
		return BatchResult{}, domain.NewValidationError("cycle_id", errors.New("cycle is required"))
	}

	var result BatchResult

	for _, item := range items {
		created, err := s.assessments.Create(ctx, CreateInput{
			EmployeeID:   item.EmployeeID,
			CompetencyID: item.CompetencyID,
			AssessorID:   item.AssessorID,
			CycleID:      &cycleID,
			Type:         item.Type,
		}, actor)

		if err != nil {
			failure := BatchItemFailure{
				ID:      item.Key(),
				Code:    domain.ErrorCodeOf(err),
				Message: err.Error(),
			}

			if emp, eerr := s.employeeRepo.GetByID(ctx, item.EmployeeID); eerr == nil {
				failure.EmployeeName = emp.FullName
			}

			if comp, cerr := s.competencyRepo.GetByID(ctx, item.CompetencyID); cerr == nil {
				failure.CompetencyName = comp.Name
			}

			result.Failed = append(result.Failed, failure)
			continue
		}

		result.Succeeded = append(result.Succeeded, created.ID)
	}

	result.Summary = summarize(len(items), len(result.Succeeded), len(result.Failed))

	return result, nil
}

func summarize(total, succeeded, failed int) BatchSummary {
	return BatchSummary{
		Total:     total,
		Succeeded: succeeded,
		Failed:    failed,
		Message:   fmt.Sprintf("%d of %d succeeded, %d failed", succeeded, total, failed),
	}
}
