package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-service/internal/access"
	"assessment-service/internal/domain"
	"assessment-service/internal/notify"
)

// AssessmentService — оркестратор workflow оценок: каждый переход статуса
// проходит через guard, предусловия state machine и атомарную запись аудита.
type AssessmentService struct {
	assessmentRepo domain.AssessmentRepository
	cycleRepo      domain.CycleRepository
	auditRepo      domain.AuditRepository
	employeeRepo   domain.EmployeeRepository
	notifier       notify.Sender
}

// NewAssessmentService создаёт новый AssessmentService.
func NewAssessmentService(
	assessmentRepo domain.AssessmentRepository,
	cycleRepo domain.CycleRepository,
	auditRepo domain.AuditRepository,
	employeeRepo domain.EmployeeRepository,
	notifier notify.Sender,
) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		cycleRepo:      cycleRepo,
		auditRepo:      auditRepo,
		employeeRepo:   employeeRepo,
		notifier:       notifier,
	}
}

// CreateInput — входные данные создания оценки.
type CreateInput struct {
	EmployeeID       string
	CompetencyID     string
	AssessorID       string
	CycleID          *string
	Type             domain.AssessmentType
	Rating           *int
	Comments         string
	DevelopmentNotes string
	// UpdateExisting включает режим update-or-reject: при совпадении
	// уникальной комбинации обновляется существующий черновик.
	UpdateExisting bool
}

// Create создаёт оценку в статусе draft либо, при UpdateExisting,
// обновляет существующий черновик той же комбинации.
func (s *AssessmentService) Create(ctx context.Context, in CreateInput, actor domain.Actor) (domain.Assessment, error) {
	if !in.Type.Valid() {
		return domain.Assessment{}, domain.NewValidationError("assessment_type", errors.New("unknown assessment type"))
	}

	if in.EmployeeID == "" || in.CompetencyID == "" {
		return domain.Assessment{}, domain.NewValidationError("employee_id", errors.New("employee and competency are required"))
	}

	// Для self-оценки оценщик — сам сотрудник; FK не перегружается скрытым смыслом,
	// алиас фиксируется явно здесь и больше нигде.
	assessorID := in.AssessorID

	if in.Type == domain.AssessmentTypeSelf {
		assessorID = in.EmployeeID
	}

	if assessorID == "" {
		return domain.Assessment{}, domain.NewValidationError("assessor_id", errors.New("assessor is required"))
	}

	if _, err := s.employeeRepo.GetByID(ctx, in.EmployeeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if in.CycleID != nil {
		cycle, err := s.cycleRepo.GetByID(ctx, *in.CycleID)

		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
			}

			return domain.Assessment{}, err
		}

		// В завершённый или отменённый цикл новые оценки не добавляются.
		if cycle.Status == domain.CycleStatusCompleted || cycle.Status == domain.CycleStatusCancelled {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleNotActive)
		}
	}

	now := time.Now().UTC()
	a := domain.Assessment{
		ID:               uuid.NewString(),
		EmployeeID:       in.EmployeeID,
		CompetencyID:     in.CompetencyID,
		AssessorID:       assessorID,
		CycleID:          in.CycleID,
		Type:             in.Type,
		Rating:           in.Rating,
		Comments:         in.Comments,
		DevelopmentNotes: in.DevelopmentNotes,
		Status:           domain.AssessmentStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if !access.CanCreate(actor, a) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	existing, err := s.assessmentRepo.FindByTuple(ctx, in.EmployeeID, in.CompetencyID, assessorID, in.CycleID)

	if err == nil {
		return s.updateExisting(ctx, existing, in, actor)
	}

	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Assessment{}, err
	}

	if err := s.assessmentRepo.Create(ctx, a); err != nil {
		// Гонка двух создателей: уникальный индекс — авторитет,
		// нарушение превращаем в update-or-reject по намерению вызывающего.
		if errors.Is(err, domain.ErrDuplicate) {
			raced, ferr := s.assessmentRepo.FindByTuple(ctx, in.EmployeeID, in.CompetencyID, assessorID, in.CycleID)

			if ferr != nil {
				return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeConstraint, err)
			}

			return s.updateExisting(ctx, raced, in, actor)
		}

		return domain.Assessment{}, err
	}

	return s.assessmentRepo.GetByID(ctx, a.ID)
}

func (s *AssessmentService) updateExisting(ctx context.Context, existing domain.Assessment, in CreateInput, actor domain.Actor) (domain.Assessment, error) {
	if !in.UpdateExisting {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeConstraint, domain.ErrDuplicate)
	}

	if existing.Status != domain.AssessmentStatusDraft {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrNotDraft)
	}

	if !access.CanEdit(actor, existing) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	existing.Rating = in.Rating
	existing.Comments = in.Comments
	existing.DevelopmentNotes = in.DevelopmentNotes

	return s.assessmentRepo.UpdateDraft(ctx, existing)
}

// ensureCycleMutable проверяет, что цикл оценки ещё принимает изменения.
// Завершённый или отменённый цикл замораживает свои оценки: из записи
// доступно только чтение и история.
func (s *AssessmentService) ensureCycleMutable(ctx context.Context, a domain.Assessment) error {
	if a.CycleID == nil {
		return nil
	}

	cycle, err := s.cycleRepo.GetByID(ctx, *a.CycleID)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return err
	}

	if cycle.Status == domain.CycleStatusCompleted || cycle.Status == domain.CycleStatusCancelled {
		return domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleNotActive)
	}

	return nil
}

// Get возвращает оценку с проверкой права просмотра.
func (s *AssessmentService) Get(ctx context.Context, id string, actor domain.Actor) (domain.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	subject, err := s.employeeRepo.GetByID(ctx, a.EmployeeID)

	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Assessment{}, err
	}

	if !access.CanView(actor, a, subject) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	return a, nil
}

// History возвращает журнал действий по оценке, новые записи первыми.
func (s *AssessmentService) History(ctx context.Context, id string, actor domain.Actor) ([]domain.AuditEntry, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}

	return s.auditRepo.ListByAssessment(ctx, id)
}

// ListByCycle возвращает оценки цикла, видимые актору.
// Недоступные записи молча отфильтровываются, а не валят запрос.
func (s *AssessmentService) ListByCycle(ctx context.Context, cycleID string, actor domain.Actor) ([]domain.Assessment, error) {
	if _, err := s.cycleRepo.GetByID(ctx, cycleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return nil, err
	}

	list, err := s.assessmentRepo.ListByCycle(ctx, cycleID)

	if err != nil {
		return nil, err
	}

	return s.filterVisible(ctx, list, actor), nil
}

// ListByAssessor возвращает оценки, назначенные оценщику.
// Чужой список доступен только административным ролям.
func (s *AssessmentService) ListByAssessor(ctx context.Context, assessorID string, actor domain.Actor) ([]domain.Assessment, error) {
	if actor.ID != assessorID && !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return nil, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	return s.assessmentRepo.ListByAssessor(ctx, assessorID)
}

func (s *AssessmentService) filterVisible(ctx context.Context, list []domain.Assessment, actor domain.Actor) []domain.Assessment {
	res := make([]domain.Assessment, 0, len(list))

	for _, a := range list {
		subject, err := s.employeeRepo.GetByID(ctx, a.EmployeeID)

		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			continue
		}

		if access.CanView(actor, a, subject) {
			res = append(res, a)
		}
	}

	return res
}

// UpdateFields — поля, которые владелец может менять у черновика.
type UpdateFields struct {
	Rating           *int
	Comments         string
	DevelopmentNotes string
	EvidenceFiles    []string
}

// Update правит черновик напрямую: доступно только владельцу по guard
// и только пока статус draft.
func (s *AssessmentService) Update(ctx context.Context, id string, fields UpdateFields, actor domain.Actor) (domain.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if a.Status != domain.AssessmentStatusDraft {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrNotDraft)
	}

	if err := s.ensureCycleMutable(ctx, a); err != nil {
		return domain.Assessment{}, err
	}

	if !access.CanEdit(actor, a) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if fields.Rating != nil && (*fields.Rating < 1 || *fields.Rating > 5) {
		return domain.Assessment{}, domain.NewValidationError("rating", domain.ErrRatingOutOfRange)
	}

	a.Rating = fields.Rating
	a.Comments = fields.Comments
	a.DevelopmentNotes = fields.DevelopmentNotes

	if fields.EvidenceFiles != nil {
		a.EvidenceFiles = fields.EvidenceFiles
	}

	return s.assessmentRepo.UpdateDraft(ctx, a)
}

// validateSubmit проверяет правило рейтинг/комментарий при отправке:
// рейтинг обязателен и в диапазоне 1–5, крайние оценки требуют обоснования.
func validateSubmit(fields domain.SubmitFields, hasRating bool) error {
	if !hasRating {
		return domain.NewValidationError("rating", domain.ErrRatingRequired)
	}

	if fields.Rating < 1 || fields.Rating > 5 {
		return domain.NewValidationError("rating", domain.ErrRatingOutOfRange)
	}

	if (fields.Rating <= 2 || fields.Rating >= 4) && strings.TrimSpace(fields.Comments) == "" {
		return domain.NewValidationError("comments", domain.ErrCommentsRequired)
	}

	return nil
}

// SubmitInput — входные данные отправки оценки.
type SubmitInput struct {
	Rating           *int
	Comments         string
	DevelopmentNotes string
}

// Submit переводит черновик в submitted, фиксируя рейтинг и submitted_at.
func (s *AssessmentService) Submit(ctx context.Context, id string, in SubmitInput, actor domain.Actor) (domain.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if !a.Status.CanTransitionTo(domain.AssessmentStatusSubmitted) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrIllegalTransition)
	}

	if err := s.ensureCycleMutable(ctx, a); err != nil {
		return domain.Assessment{}, err
	}

	if !access.CanEdit(actor, a) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	// Рейтинг можно прислать с отправкой либо заполнить заранее в черновике.
	fields := domain.SubmitFields{
		Comments:         in.Comments,
		DevelopmentNotes: in.DevelopmentNotes,
	}
	hasRating := false

	switch {
	case in.Rating != nil:
		fields.Rating = *in.Rating
		hasRating = true

	case a.Rating != nil:
		fields.Rating = *a.Rating
		hasRating = true
	}

	if fields.Comments == "" {
		fields.Comments = a.Comments
	}

	if fields.DevelopmentNotes == "" {
		fields.DevelopmentNotes = a.DevelopmentNotes
	}

	if err := validateSubmit(fields, hasRating); err != nil {
		return domain.Assessment{}, err
	}

	now := time.Now().UTC()

	err = s.assessmentRepo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.assessmentRepo.SubmitTx(ctx, tx, id, fields, now); err != nil {
			return err
		}

		return s.auditRepo.InsertStatusChangeTx(ctx, tx, domain.StatusChangeEntry{
			AssessmentID: id,
			OldStatus:    domain.AssessmentStatusDraft,
			NewStatus:    domain.AssessmentStatusSubmitted,
			ChangedBy:    actor.ID,
			At:           now,
		})
	})

	if err != nil {
		return domain.Assessment{}, mapWriteErr(err)
	}

	updated, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		return domain.Assessment{}, err
	}

	s.notifier.AssessmentSubmitted(ctx, updated)

	return updated, nil
}

// Approve переводит оценку из submitted в approved.
func (s *AssessmentService) Approve(ctx context.Context, id string, actor domain.Actor, notes string) (domain.Assessment, error) {
	return s.decide(ctx, id, actor, domain.AssessmentStatusApproved, notes)
}

// Reject переводит оценку из submitted в rejected; причина обязательна.
func (s *AssessmentService) Reject(ctx context.Context, id string, actor domain.Actor, reason string) (domain.Assessment, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.Assessment{}, domain.NewValidationError("reason", domain.ErrReasonRequired)
	}

	return s.decide(ctx, id, actor, domain.AssessmentStatusRejected, reason)
}

func (s *AssessmentService) decide(ctx context.Context, id string, actor domain.Actor, target domain.AssessmentStatus, reason string) (domain.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if !a.Status.CanTransitionTo(target) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrIllegalTransition)
	}

	if err := s.ensureCycleMutable(ctx, a); err != nil {
		return domain.Assessment{}, err
	}

	if !access.CanApprove(actor, a) {
		if actor.ID == a.AssessorID {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrSelfApproval)
		}

		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	now := time.Now().UTC()

	err = s.assessmentRepo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.assessmentRepo.SetStatusTx(ctx, tx, id, domain.AssessmentStatusSubmitted, target); err != nil {
			return err
		}

		return s.auditRepo.InsertStatusChangeTx(ctx, tx, domain.StatusChangeEntry{
			AssessmentID: id,
			OldStatus:    domain.AssessmentStatusSubmitted,
			NewStatus:    target,
			ChangedBy:    actor.ID,
			Reason:       reason,
			At:           now,
		})
	})

	if err != nil {
		return domain.Assessment{}, mapWriteErr(err)
	}

	updated, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		return domain.Assessment{}, err
	}

	if target == domain.AssessmentStatusApproved {
		s.notifier.AssessmentApproved(ctx, updated)

	} else {
		s.notifier.AssessmentRejected(ctx, updated)
	}

	return updated, nil
}

// Reassign меняет оценщика без смены статуса и пишет аудит переназначения.
func (s *AssessmentService) Reassign(ctx context.Context, id string, actor domain.Actor, newAssessorID, reason string) (domain.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if a.Type == domain.AssessmentTypeSelf {
		return domain.Assessment{}, domain.NewValidationError("assessment_type", errors.New("self assessment cannot be reassigned"))
	}

	if a.Status.IsTerminal() {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrIllegalTransition)
	}

	if err := s.ensureCycleMutable(ctx, a); err != nil {
		return domain.Assessment{}, err
	}

	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR, domain.RoleManager) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if _, err := s.employeeRepo.GetByID(ctx, newAssessorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	now := time.Now().UTC()

	err = s.assessmentRepo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.assessmentRepo.SetAssessorTx(ctx, tx, id, newAssessorID); err != nil {
			return err
		}

		return s.auditRepo.InsertReassignmentTx(ctx, tx, domain.ReassignmentEntry{
			AssessmentID:  id,
			OldAssessorID: a.AssessorID,
			NewAssessorID: newAssessorID,
			ReassignedBy:  actor.ID,
			Reason:        reason,
			At:            now,
		})
	})

	if err != nil {
		return domain.Assessment{}, mapWriteErr(err)
	}

	return s.assessmentRepo.GetByID(ctx, id)
}

// ExtendDeadline продлевает персональный дедлайн оценки внутри активного цикла.
// Новый дедлайн должен быть строго позже действующего.
func (s *AssessmentService) ExtendDeadline(ctx context.Context, id string, actor domain.Actor, newDeadline time.Time, reason string) (domain.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if a.CycleID == nil {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleNotActive)
	}

	cycle, err := s.cycleRepo.GetByID(ctx, *a.CycleID)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Assessment{}, err
	}

	if cycle.Status != domain.CycleStatusActive {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleNotActive)
	}

	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR, domain.RoleManager) {
		return domain.Assessment{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	effective := domain.EffectiveDeadline(a, cycle.EndDate)

	if !newDeadline.After(effective) {
		return domain.Assessment{}, domain.NewValidationError("new_deadline", domain.ErrDeadlineNotLater)
	}

	now := time.Now().UTC()

	err = s.assessmentRepo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.assessmentRepo.SetExtendedDeadlineTx(ctx, tx, id, newDeadline); err != nil {
			return err
		}

		return s.auditRepo.InsertDeadlineExtensionTx(ctx, tx, domain.DeadlineExtensionEntry{
			AssessmentID: id,
			OldDeadline:  a.ExtendedDeadline,
			NewDeadline:  newDeadline,
			ExtendedBy:   actor.ID,
			Reason:       reason,
			At:           now,
		})
	})

	if err != nil {
		return domain.Assessment{}, mapWriteErr(err)
	}

	return s.assessmentRepo.GetByID(ctx, id)
}

// Delete удаляет черновик без привязки к циклу. Всё, что ушло дальше
// draft, физически не удаляется.
func (s *AssessmentService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	a, err := s.assessmentRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return err
	}

	if a.Status != domain.AssessmentStatusDraft {
		return domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrNotDraft)
	}

	if a.CycleID != nil {
		return domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleHasAssessment)
	}

	if !access.CanEdit(actor, a) {
		return domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if err := s.assessmentRepo.DeleteDraft(ctx, id); err != nil {
		return mapWriteErr(err)
	}

	return nil
}

// mapWriteErr переводит ошибки условной записи в доменные коды:
// проигранная гонка — STATE_CONFLICT, исчезнувшая запись — NOT_FOUND.
func mapWriteErr(err error) error {
	var derr *domain.DomainError

	if errors.As(err, &derr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrStaleState):
		return domain.NewDomainError(domain.ErrorCodeStateConflict, err)

	case errors.Is(err, domain.ErrNotFound):
		return domain.NewDomainError(domain.ErrorCodeNotFound, err)

	case errors.Is(err, domain.ErrNotDraft):
		return domain.NewDomainError(domain.ErrorCodeStateConflict, err)
	}

	return err
}
