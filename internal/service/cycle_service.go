package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-service/internal/domain"
)

// CycleService управляет жизненным циклом циклов оценки:
// planned → active → completed | cancelled.
type CycleService struct {
	cycleRepo      domain.CycleRepository
	assessmentRepo domain.AssessmentRepository
}

// NewCycleService создаёт новый CycleService.
func NewCycleService(cycleRepo domain.CycleRepository, assessmentRepo domain.AssessmentRepository) *CycleService {
	return &CycleService{
		cycleRepo:      cycleRepo,
		assessmentRepo: assessmentRepo,
	}
}

// CreateCycleInput — входные данные создания цикла.
type CreateCycleInput struct {
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	TargetEmployees []string
	AssessmentTypes []domain.AssessmentType
	Description     string
}

// Create создаёт цикл в статусе planned.
func (s *CycleService) Create(ctx context.Context, in CreateCycleInput, actor domain.Actor) (domain.AssessmentCycle, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if strings.TrimSpace(in.Name) == "" {
		return domain.AssessmentCycle{}, domain.NewValidationError("name", errors.New("cycle name is required"))
	}

	if !in.EndDate.After(in.StartDate) {
		return domain.AssessmentCycle{}, domain.NewValidationError("end_date", errors.New("end date must be after start date"))
	}

	for _, t := range in.AssessmentTypes {
		if !t.Valid() {
			return domain.AssessmentCycle{}, domain.NewValidationError("assessment_types", errors.New("unknown assessment type"))
		}
	}

	now := time.Now().UTC()
	c := domain.AssessmentCycle{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Status:          domain.CycleStatusPlanned,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		TargetEmployees: in.TargetEmployees,
		AssessmentTypes: in.AssessmentTypes,
		Description:     in.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.cycleRepo.Create(ctx, c); err != nil {
		return domain.AssessmentCycle{}, err
	}

	return s.cycleRepo.GetByID(ctx, c.ID)
}

// Get возвращает цикл по идентификатору.
func (s *CycleService) Get(ctx context.Context, id string) (domain.AssessmentCycle, error) {
	c, err := s.cycleRepo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.AssessmentCycle{}, err
	}

	return c, nil
}

// Start запускает цикл: planned → active. До start_date запуск отклоняется,
// если администратор явно не запросил override.
func (s *CycleService) Start(ctx context.Context, id string, actor domain.Actor, adminOverride bool) (domain.AssessmentCycle, error) {
	c, err := s.Get(ctx, id)

	if err != nil {
		return domain.AssessmentCycle{}, err
	}

	if !c.Status.CanTransitionTo(domain.CycleStatusActive) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrIllegalTransition)
	}

	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if time.Now().UTC().Before(c.StartDate) {
		if !adminOverride || !actor.HasRole(domain.RoleAdmin) {
			return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleNotStarted)
		}
	}

	if err := s.cycleRepo.SetStatus(ctx, id, domain.CycleStatusPlanned, domain.CycleStatusActive); err != nil {
		return domain.AssessmentCycle{}, mapWriteErr(err)
	}

	return s.Get(ctx, id)
}

// Complete завершает активный цикл. Без force требуется, чтобы ни одна
// связанная оценка не осталась в draft; force завершает в любом случае,
// черновики остаются читаемыми, но осиротевшими.
func (s *CycleService) Complete(ctx context.Context, id string, actor domain.Actor, force bool) (domain.AssessmentCycle, error) {
	c, err := s.Get(ctx, id)

	if err != nil {
		return domain.AssessmentCycle{}, err
	}

	if !c.Status.CanTransitionTo(domain.CycleStatusCompleted) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrIllegalTransition)
	}

	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if !force {
		// Снимок счётчиков: к моменту коммита он может устареть,
		// это принятая модель консистентности.
		counts, err := s.assessmentRepo.CountByStatus(ctx, id)

		if err != nil {
			return domain.AssessmentCycle{}, err
		}

		if counts[domain.AssessmentStatusDraft] > 0 {
			return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleHasDrafts)
		}
	}

	if err := s.cycleRepo.SetStatus(ctx, id, domain.CycleStatusActive, domain.CycleStatusCompleted); err != nil {
		return domain.AssessmentCycle{}, mapWriteErr(err)
	}

	return s.Get(ctx, id)
}

// Cancel отменяет цикл из planned или active. Причина обязательна и
// дописывается в описание цикла, отдельного журнала у циклов нет.
func (s *CycleService) Cancel(ctx context.Context, id string, actor domain.Actor, reason string) (domain.AssessmentCycle, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.AssessmentCycle{}, domain.NewValidationError("reason", domain.ErrReasonRequired)
	}

	c, err := s.Get(ctx, id)

	if err != nil {
		return domain.AssessmentCycle{}, err
	}

	if !c.Status.CanTransitionTo(domain.CycleStatusCancelled) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrIllegalTransition)
	}

	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if err := s.cycleRepo.SetStatus(ctx, id, c.Status, domain.CycleStatusCancelled); err != nil {
		return domain.AssessmentCycle{}, mapWriteErr(err)
	}

	note := fmt.Sprintf("[cancelled by %s at %s] %s",
		actor.ID, time.Now().UTC().Format(time.RFC3339), reason)

	if err := s.cycleRepo.AppendDescription(ctx, id, note); err != nil {
		return domain.AssessmentCycle{}, err
	}

	return s.Get(ctx, id)
}

// ExtendDeadline продлевает дедлайн активного цикла.
// Новая дата окончания должна быть строго позже текущей.
func (s *CycleService) ExtendDeadline(ctx context.Context, id string, actor domain.Actor, newEndDate time.Time, reason string) (domain.AssessmentCycle, error) {
	c, err := s.Get(ctx, id)

	if err != nil {
		return domain.AssessmentCycle{}, err
	}

	if c.Status != domain.CycleStatusActive {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeStateConflict, domain.ErrCycleNotActive)
	}

	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return domain.AssessmentCycle{}, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if !newEndDate.After(c.EndDate) {
		return domain.AssessmentCycle{}, domain.NewValidationError("end_date", domain.ErrDeadlineNotLater)
	}

	if err := s.cycleRepo.ExtendEndDate(ctx, id, newEndDate); err != nil {
		return domain.AssessmentCycle{}, mapWriteErr(err)
	}

	if strings.TrimSpace(reason) != "" {
		note := fmt.Sprintf("[deadline extended by %s to %s] %s",
			actor.ID, newEndDate.Format("2006-01-02"), reason)

		if err := s.cycleRepo.AppendDescription(ctx, id, note); err != nil {
			return domain.AssessmentCycle{}, err
		}
	}

	return s.Get(ctx, id)
}

// Stats возвращает производную статистику завершённости цикла.
// Ничего не хранится: счётчики пересчитываются по связанным оценкам.
func (s *CycleService) Stats(ctx context.Context, id string) (domain.CycleStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.CycleStats{}, err
	}

	counts, err := s.assessmentRepo.CountByStatus(ctx, id)

	if err != nil {
		return domain.CycleStats{}, err
	}

	stats := domain.CycleStats{
		Draft:     counts[domain.AssessmentStatusDraft],
		Submitted: counts[domain.AssessmentStatusSubmitted],
		Approved:  counts[domain.AssessmentStatusApproved],
		Rejected:  counts[domain.AssessmentStatusRejected],
	}
	stats.Total = stats.Draft + stats.Submitted + stats.Approved + stats.Rejected

	if stats.Total > 0 {
		done := stats.Total - stats.Draft
		stats.CompletionPercent = float64(done) / float64(stats.Total) * 100
	}

	return stats, nil
}

// Delete удаляет цикл. Цикл с привязанными оценками удалить нельзя.
func (s *CycleService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleHR) {
		return domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.cycleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCycleHasAssessment) {
			return domain.NewDomainError(domain.ErrorCodeConstraint, err)
		}

		return mapWriteErr(err)
	}

	return nil
}
